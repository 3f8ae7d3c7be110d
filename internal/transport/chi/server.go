package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/domain"
	"github.com/kailas-cloud/placesearch/internal/domain/search/request"
	"github.com/kailas-cloud/placesearch/internal/domain/search/result"
	"github.com/kailas-cloud/placesearch/internal/logger"
	"github.com/kailas-cloud/placesearch/internal/metrics"
	healthuc "github.com/kailas-cloud/placesearch/internal/usecase/health"
)

// Request headers set by the API gateway in front of this service.
const (
	HeaderUserID   = "X-User-ID"
	HeaderDevToken = "X-Dev-Token"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Searcher runs place searches.
type Searcher interface {
	Search(ctx context.Context, p request.Params) ([]result.Item, error)
}

// Catalog serves the category list and search cache maintenance.
type Catalog interface {
	Categories(ctx context.Context) ([]string, error)
	InvalidateSearchCache(ctx context.Context, category string) (int64, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers of the place search API.
type Server struct {
	search        Searcher
	catalog       Catalog
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, catalog Catalog, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search:  search,
		catalog: catalog,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidParameter, http.StatusBadRequest, codeInvalidParameter),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, codeUpstreamError),
		sentinelHandler(domain.ErrUnsupportedSearchType, http.StatusInternalServerError, codeUnsupportedSearch),
	}
	return s
}

// Router builds the chi router with the full middleware chain.
// apiKeys guards everything except /health and /metrics; empty disables auth.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1/places", func(r chi.Router) {
		r.Get("/search", s.SearchPlaces)
		r.Get("/categories", s.ListCategories)
		r.Delete("/search-cache/{category}", s.InvalidateSearchCache)
	})
	return r
}

// SearchPlaces handles GET /api/v1/places/search.
func (s *Server) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	params, err := searchParamsFromRequest(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items, err := s.search.Search(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromItems(items))
}

// ListCategories handles GET /api/v1/places/categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Total: len(cats), Categories: cats})
}

// InvalidateSearchCache handles DELETE /api/v1/places/search-cache/{category}.
func (s *Server) InvalidateSearchCache(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	n, err := s.catalog.InvalidateSearchCache(r.Context(), category)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, InvalidateResponse{Category: strings.TrimSpace(category), Deleted: n})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// searchParamsFromRequest reads the raw search inputs. Malformed numbers are
// rejected here; presence and range rules are left to request.New.
func searchParamsFromRequest(r *http.Request) (request.Params, error) {
	q := r.URL.Query()

	lat, err := optionalFloat(q.Get("lat"), "lat")
	if err != nil {
		return request.Params{}, err
	}
	lng, err := optionalFloat(q.Get("lng"), "lng")
	if err != nil {
		return request.Params{}, err
	}
	requester, err := requesterFromHeader(r.Header.Get(HeaderUserID))
	if err != nil {
		return request.Params{}, err
	}

	return request.Params{
		Query:       q.Get("query"),
		Category:    q.Get("category"),
		Lat:         lat,
		Lng:         lng,
		RequesterID: requester,
		Credential:  r.Header.Get(HeaderDevToken),
	}, nil
}

func optionalFloat(raw, name string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidParameter, name)
	}
	return &v, nil
}

func requesterFromHeader(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidParameter, HeaderUserID)
	}
	return &id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeMessage exposes validation details and hides everything else behind the sentinel text.
func safeMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidParameter) {
		return err.Error()
	}
	for _, s := range []error{domain.ErrUpstream, domain.ErrUnsupportedSearchType} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
