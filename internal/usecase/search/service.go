package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/domain"
	"github.com/kailas-cloud/placesearch/internal/domain/search/request"
	"github.com/kailas-cloud/placesearch/internal/domain/search/result"
	"github.com/kailas-cloud/placesearch/internal/logger"
	"github.com/kailas-cloud/placesearch/internal/metrics"
	"github.com/kailas-cloud/placesearch/internal/workers"
)

// Collaborators groups the lookups shared by every strategy.
type Collaborators struct {
	Store     PlaceStore
	Moments   MomentCounter
	Bookmarks BookmarkLookup
	Pool      *workers.Pool
}

func (c Collaborators) lookups() *lookups {
	pool := c.Pool
	if pool == nil {
		pool = workers.NewPool(1)
	}
	return &lookups{store: c.Store, moments: c.Moments, bookmarks: c.Bookmarks, pool: pool}
}

// Outcome is the eventual result of an asynchronous search.
type Outcome struct {
	Items []result.Item
	Err   error
}

// Service validates place searches and runs them through the matching strategy.
type Service struct {
	dispatcher *Dispatcher
	timeout    time.Duration
}

// New creates a search service. A zero timeout leaves the caller's deadline in charge.
func New(dispatcher *Dispatcher, timeout time.Duration) *Service {
	return &Service{dispatcher: dispatcher, timeout: timeout}
}

// Search validates p and returns the ranked places.
// Validation fails with domain.ErrInvalidParameter before any collaborator is called.
func (s *Service) Search(ctx context.Context, p request.Params) ([]result.Item, error) {
	req, strategy, err := s.prepare(p)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, &req, strategy)
}

// SearchAsync validates p synchronously and runs the search in the background.
// The returned channel delivers exactly one Outcome and is then closed.
func (s *Service) SearchAsync(ctx context.Context, p request.Params) (<-chan Outcome, error) {
	req, strategy, err := s.prepare(p)
	if err != nil {
		return nil, err
	}

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		items, err := s.run(ctx, &req, strategy)
		out <- Outcome{Items: items, Err: err}
	}()
	return out, nil
}

func (s *Service) prepare(p request.Params) (request.Context, Strategy, error) {
	req, err := request.New(p)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("unknown", outcomeOf(err)).Inc()
		return request.Context{}, nil, err //nolint:wrapcheck // sentinel already attached
	}
	strategy, err := s.dispatcher.Dispatch(req.Kind())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(req.Kind()), outcomeOf(err)).Inc()
		return request.Context{}, nil, err
	}
	return req, strategy, nil
}

func (s *Service) run(ctx context.Context, req *request.Context, strategy Strategy) ([]result.Item, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	k := string(req.Kind())
	ctx = logger.With(ctx, zap.String("search_kind", k), zap.String("strategy", strategy.Name()))

	start := time.Now()
	items, err := strategy.Search(ctx, req)
	metrics.SearchDuration.WithLabelValues(k).Observe(time.Since(start).Seconds())
	metrics.SearchRequestsTotal.WithLabelValues(k, outcomeOf(err)).Inc()

	if err != nil {
		logger.FromContext(ctx).Warn("Place search failed", zap.Error(err))
		return nil, err
	}
	metrics.SearchResultsCount.WithLabelValues(k).Observe(float64(len(items)))
	return items, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidParameter):
		return "invalid"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream"
	default:
		return "error"
	}
}
