// Package recommender is an HTTP client for the place recommendation service.
package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/domain"
	"github.com/kailas-cloud/placesearch/internal/domain/place"
	"github.com/kailas-cloud/placesearch/internal/metrics"
)

const (
	driverName    = "http"
	recommendPath = "/place/recommend"
	healthPath    = "/health"

	// maxErrorBody caps how much of a failed response body ends up in the error.
	maxErrorBody = 512
)

// Client calls POST {BaseURL}/place/recommend.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// Config holds the recommendation service settings.
type Config struct {
	BaseURL string
	// APIKey is sent as a bearer token when the request carries no override credential.
	APIKey  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates a recommendation service client.
func New(cfg *Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type recommendRequest struct {
	Text string `json:"text"`
}

type recommendation struct {
	ID              int64    `json:"id"`
	SimilarityScore *float64 `json:"similarity_score"`
	Keywords        []string `json:"keyword"`
}

type recommendResponse struct {
	Recommendations []recommendation `json:"recommendations"`
	PlaceCategory   string           `json:"place_category"`
}

// Recommend sends the free-text query. A non-empty credential overrides the configured key.
// Every failure wraps domain.ErrUpstream.
func (c *Client) Recommend(ctx context.Context, query, credential string) (place.AIResponse, error) {
	body, err := json.Marshal(recommendRequest{Text: query})
	if err != nil {
		return place.AIResponse{}, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+recommendPath, bytes.NewReader(body))
	if err != nil {
		return place.AIResponse{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.bearer(credential); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RecommenderRequestDuration.WithLabelValues(driverName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecommenderRequestsTotal.WithLabelValues(driverName, "error").Inc()
		return place.AIResponse{}, fmt.Errorf("recommend request: %w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecommenderRequestsTotal.WithLabelValues(driverName, "error").Inc()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("recommender returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(detail)),
		)
		return place.AIResponse{}, fmt.Errorf("recommender status %d: %w", resp.StatusCode, domain.ErrUpstream)
	}

	var decoded recommendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.RecommenderRequestsTotal.WithLabelValues(driverName, "error").Inc()
		return place.AIResponse{}, fmt.Errorf("decode recommend response: %w: %w", domain.ErrUpstream, err)
	}

	metrics.RecommenderRequestsTotal.WithLabelValues(driverName, "success").Inc()
	return toAIResponse(decoded), nil
}

// HealthCheck verifies that the recommendation service answers GET /health.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("recommender health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recommender health: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) bearer(credential string) string {
	if credential = strings.TrimSpace(credential); credential != "" {
		return credential
	}
	return c.apiKey
}

func toAIResponse(r recommendResponse) place.AIResponse {
	out := place.AIResponse{Category: r.PlaceCategory}
	if len(r.Recommendations) == 0 {
		return out
	}
	out.Recommendations = make([]place.Recommendation, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		out.Recommendations = append(out.Recommendations, place.Recommendation{
			PlaceID:  rec.ID,
			Score:    rec.SimilarityScore,
			Keywords: rec.Keywords,
		})
	}
	return out
}
