package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/domain"
	"github.com/kailas-cloud/placesearch/internal/domain/place"
	"github.com/kailas-cloud/placesearch/internal/metrics"
)

const driverName = "openai"

const systemPrompt = `You map a free-text place search to one place category.
Answer with a JSON object {"place_category": "<category>"}.
Use an empty string when no category fits.`

// Recommender answers free-text searches through an OpenAI-compatible chat model.
// The model has no access to the place catalog, so it only ever produces a
// category hint and never direct recommendations.
type Recommender struct {
	cfg        openai.ClientConfig
	client     *openai.Client
	model      string
	categories map[string]string
	logger     *zap.Logger
}

// Config holds the chat model settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Categories restricts the hint to known categories. Empty accepts any answer.
	Categories []string
	Logger     *zap.Logger
}

// NewRecommender creates an OpenAI-compatible recommender.
func NewRecommender(cfg *Config) *Recommender {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	known := make(map[string]string, len(cfg.Categories))
	for _, c := range cfg.Categories {
		if c = strings.TrimSpace(c); c != "" {
			known[strings.ToLower(c)] = c
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Recommender{
		cfg:        clientCfg,
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		categories: known,
		logger:     logger,
	}
}

type categoryAnswer struct {
	PlaceCategory string `json:"place_category"`
}

// Recommend asks the model for a category hint. A non-empty credential replaces the API key.
func (r *Recommender) Recommend(ctx context.Context, query, credential string) (place.AIResponse, error) {
	req := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: r.prompt()},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	}

	start := time.Now()

	resp, err := r.clientFor(credential).CreateChatCompletion(ctx, req)

	metrics.RecommenderRequestDuration.WithLabelValues(driverName).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.RecommenderRequestsTotal.WithLabelValues(driverName, "error").Inc()
		return place.AIResponse{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.RecommenderRequestsTotal.WithLabelValues(driverName, "error").Inc()
		return place.AIResponse{}, fmt.Errorf("empty chat completion response: %w", domain.ErrUpstream)
	}

	var answer categoryAnswer
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &answer); err != nil {
		metrics.RecommenderRequestsTotal.WithLabelValues(driverName, "error").Inc()
		return place.AIResponse{}, fmt.Errorf("decode model answer: %w: %w", domain.ErrUpstream, err)
	}

	metrics.RecommenderRequestsTotal.WithLabelValues(driverName, "success").Inc()

	category, ok := r.resolve(answer.PlaceCategory)
	if !ok {
		r.logger.Debug("model answered an unknown category",
			zap.String("query", query),
			zap.String("category", answer.PlaceCategory),
		)
		return place.AIResponse{}, nil
	}
	return place.AIResponse{Category: category}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (r *Recommender) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (r *Recommender) prompt() string {
	if len(r.categories) == 0 {
		return systemPrompt
	}
	names := make([]string, 0, len(r.categories))
	for _, c := range r.categories {
		names = append(names, c)
	}
	sort.Strings(names)
	return systemPrompt + "\nKnown categories: " + strings.Join(names, ", ") + "."
}

func (r *Recommender) clientFor(credential string) *openai.Client {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return r.client
	}
	cfg := r.cfg
	cfg.AuthToken = credential
	return openai.NewClientWithConfig(cfg)
}

// resolve maps the model answer onto a configured category, case-insensitively.
func (r *Recommender) resolve(answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", false
	}
	if len(r.categories) == 0 {
		return answer, true
	}
	c, ok := r.categories[strings.ToLower(answer)]
	return c, ok
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrUpstream for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrUpstream

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("chat API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("chat request failed: %w: %w", wrap, err)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
