package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/domain"
	"github.com/kailas-cloud/placesearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterSearchMetrics()
	os.Exit(m.Run())
}

// chatServer answers /chat/completions with content as the assistant message.
func chatServer(t *testing.T, wantAuth, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer "+wantAuth {
			t.Errorf("unexpected auth header: %s", got)
		}

		var req struct {
			Model          string `json:"model"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %q, want json_object", req.ResponseFormat.Type)
		}
		if len(req.Messages) != 2 || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
}

func newTestRecommender(url string, categories ...string) *Recommender {
	return NewRecommender(&Config{
		APIKey:     "test-key",
		BaseURL:    url,
		Model:      "test-model",
		Categories: categories,
		Logger:     zap.NewNop(),
	})
}

func TestRecommender_CategoryHint(t *testing.T) {
	server := chatServer(t, "test-key", `{"place_category":"Cafe"}`)
	defer server.Close()

	resp, err := newTestRecommender(server.URL, "cafe", "bar").Recommend(context.Background(), "flat white", "")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if resp.HasRecommendations() {
		t.Error("chat driver must not return direct recommendations")
	}
	if resp.CategoryHint() != "cafe" {
		t.Errorf("category = %q, want cafe", resp.CategoryHint())
	}
}

func TestRecommender_UnknownCategory(t *testing.T) {
	server := chatServer(t, "test-key", `{"place_category":"spaceport"}`)
	defer server.Close()

	resp, err := newTestRecommender(server.URL, "cafe").Recommend(context.Background(), "rocket", "")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if resp.CategoryHint() != "" {
		t.Errorf("expected no hint for unknown category, got %q", resp.CategoryHint())
	}
}

func TestRecommender_AnyCategoryWithoutList(t *testing.T) {
	server := chatServer(t, "test-key", `{"place_category":" museum "}`)
	defer server.Close()

	resp, err := newTestRecommender(server.URL).Recommend(context.Background(), "art", "")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if resp.CategoryHint() != "museum" {
		t.Errorf("category = %q, want museum", resp.CategoryHint())
	}
}

func TestRecommender_CredentialOverride(t *testing.T) {
	server := chatServer(t, "dev-token", `{"place_category":""}`)
	defer server.Close()

	resp, err := newTestRecommender(server.URL).Recommend(context.Background(), "q", "dev-token")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if resp.CategoryHint() != "" {
		t.Errorf("unexpected hint %q", resp.CategoryHint())
	}
}

func TestRecommender_MalformedAnswer(t *testing.T) {
	server := chatServer(t, "test-key", "not json")
	defer server.Close()

	_, err := newTestRecommender(server.URL).Recommend(context.Background(), "q", "")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestRecommender_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	_, err := newTestRecommender(server.URL).Recommend(context.Background(), "hello", "")
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestRecommender_PromptListsCategories(t *testing.T) {
	r := newTestRecommender("http://unused", "bar", "cafe", " ")
	p := r.prompt()
	if !strings.HasSuffix(p, "Known categories: bar, cafe.") {
		t.Errorf("unexpected prompt: %q", p)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"quota exceeded"}`)); got != "quota exceeded" {
		t.Errorf("extractDetail = %q", got)
	}
	if got := extractDetail([]byte(`oops`)); got != "" {
		t.Errorf("expected empty detail, got %q", got)
	}
}
