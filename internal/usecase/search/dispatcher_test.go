package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/domain"
	"github.com/kailas-cloud/placesearch/internal/domain/search/kind"
	"github.com/kailas-cloud/placesearch/internal/domain/search/request"
	"github.com/kailas-cloud/placesearch/internal/domain/search/result"
)

type stubStrategy struct {
	name     string
	priority int
	kinds    []kind.Kind
}

func (s *stubStrategy) Name() string  { return s.name }
func (s *stubStrategy) Priority() int { return s.priority }

func (s *stubStrategy) Supports(k kind.Kind) bool {
	for _, sk := range s.kinds {
		if sk == k {
			return true
		}
	}
	return false
}

func (s *stubStrategy) Search(_ context.Context, _ *request.Context) ([]result.Item, error) {
	return nil, nil
}

func TestDispatch_LowestPriorityWins(t *testing.T) {
	broad := &stubStrategy{name: "broad", priority: 5, kinds: []kind.Kind{kind.AIQuery, kind.Category}}
	ai := &stubStrategy{name: "ai", priority: 1, kinds: []kind.Kind{kind.AIQuery}}

	d := NewDispatcher(zap.NewNop(), broad, ai)

	s, err := d.Dispatch(kind.AIQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "ai" {
		t.Errorf("expected ai, got %s", s.Name())
	}

	s, err = d.Dispatch(kind.Category)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "broad" {
		t.Errorf("expected broad, got %s", s.Name())
	}
}

func TestDispatch_EqualPriorityKeepsRegistrationOrder(t *testing.T) {
	first := &stubStrategy{name: "first", priority: 2, kinds: []kind.Kind{kind.Category}}
	second := &stubStrategy{name: "second", priority: 2, kinds: []kind.Kind{kind.Category}}

	s, err := NewDispatcher(zap.NewNop(), first, second).Dispatch(kind.Category)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "first" {
		t.Errorf("expected first, got %s", s.Name())
	}
}

func TestDispatch_Unsupported(t *testing.T) {
	tests := []struct {
		name       string
		strategies []Strategy
	}{
		{"empty", nil},
		{"no match", []Strategy{&stubStrategy{name: "ai", priority: 1, kinds: []kind.Kind{kind.AIQuery}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDispatcher(zap.NewNop(), tc.strategies...).Dispatch(kind.Category)
			if !errors.Is(err, domain.ErrUnsupportedSearchType) {
				t.Errorf("expected ErrUnsupportedSearchType, got %v", err)
			}
		})
	}
}

func TestDispatch_BuiltInStrategies(t *testing.T) {
	f := newFixture()
	d := NewDispatcher(zap.NewNop(), f.categoryStrategy(0), f.aiStrategy(0, 0))

	if len(d.strategies) != 2 || d.strategies[0].Name() != "ai_query" {
		t.Fatalf("expected ai_query first, got %v", d.strategies[0].Name())
	}
	s, err := d.Dispatch(kind.Category)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "category" {
		t.Errorf("expected category, got %s", s.Name())
	}
}

func TestNewStrategies_DefaultRadii(t *testing.T) {
	f := newFixture()

	ai := f.aiStrategy(0, 0)
	if ai.radius != DefaultAIRadius || ai.fallbackRadius != DefaultAIRadius {
		t.Errorf("ai radii = %v, %v", ai.radius, ai.fallbackRadius)
	}
	ai = f.aiStrategy(800, 0)
	if ai.fallbackRadius != 800 {
		t.Errorf("fallback radius should follow radius, got %v", ai.fallbackRadius)
	}
	if c := f.categoryStrategy(-1); c.radius != DefaultCategoryRadius {
		t.Errorf("category radius = %v", c.radius)
	}
}
