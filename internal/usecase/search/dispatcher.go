package search

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/domain"
	"github.com/kailas-cloud/placesearch/internal/domain/search/kind"
	"github.com/kailas-cloud/placesearch/internal/domain/search/request"
	"github.com/kailas-cloud/placesearch/internal/domain/search/result"
)

// Strategy executes one kind of place search.
type Strategy interface {
	Name() string
	// Priority orders strategies; lower values are consulted first.
	Priority() int
	Supports(k kind.Kind) bool
	Search(ctx context.Context, req *request.Context) ([]result.Item, error)
}

// Dispatcher routes a classified request to the first strategy that supports it.
type Dispatcher struct {
	strategies []Strategy
}

// NewDispatcher orders strategies by ascending priority, keeping registration
// order among equal priorities.
func NewDispatcher(logger *zap.Logger, strategies ...Strategy) *Dispatcher {
	ordered := make([]Strategy, len(strategies))
	copy(ordered, strategies)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	names := make([]string, len(ordered))
	for i, s := range ordered {
		names[i] = fmt.Sprintf("%s(%d)", s.Name(), s.Priority())
	}
	logger.Info("Search strategies registered", zap.Strings("order", names))

	return &Dispatcher{strategies: ordered}
}

// Dispatch returns the strategy for k, or domain.ErrUnsupportedSearchType.
func (d *Dispatcher) Dispatch(k kind.Kind) (Strategy, error) {
	for _, s := range d.strategies {
		if s.Supports(k) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSearchType, k)
}
