package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/domain"
	"github.com/kailas-cloud/placesearch/internal/logger"
)

// Service serves the category list and search cache maintenance.
type Service struct {
	source CategorySource
	cache  CategoryCache
}

// New creates a catalog service.
func New(source CategorySource, cache CategoryCache) *Service {
	return &Service{source: source, cache: cache}
}

// Categories returns the category list, reading through the cache.
// Cache failures are logged and never fail the call.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx)

	cats, found, err := s.cache.Categories(ctx)
	switch {
	case err != nil:
		log.Warn("Category cache read failed", zap.Error(err))
	case found:
		return cats, nil
	}

	cats, err = s.source.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list categories: %w", domain.ErrUpstream, err)
	}

	if err := s.cache.PutCategories(ctx, cats); err != nil {
		log.Warn("Category cache write failed", zap.Error(err))
	}
	return cats, nil
}

// InvalidateSearchCache drops every cached search result of a category together
// with the category list, and returns how many result entries were removed.
func (s *Service) InvalidateSearchCache(ctx context.Context, category string) (int64, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return 0, fmt.Errorf("%w: category is required", domain.ErrInvalidParameter)
	}

	n, err := s.cache.InvalidateCategory(ctx, category)
	if err != nil {
		return 0, fmt.Errorf("%w: invalidate category %q: %w", domain.ErrUpstream, category, err)
	}
	if err := s.cache.InvalidateCategories(ctx); err != nil {
		return n, fmt.Errorf("%w: invalidate category list: %w", domain.ErrUpstream, err)
	}
	return n, nil
}
