package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/domain/place"
	"github.com/kailas-cloud/placesearch/internal/domain/search/kind"
	"github.com/kailas-cloud/placesearch/internal/domain/search/request"
	"github.com/kailas-cloud/placesearch/internal/domain/search/result"
	"github.com/kailas-cloud/placesearch/internal/logger"
	"github.com/kailas-cloud/placesearch/internal/metrics"
)

// DefaultCategoryRadius is the category search radius in meters when none is configured.
const DefaultCategoryRadius = 1000.0

// CategoryStrategy answers category searches, caching the requester-independent
// part of each result by position grid.
type CategoryStrategy struct {
	lookups   *lookups
	cache     ResultCache
	assembler *Assembler
	radius    float64
}

// NewCategoryStrategy creates the category strategy.
func NewCategoryStrategy(c Collaborators, cache ResultCache, assembler *Assembler, radius float64) *CategoryStrategy {
	if radius <= 0 {
		radius = DefaultCategoryRadius
	}
	return &CategoryStrategy{
		lookups:   c.lookups(),
		cache:     cache,
		assembler: assembler,
		radius:    radius,
	}
}

// Name implements Strategy.
func (s *CategoryStrategy) Name() string { return "category" }

// Priority implements Strategy.
func (s *CategoryStrategy) Priority() int { return 2 }

// Supports implements Strategy.
func (s *CategoryStrategy) Supports(k kind.Kind) bool { return k == kind.Category }

// Search serves from the cache when possible, otherwise from the place store.
// Bookmark state is always looked up for the current requester.
func (s *CategoryStrategy) Search(ctx context.Context, req *request.Context) ([]result.Item, error) {
	log := logger.FromContext(ctx)

	cached, found, err := s.cache.Get(ctx, req.Category(), req.Lat(), req.Lng())
	switch {
	case err != nil:
		metrics.SearchCacheTotal.WithLabelValues("error").Inc()
		log.Warn("Search cache read failed, treating as miss",
			zap.String("category", req.Category()),
			zap.Error(err),
		)
	case found:
		metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
		return s.withBookmarks(ctx, req, cached)
	default:
		metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
	}

	places, err := s.lookups.withinRadiusByCategory(ctx, req.Category(), req.Lat(), req.Lng(), s.radius)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		s.put(ctx, req, []result.Cached{})
		return []result.Item{}, nil
	}

	enr, err := s.lookups.gather(ctx, place.IDs(places), nil, false)
	if err != nil {
		return nil, err
	}

	payload := make([]result.Cached, len(places))
	for i, p := range places {
		keywords := enr.records[p.ID].Keywords
		if keywords == nil {
			keywords = []string{}
		}
		payload[i] = result.Cached{
			PlaceID:     p.ID,
			Name:        p.Name,
			Thumbnail:   p.ImageURL,
			Distance:    p.Distance,
			Latitude:    p.Latitude,
			Longitude:   p.Longitude,
			Category:    req.Category(),
			Keywords:    keywords,
			MomentCount: enr.moments[p.ID],
		}
	}
	s.put(ctx, req, payload)

	return s.withBookmarks(ctx, req, payload)
}

// put stores the payload. Failures only cost a future miss, so they are logged.
func (s *CategoryStrategy) put(ctx context.Context, req *request.Context, payload []result.Cached) {
	if err := s.cache.Put(ctx, req.Category(), req.Lat(), req.Lng(), payload); err != nil {
		logger.FromContext(ctx).Warn("Search cache write failed",
			zap.String("category", req.Category()),
			zap.Error(err),
		)
	}
}

// withBookmarks merges the requester's bookmark state into a cached payload,
// preserving payload order.
func (s *CategoryStrategy) withBookmarks(
	ctx context.Context, req *request.Context, payload []result.Cached,
) ([]result.Item, error) {
	if len(payload) == 0 {
		return []result.Item{}, nil
	}

	ids := make([]int64, len(payload))
	for i, c := range payload {
		ids[i] = c.PlaceID
	}
	status, err := s.lookups.bookmarkStatus(ctx, req.Requester(), ids)
	if err != nil {
		return nil, err
	}

	items := make([]result.Item, len(payload))
	for i, c := range payload {
		distance := c.Distance
		src := source{
			ID:             c.PlaceID,
			Name:           c.Name,
			Thumbnail:      c.Thumbnail,
			Latitude:       c.Latitude,
			Longitude:      c.Longitude,
			Distance:       &distance,
			StoredKeywords: c.Keywords,
			MomentCount:    c.MomentCount,
			Bookmarked:     status[c.PlaceID],
		}
		items[i] = s.assembler.Assemble(&src)
	}
	return items, nil
}
