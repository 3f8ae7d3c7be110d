package search

import (
	"context"

	"github.com/kailas-cloud/placesearch/internal/domain/place"
	"github.com/kailas-cloud/placesearch/internal/domain/search/result"
)

// PlaceStore resolves places geospatially and by identifier.
type PlaceStore interface {
	// WithinRadiusByIDs returns the given places lying within radius meters of the center.
	WithinRadiusByIDs(ctx context.Context, ids []int64, lat, lng, radius float64) ([]place.WithDistance, error)
	// WithinRadiusByCategory returns places of a category ordered by ascending distance.
	WithinRadiusByCategory(ctx context.Context, category string, lat, lng, radius float64) ([]place.WithDistance, error)
	ByIDsWithKeywords(ctx context.Context, ids []int64) ([]place.Place, error)
}

// MomentCounter counts public moments per place.
type MomentCounter interface {
	CountPublicByPlaceIDs(ctx context.Context, ids []int64) (map[int64]int64, error)
}

// BookmarkLookup reports which places the requester bookmarked.
// A nil requester yields an empty map.
type BookmarkLookup interface {
	StatusMap(ctx context.Context, requester *int64, ids []int64) (map[int64]bool, error)
}

// Recommender turns a free-text query into recommended places or a category hint.
type Recommender interface {
	Recommend(ctx context.Context, query, credential string) (place.AIResponse, error)
}

// ResultCache stores requester-independent category results keyed by a coarse
// position grid. found=true with an empty slice is a cached empty result.
type ResultCache interface {
	Get(ctx context.Context, category string, lat, lng float64) (items []result.Cached, found bool, err error)
	Put(ctx context.Context, category string, lat, lng float64, items []result.Cached) error
}
