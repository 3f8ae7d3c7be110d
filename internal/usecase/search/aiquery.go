package search

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/domain/place"
	"github.com/kailas-cloud/placesearch/internal/domain/search/kind"
	"github.com/kailas-cloud/placesearch/internal/domain/search/request"
	"github.com/kailas-cloud/placesearch/internal/domain/search/result"
	"github.com/kailas-cloud/placesearch/internal/logger"
	"github.com/kailas-cloud/placesearch/internal/metrics"
	"github.com/kailas-cloud/placesearch/internal/workers"
)

// DefaultAIRadius is the search radius in meters around recommended places.
const DefaultAIRadius = 1000.0

// AIQueryStrategy answers free-text searches through the recommender.
type AIQueryStrategy struct {
	lookups        *lookups
	recommender    Recommender
	assembler      *Assembler
	radius         float64
	fallbackRadius float64
}

// NewAIQueryStrategy creates the free-text strategy. radius bounds recommended
// places; fallbackRadius bounds the category-hint fallback. Non-positive values
// fall back to DefaultAIRadius and radius respectively.
func NewAIQueryStrategy(
	c Collaborators, recommender Recommender, assembler *Assembler,
	radius, fallbackRadius float64,
) *AIQueryStrategy {
	if radius <= 0 {
		radius = DefaultAIRadius
	}
	if fallbackRadius <= 0 {
		fallbackRadius = radius
	}
	return &AIQueryStrategy{
		lookups:        c.lookups(),
		recommender:    recommender,
		assembler:      assembler,
		radius:         radius,
		fallbackRadius: fallbackRadius,
	}
}

// Name implements Strategy.
func (s *AIQueryStrategy) Name() string { return "ai_query" }

// Priority implements Strategy.
func (s *AIQueryStrategy) Priority() int { return 1 }

// Supports implements Strategy.
func (s *AIQueryStrategy) Supports(k kind.Kind) bool { return k == kind.AIQuery }

// Search asks the recommender and resolves its answer into ranked places.
// Recommendations win over a category hint; an answer with neither is an empty result.
func (s *AIQueryStrategy) Search(ctx context.Context, req *request.Context) ([]result.Item, error) {
	resp, err := workers.Run(ctx, s.lookups.pool, func(ctx context.Context) (place.AIResponse, error) {
		return s.recommender.Recommend(ctx, req.Query(), req.Credential())
	})
	if err != nil {
		return nil, upstream("recommend", err)
	}

	switch {
	case resp.HasRecommendations():
		return s.fromRecommendations(ctx, req, resp.Recommendations)
	case resp.CategoryHint() != "":
		metrics.RecommenderFallbackTotal.Inc()
		logger.FromContext(ctx).Debug("Recommender returned category hint",
			zap.String("category", resp.CategoryHint()),
		)
		return s.fromCategoryHint(ctx, req, resp.CategoryHint())
	default:
		return []result.Item{}, nil
	}
}

func (s *AIQueryStrategy) fromRecommendations(
	ctx context.Context, req *request.Context, recs []place.Recommendation,
) ([]result.Item, error) {
	ids := make([]int64, 0, len(recs))
	seen := make(map[int64]struct{}, len(recs))
	scores := make(map[int64]*float64, len(recs))
	keywords := make(map[int64][]string, len(recs))

	for _, r := range recs {
		if r.PlaceID == 0 {
			continue
		}
		if _, ok := seen[r.PlaceID]; !ok {
			seen[r.PlaceID] = struct{}{}
			ids = append(ids, r.PlaceID)
		}
		// first occurrence wins for duplicated ids
		if _, ok := scores[r.PlaceID]; !ok && r.Score != nil {
			scores[r.PlaceID] = r.Score
		}
		if _, ok := keywords[r.PlaceID]; !ok && len(r.Keywords) > 0 {
			keywords[r.PlaceID] = r.Keywords
		}
	}
	if len(ids) == 0 {
		return []result.Item{}, nil
	}

	places, err := s.lookups.withinRadiusByIDs(ctx, ids, req.Lat(), req.Lng(), s.radius)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return []result.Item{}, nil
	}

	enr, err := s.lookups.gather(ctx, place.IDs(places), req.Requester(), true)
	if err != nil {
		return nil, err
	}

	items := make([]result.Item, 0, len(places))
	for _, p := range places {
		rec, ok := enr.records[p.ID]
		if !ok {
			continue
		}
		src := sourceFromPlace(p, rec, enr)
		src.Score = scores[p.ID]
		src.AIKeywords = keywords[p.ID]
		items = append(items, s.assembler.Assemble(&src))
	}

	sortBySimilarity(items)
	return items, nil
}

// fromCategoryHint resolves the recommender's fallback category. Results are not cached.
func (s *AIQueryStrategy) fromCategoryHint(
	ctx context.Context, req *request.Context, category string,
) ([]result.Item, error) {
	places, err := s.lookups.withinRadiusByCategory(ctx, category, req.Lat(), req.Lng(), s.fallbackRadius)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return []result.Item{}, nil
	}

	enr, err := s.lookups.gather(ctx, place.IDs(places), req.Requester(), true)
	if err != nil {
		return nil, err
	}

	items := make([]result.Item, 0, len(places))
	for _, p := range places {
		rec, ok := enr.records[p.ID]
		if !ok {
			continue
		}
		src := sourceFromPlace(p, rec, enr)
		items = append(items, s.assembler.Assemble(&src))
	}
	return items, nil
}

func sourceFromPlace(p place.WithDistance, rec place.Place, enr enrichment) source {
	distance := p.Distance
	return source{
		ID:             p.ID,
		Name:           p.Name,
		Thumbnail:      p.ImageURL,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Distance:       &distance,
		StoredKeywords: rec.Keywords,
		MomentCount:    enr.moments[p.ID],
		Bookmarked:     enr.bookmarks[p.ID],
	}
}

// sortBySimilarity orders by descending score. Unscored items go last and ties
// keep their current (distance) order.
func sortBySimilarity(items []result.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].SimilarityScore, items[j].SimilarityScore
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}
