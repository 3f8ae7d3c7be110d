package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/placesearch/internal/domain"
	"github.com/kailas-cloud/placesearch/internal/domain/place"
	"github.com/kailas-cloud/placesearch/internal/workers"
)

// lookups runs collaborator calls on the worker pool.
type lookups struct {
	store     PlaceStore
	moments   MomentCounter
	bookmarks BookmarkLookup
	pool      *workers.Pool
}

// enrichment holds the per-place data gathered after a geospatial lookup.
// records is keyed by place id; places absent from it were not resolved.
type enrichment struct {
	records   map[int64]place.Place
	moments   map[int64]int64
	bookmarks map[int64]bool
}

func upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrUpstream, op, err)
}

func (l *lookups) withinRadiusByIDs(
	ctx context.Context, ids []int64, lat, lng, radius float64,
) ([]place.WithDistance, error) {
	places, err := workers.Run(ctx, l.pool, func(ctx context.Context) ([]place.WithDistance, error) {
		return l.store.WithinRadiusByIDs(ctx, ids, lat, lng, radius)
	})
	if err != nil {
		return nil, upstream("places by ids", err)
	}
	return places, nil
}

func (l *lookups) withinRadiusByCategory(
	ctx context.Context, category string, lat, lng, radius float64,
) ([]place.WithDistance, error) {
	places, err := workers.Run(ctx, l.pool, func(ctx context.Context) ([]place.WithDistance, error) {
		return l.store.WithinRadiusByCategory(ctx, category, lat, lng, radius)
	})
	if err != nil {
		return nil, upstream("places by category", err)
	}
	return places, nil
}

// gather fetches keyword records and moment counts, plus bookmark statuses when
// withBookmarks is set, concurrently. The first failure cancels the rest.
func (l *lookups) gather(
	ctx context.Context, ids []int64, requester *int64, withBookmarks bool,
) (enrichment, error) {
	var out enrichment
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := workers.Run(gctx, l.pool, func(ctx context.Context) ([]place.Place, error) {
			return l.store.ByIDsWithKeywords(ctx, ids)
		})
		if err != nil {
			return upstream("keyword records", err)
		}
		out.records = make(map[int64]place.Place, len(records))
		for _, r := range records {
			out.records[r.ID] = r
		}
		return nil
	})

	g.Go(func() error {
		counts, err := workers.Run(gctx, l.pool, func(ctx context.Context) (map[int64]int64, error) {
			return l.moments.CountPublicByPlaceIDs(ctx, ids)
		})
		if err != nil {
			return upstream("moment counts", err)
		}
		out.moments = counts
		return nil
	})

	if withBookmarks {
		g.Go(func() error {
			status, err := l.bookmarkStatus(gctx, requester, ids)
			if err != nil {
				return err
			}
			out.bookmarks = status
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return enrichment{}, err //nolint:wrapcheck // already wrapped per lookup
	}
	return out, nil
}

func (l *lookups) bookmarkStatus(ctx context.Context, requester *int64, ids []int64) (map[int64]bool, error) {
	status, err := workers.Run(ctx, l.pool, func(ctx context.Context) (map[int64]bool, error) {
		return l.bookmarks.StatusMap(ctx, requester, ids)
	})
	if err != nil {
		return nil, upstream("bookmark status", err)
	}
	return status, nil
}
