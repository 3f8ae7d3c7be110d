package bookmark

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryBookmarked = `
SELECT place_id
FROM place_bookmark
WHERE user_id = $1 AND place_id = ANY($2)`

// Repo reads place bookmarks from Postgres.
type Repo struct {
	db *sqlx.DB
}

// New creates a bookmark repository.
func New(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// StatusMap reports, for every id, whether the requester bookmarked it.
// Anonymous requesters get an empty map without a query.
func (r *Repo) StatusMap(ctx context.Context, requester *int64, ids []int64) (map[int64]bool, error) {
	if requester == nil || len(ids) == 0 {
		return map[int64]bool{}, nil
	}

	var bookmarked []int64
	if err := r.db.SelectContext(ctx, &bookmarked, queryBookmarked, *requester, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("select bookmarks: %w", err)
	}

	status := make(map[int64]bool, len(ids))
	for _, id := range ids {
		status[id] = false
	}
	for _, id := range bookmarked {
		status[id] = true
	}
	return status, nil
}
