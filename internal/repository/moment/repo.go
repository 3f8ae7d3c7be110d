package moment

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryCountPublic = `
SELECT place_id, COUNT(*) AS moment_count
FROM moment
WHERE place_id = ANY($1) AND is_public = true
GROUP BY place_id`

type countRow struct {
	PlaceID int64 `db:"place_id"`
	Count   int64 `db:"moment_count"`
}

// Repo counts moments stored in Postgres.
type Repo struct {
	db *sqlx.DB
}

// New creates a moment repository.
func New(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// CountPublicByPlaceIDs returns public moment counts per place. Places with no
// public moments are absent from the map.
func (r *Repo) CountPublicByPlaceIDs(ctx context.Context, ids []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []countRow
	if err := r.db.SelectContext(ctx, &rows, queryCountPublic, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("count public moments: %w", err)
	}
	for _, row := range rows {
		counts[row.PlaceID] = row.Count
	}
	return counts, nil
}
