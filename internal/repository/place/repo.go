package place

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kailas-cloud/placesearch/internal/domain/geo"
	domplace "github.com/kailas-cloud/placesearch/internal/domain/place"
)

// placeColumns are the projected place columns shared by every query.
const placeColumns = `p.id, p.name, p.category,
	COALESCE(p.road_address, '') AS road_address,
	COALESCE(p.lot_address, '') AS lot_address,
	COALESCE(p.image_url, '') AS image_url,
	p.latitude, p.longitude`

// haversine computes the great-circle distance in meters from ($2, $3) using
// earth radius $4.
const haversine = `$4 * 2 * ASIN(SQRT(
	POWER(SIN(RADIANS(p.latitude - $2) / 2), 2) +
	COS(RADIANS($2)) * COS(RADIANS(p.latitude)) *
	POWER(SIN(RADIANS(p.longitude - $3) / 2), 2)
))`

var (
	queryWithinRadiusByIDs = `
SELECT * FROM (
	SELECT ` + placeColumns + `, ` + haversine + ` AS distance
	FROM place p
	WHERE p.id = ANY($1)
) d
WHERE d.distance <= $5
ORDER BY d.distance, d.id`

	queryWithinRadiusByCategory = `
SELECT * FROM (
	SELECT ` + placeColumns + `, ` + haversine + ` AS distance
	FROM place p
	WHERE p.category = $1
) d
WHERE d.distance <= $5
ORDER BY d.distance, d.id`

	queryByIDsWithKeywords = `
SELECT ` + placeColumns + `,
	COALESCE(array_agg(k.keyword ORDER BY pk.id) FILTER (WHERE k.keyword IS NOT NULL), '{}') AS keywords
FROM place p
LEFT JOIN place_keyword pk ON pk.place_id = p.id
LEFT JOIN keyword k ON k.id = pk.keyword_id
WHERE p.id = ANY($1)
GROUP BY p.id
ORDER BY p.id`

	queryCategories = `SELECT DISTINCT category FROM place WHERE category <> '' ORDER BY category`
)

// Repo is the Postgres-backed place store. Distances use a haversine
// expression over the latitude/longitude columns.
type Repo struct {
	db *sqlx.DB
}

// New creates a place repository.
func New(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// WithinRadiusByIDs returns the given places within radius meters, nearest first.
func (r *Repo) WithinRadiusByIDs(
	ctx context.Context, ids []int64, lat, lng, radius float64,
) ([]domplace.WithDistance, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []distanceRow
	err := r.db.SelectContext(ctx, &rows, queryWithinRadiusByIDs,
		pq.Array(ids), lat, lng, geo.EarthRadiusMeters, radius)
	if err != nil {
		return nil, fmt.Errorf("select places by ids within radius: %w", err)
	}
	return toWithDistance(rows), nil
}

// WithinRadiusByCategory returns places of a category within radius meters, nearest first.
func (r *Repo) WithinRadiusByCategory(
	ctx context.Context, category string, lat, lng, radius float64,
) ([]domplace.WithDistance, error) {
	var rows []distanceRow
	err := r.db.SelectContext(ctx, &rows, queryWithinRadiusByCategory,
		category, lat, lng, geo.EarthRadiusMeters, radius)
	if err != nil {
		return nil, fmt.Errorf("select places by category within radius: %w", err)
	}
	return toWithDistance(rows), nil
}

// ByIDsWithKeywords returns full place records with their keyword tags.
// Unknown ids are absent from the result.
func (r *Repo) ByIDsWithKeywords(ctx context.Context, ids []int64) ([]domplace.Place, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []keywordRow
	if err := r.db.SelectContext(ctx, &rows, queryByIDsWithKeywords, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("select places with keywords: %w", err)
	}
	out := make([]domplace.Place, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// Categories returns the distinct non-empty place categories, sorted.
func (r *Repo) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	if err := r.db.SelectContext(ctx, &cats, queryCategories); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func toWithDistance(rows []distanceRow) []domplace.WithDistance {
	out := make([]domplace.WithDistance, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out
}
