package place

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS place (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	image_url TEXT,
	road_address TEXT,
	lot_address TEXT,
	latitude DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_place_category ON place(category);
CREATE INDEX IF NOT EXISTS idx_place_lat_lng ON place(latitude, longitude);

CREATE TABLE IF NOT EXISTS keyword (
	id BIGSERIAL PRIMARY KEY,
	keyword TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS place_keyword (
	id BIGSERIAL PRIMARY KEY,
	place_id BIGINT NOT NULL REFERENCES place(id) ON DELETE CASCADE,
	keyword_id BIGINT NOT NULL REFERENCES keyword(id) ON DELETE CASCADE,
	UNIQUE (place_id, keyword_id)
);

CREATE TABLE IF NOT EXISTS moment (
	id BIGSERIAL PRIMARY KEY,
	place_id BIGINT NOT NULL,
	place_name VARCHAR(100) NOT NULL,
	user_id BIGINT NOT NULL,
	title VARCHAR(50) NOT NULL,
	content TEXT NOT NULL,
	is_public BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_moment_place_public ON moment(place_id) WHERE is_public;

CREATE TABLE IF NOT EXISTS place_bookmark (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	place_id BIGINT NOT NULL REFERENCES place(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, place_id)
);
`

// RunMigrations creates the tables read by the search pipeline if they do not exist.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
