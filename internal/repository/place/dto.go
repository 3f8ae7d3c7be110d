package place

import (
	"github.com/lib/pq"

	domplace "github.com/kailas-cloud/placesearch/internal/domain/place"
)

// distanceRow is one row of a radius query.
type distanceRow struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Category    string  `db:"category"`
	RoadAddress string  `db:"road_address"`
	LotAddress  string  `db:"lot_address"`
	ImageURL    string  `db:"image_url"`
	Latitude    float64 `db:"latitude"`
	Longitude   float64 `db:"longitude"`
	Distance    float64 `db:"distance"`
}

func (r *distanceRow) toDomain() domplace.WithDistance {
	return domplace.WithDistance{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		RoadAddress: r.RoadAddress,
		LotAddress:  r.LotAddress,
		ImageURL:    r.ImageURL,
		Distance:    r.Distance,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

// keywordRow is one place with its aggregated keyword tags.
type keywordRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Category    string         `db:"category"`
	RoadAddress string         `db:"road_address"`
	LotAddress  string         `db:"lot_address"`
	ImageURL    string         `db:"image_url"`
	Latitude    float64        `db:"latitude"`
	Longitude   float64        `db:"longitude"`
	Keywords    pq.StringArray `db:"keywords"`
}

func (r *keywordRow) toDomain() domplace.Place {
	kw := []string(r.Keywords)
	if kw == nil {
		kw = []string{}
	}
	return domplace.Place{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		RoadAddress: r.RoadAddress,
		LotAddress:  r.LotAddress,
		ImageURL:    r.ImageURL,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Keywords:    kw,
	}
}
