package searchcache

import "github.com/kailas-cloud/placesearch/internal/domain/search/result"

// itemDTO is the JSON form of a cached category result entry.
type itemDTO struct {
	PlaceID     int64    `json:"placeId"`
	PlaceName   string   `json:"placeName"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	Distance    float64  `json:"distance"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords"`
	MomentCount int64    `json:"momentCount"`
}

func toDTOs(items []result.Cached) []itemDTO {
	out := make([]itemDTO, len(items))
	for i, it := range items {
		kw := it.Keywords
		if kw == nil {
			kw = []string{}
		}
		out[i] = itemDTO{
			PlaceID:     it.PlaceID,
			PlaceName:   it.Name,
			Thumbnail:   it.Thumbnail,
			Distance:    it.Distance,
			Latitude:    it.Latitude,
			Longitude:   it.Longitude,
			Category:    it.Category,
			Keywords:    kw,
			MomentCount: it.MomentCount,
		}
	}
	return out
}

func fromDTOs(dtos []itemDTO) []result.Cached {
	out := make([]result.Cached, len(dtos))
	for i, d := range dtos {
		kw := d.Keywords
		if kw == nil {
			kw = []string{}
		}
		out[i] = result.Cached{
			PlaceID:     d.PlaceID,
			Name:        d.PlaceName,
			Thumbnail:   d.Thumbnail,
			Distance:    d.Distance,
			Latitude:    d.Latitude,
			Longitude:   d.Longitude,
			Category:    d.Category,
			Keywords:    kw,
			MomentCount: d.MomentCount,
		}
	}
	return out
}
