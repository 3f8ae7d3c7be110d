package chi

import "github.com/kailas-cloud/placesearch/internal/domain/search/result"

// Error codes returned in ErrorResponse.Code.
const (
	codeInvalidParameter  = "invalid_parameter"
	codeUnauthorized      = "unauthorized"
	codeUpstreamError     = "upstream_error"
	codeUnsupportedSearch = "unsupported_search_type"
	codeInternalError     = "internal_error"
	codeNotFound          = "not_found"
	codeMethodNotAllowed  = "method_not_allowed"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchResponse is the body of GET /api/v1/places/search.
type SearchResponse struct {
	Total  int        `json:"total"`
	Places []PlaceDTO `json:"places"`
}

// PlaceDTO is one ranked place.
type PlaceDTO struct {
	ID              int64       `json:"id"`
	Name            string      `json:"name"`
	Thumbnail       string      `json:"thumbnail"`
	Distance        float64     `json:"distance"`
	SimilarityScore *float64    `json:"similarity_score"`
	Keywords        []string    `json:"keywords"`
	MomentCount     int64       `json:"moment_count"`
	IsBookmarked    bool        `json:"is_bookmarked"`
	Location        LocationDTO `json:"location"`
}

// LocationDTO is a GeoJSON point, coordinates in [lng, lat] order.
type LocationDTO struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// CategoriesResponse is the body of GET /api/v1/places/categories.
type CategoriesResponse struct {
	Total      int      `json:"total"`
	Categories []string `json:"categories"`
}

// InvalidateResponse is the body of DELETE /api/v1/places/search-cache/{category}.
type InvalidateResponse struct {
	Category string `json:"category"`
	Deleted  int64  `json:"deleted"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResponseFromItems(items []result.Item) SearchResponse {
	places := make([]PlaceDTO, len(items))
	for i := range items {
		places[i] = placeToDTO(&items[i])
	}
	return SearchResponse{Total: len(places), Places: places}
}

func placeToDTO(it *result.Item) PlaceDTO {
	keywords := it.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return PlaceDTO{
		ID:              it.ID,
		Name:            it.Name,
		Thumbnail:       it.Thumbnail,
		Distance:        it.Distance,
		SimilarityScore: it.SimilarityScore,
		Keywords:        keywords,
		MomentCount:     it.MomentCount,
		IsBookmarked:    it.Bookmarked,
		Location: LocationDTO{
			Type:        it.Location.Type,
			Coordinates: it.Location.Coordinates,
		},
	}
}
