package place

import "strings"

// Place is a full place record with its stored keyword tags.
type Place struct {
	ID          int64
	Name        string
	Category    string
	RoadAddress string
	LotAddress  string
	ImageURL    string
	Latitude    float64
	Longitude   float64
	Keywords    []string
}

// WithDistance is a place projection annotated with its great-circle distance
// in meters from a query center.
type WithDistance struct {
	ID          int64
	Name        string
	Category    string
	RoadAddress string
	LotAddress  string
	ImageURL    string
	Distance    float64
	Latitude    float64
	Longitude   float64
}

// IDs returns the identifiers of the projections in order.
func IDs(places []WithDistance) []int64 {
	ids := make([]int64, len(places))
	for i, p := range places {
		ids[i] = p.ID
	}
	return ids
}

// Recommendation is a single place suggested by the recommender for a free-text query.
type Recommendation struct {
	PlaceID int64
	// Score is the 0-1 similarity, nil when the recommender did not score the place.
	Score    *float64
	Keywords []string
}

// AIResponse is the recommender's answer: ranked recommendations, or a category
// to fall back to when nothing matched directly.
type AIResponse struct {
	Recommendations []Recommendation
	Category        string
}

// HasRecommendations reports whether at least one recommendation was returned.
func (r AIResponse) HasRecommendations() bool {
	return len(r.Recommendations) > 0
}

// CategoryHint returns the trimmed fallback category, empty when absent.
func (r AIResponse) CategoryHint() string {
	return strings.TrimSpace(r.Category)
}
