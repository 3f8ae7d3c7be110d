package result

// PointType is the GeoJSON geometry type of every result location.
const PointType = "Point"

// Location is a GeoJSON point. Coordinates are ordered [lng, lat].
type Location struct {
	Type        string
	Coordinates [2]float64
}

// Point builds a location from latitude and longitude.
func Point(lat, lng float64) Location {
	return Location{Type: PointType, Coordinates: [2]float64{lng, lat}}
}

// Lat returns the latitude component.
func (l Location) Lat() float64 { return l.Coordinates[1] }

// Lng returns the longitude component.
func (l Location) Lng() float64 { return l.Coordinates[0] }

// Item is a single ranked place returned to the client.
type Item struct {
	ID        int64
	Name      string
	Thumbnail string
	// Distance is in display units: whole meters below 1 km, kilometers above.
	Distance float64
	// SimilarityScore is set only for recommender-ranked results.
	SimilarityScore *float64
	Keywords        []string
	MomentCount     int64
	Bookmarked      bool
	Location        Location
}

// Cached is the requester-independent part of a category result, as stored in the
// result cache. It never carries bookmark state.
type Cached struct {
	PlaceID     int64
	Name        string
	Thumbnail   string
	Distance    float64 // meters
	Latitude    float64
	Longitude   float64
	Category    string
	Keywords    []string
	MomentCount int64
}
