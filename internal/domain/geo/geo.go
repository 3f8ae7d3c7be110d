package geo

import "math"

// EarthRadiusMeters is the mean radius of Earth used for great-circle distance.
const EarthRadiusMeters = 6_371_000.0

// GridScale is the number of grid cells per degree used to bucket nearby positions.
// 100 cells per degree is roughly 1.1 km of latitude.
const GridScale = 100

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// GridCell maps a coordinate in degrees to its grid cell index.
// The fraction is truncated toward zero, so 37.4999 and 37.4901 share cell 3749.
func GridCell(deg float64) int {
	return int(deg * GridScale)
}

// DisplayDistance converts a distance in meters into the client display unit:
// whole meters below one kilometer, kilometers with one decimal from there on.
// Halves round away from zero in both branches.
func DisplayDistance(meters float64) float64 {
	if meters < 1000 {
		return math.Round(meters)
	}
	return math.Round(meters/100) / 10
}
