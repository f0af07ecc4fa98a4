package utils

import (
	"math"
)

// EarthRadiusKm is the mean Earth radius used by every distance computation.
const EarthRadiusKm = 6371.0

// HaversineDistance calculates the distance between two points on Earth
// using the Haversine formula. Returns distance in kilometers.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	dlat := (lat2 - lat1) * math.Pi / 180
	dlng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlng/2)*math.Sin(dlng/2)

	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// ValidLatitude reports whether lat is within [-90, 90].
func ValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lng is within [-180, 180].
func ValidLongitude(lng float64) bool {
	return !math.IsNaN(lng) && lng >= -180 && lng <= 180
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Point represents a geographical point
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox represents a rectangular area. When AllLongitudes is set the box
// only constrains latitude: it touches a pole or crosses the antimeridian.
type BoundingBox struct {
	NorthEast     Point `json:"northEast"`
	SouthWest     Point `json:"southWest"`
	AllLongitudes bool  `json:"allLongitudes"`
}

// GetBoundingBox creates a bounding box around a center point that contains
// every point within radiusKm of it.
func GetBoundingBox(centerLat, centerLng, radiusKm float64) BoundingBox {
	// Calculate the angular distance
	angularDeg := radiusKm / EarthRadiusKm * 180 / math.Pi

	latMin := centerLat - angularDeg
	latMax := centerLat + angularDeg

	box := BoundingBox{
		NorthEast: Point{Lat: math.Min(latMax, 90), Lng: 180},
		SouthWest: Point{Lat: math.Max(latMin, -90), Lng: -180},
	}
	if latMax >= 90 || latMin <= -90 {
		box.AllLongitudes = true
		return box
	}

	// Widest longitude span occurs at the latitude closest to a pole.
	maxAbsLat := math.Max(math.Abs(latMin), math.Abs(latMax))
	lngDelta := angularDeg / math.Cos(maxAbsLat*math.Pi/180)

	lngMin := centerLng - lngDelta
	lngMax := centerLng + lngDelta
	if lngMin < -180 || lngMax > 180 {
		box.AllLongitudes = true
		return box
	}

	box.NorthEast.Lng = lngMax
	box.SouthWest.Lng = lngMin
	return box
}

// IsPointInBoundingBox checks if a point is within a bounding box
func IsPointInBoundingBox(point Point, bbox BoundingBox) bool {
	if point.Lat < bbox.SouthWest.Lat || point.Lat > bbox.NorthEast.Lat {
		return false
	}
	if bbox.AllLongitudes {
		return true
	}
	return point.Lng >= bbox.SouthWest.Lng && point.Lng <= bbox.NorthEast.Lng
}
