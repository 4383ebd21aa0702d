package matching

import "math"

// EarthRadiusKm is the mean Earth radius used for all distances.
const EarthRadiusKm = 6371.0

// HaversineDistance returns the great-circle distance in kilometres between two
// points given in decimal degrees. Coordinates are not range checked; callers
// validate profiles before they get here.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceBetween is HaversineDistance over two profiles.
func DistanceBetween(a, b *UserProfile) float64 {
	return HaversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// BoundingBox is a lat/lng rectangle that contains every point within some
// radius of a centre. It is only ever used as a coarse pre-filter.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// Contains reports whether the point lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// BoundingBoxAround returns the box enclosing the circle of radiusKm around
// (lat, lng). ok is false when the circle reaches a pole or wraps the
// antimeridian; the caller must then scan without a box.
func BoundingBoxAround(lat, lng, radiusKm float64) (box BoundingBox, ok bool) {
	if radiusKm <= 0 {
		return BoundingBox{}, false
	}
	angular := radiusKm / EarthRadiusKm
	if angular >= math.Pi/2 {
		return BoundingBox{}, false
	}

	dLat := toDegrees(angular)
	minLat, maxLat := lat-dLat, lat+dLat
	if minLat <= -90 || maxLat >= 90 {
		return BoundingBox{}, false
	}

	// Exact longitude half-width of a spherical cap, wider than angular/cos(lat).
	ratio := math.Sin(angular) / math.Cos(toRadians(lat))
	if ratio >= 1 {
		return BoundingBox{}, false
	}
	dLng := toDegrees(math.Asin(ratio))
	minLng, maxLng := lng-dLng, lng+dLng
	if minLng < -180 || maxLng > 180 {
		return BoundingBox{}, false
	}

	const margin = 1e-9
	return BoundingBox{
		MinLat: minLat - margin,
		MaxLat: maxLat + margin,
		MinLng: minLng - margin,
		MaxLng: maxLng + margin,
	}, true
}
