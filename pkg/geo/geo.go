package geo

import "math"

// EarthRadiusKm is the Earth radius in kilometers for Haversine.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in km between two points
// (lat/lng in degrees). Coordinates are taken as-is; the caller owns
// validity.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	φ1, φ2 := rad(lat1), rad(lat2)
	Δφ := rad(lat2 - lat1)
	Δλ := rad(lng2 - lng1)
	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Progress maps a distance inside a matching radius to 0-100;
// 100 = at the hospital, 0 = at (or beyond) the radius edge.
func Progress(distanceKm, radiusKm float64) float64 {
	if radiusKm <= 0 || distanceKm >= radiusKm {
		return 0
	}
	p := (1 - distanceKm/radiusKm) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Label returns a privacy-safe proximity label for a donor shown on the
// hospital map, so exact donor coordinates never leave the server.
func Label(progressPct float64) string {
	switch {
	case progressPct >= 75:
		return "Very Close"
	case progressPct >= 50:
		return "Nearby"
	case progressPct >= 25:
		return "Within Area"
	case progressPct > 0:
		return "Far (within range)"
	default:
		return ""
	}
}
