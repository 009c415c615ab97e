package domain

import "math"

const (
	// EarthRadiusKm is the mean Earth radius used by the spherical approximation.
	EarthRadiusKm = 6371.0

	// DefaultProgressPercent is shown when a flight's route cannot be placed,
	// e.g. an airport without known coordinates.
	DefaultProgressPercent = 40

	// minRouteKm below which origin and destination are treated as the same point.
	minRouteKm = 1.0
)

// LatLon is a WGS-84 coordinate pair in decimal degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair is a finite coordinate inside the usual ranges.
func (p LatLon) Valid() bool {
	return validCoordinate(p.Lat, p.Lon)
}

// GreatCircleDistanceKm returns the haversine distance between two points given
// in degrees. It is always non-negative and 0 for identical points.
func GreatCircleDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	a := sinDLat*sinDLat + math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*sinDLon*sinDLon
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// DistanceKm is GreatCircleDistanceKm for LatLon values.
func DistanceKm(from, to LatLon) float64 {
	return GreatCircleDistanceKm(from.Lat, from.Lon, to.Lat, to.Lon)
}

// RouteProgressPercent returns how far along its route an aircraft is, as an
// integer percentage of the origin-destination great-circle distance.
//
// The result is a projection of the distance flown from the origin, not a
// cross-track position: an aircraft 100 km off to the side of a 200 km route
// still reads 50%. ok is false when any coordinate is NaN or out of range.
// Routes shorter than 1 km report 0.
func RouteProgressPercent(curLat, curLon, origLat, origLon, destLat, destLon float64) (percent int, ok bool) {
	if !validCoordinate(curLat, curLon) ||
		!validCoordinate(origLat, origLon) ||
		!validCoordinate(destLat, destLon) {
		return 0, false
	}

	total := GreatCircleDistanceKm(origLat, origLon, destLat, destLon)
	if total < minRouteKm {
		return 0, true
	}

	traveled := GreatCircleDistanceKm(origLat, origLon, curLat, curLon)
	progress := math.Max(0, math.Min(100, traveled/total*100))
	return int(math.Round(progress)), true
}

// ProgressOrDefault is RouteProgressPercent for optional coordinates, falling
// back to DefaultProgressPercent. estimated is false when the fallback was used.
func ProgressOrDefault(current, origin, dest *LatLon) (percent int, estimated bool) {
	if current == nil || origin == nil || dest == nil {
		return DefaultProgressPercent, false
	}
	p, ok := RouteProgressPercent(current.Lat, current.Lon, origin.Lat, origin.Lon, dest.Lat, dest.Lon)
	if !ok {
		return DefaultProgressPercent, false
	}
	return p, true
}

func validCoordinate(lat, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(lon) &&
		lat >= -90 && lat <= 90 &&
		lon >= -180 && lon <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
