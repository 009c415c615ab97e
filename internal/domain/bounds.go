package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultBoundsOffset is the half-size, in degrees, of the box queried around a user.
const DefaultBoundsOffset = 0.5

// DefaultLocation is used when the user's position is unknown: Stockholm Arlanda.
var DefaultLocation = LatLon{Lat: 59.6519, Lon: 17.9186}

// DefaultLocationName labels DefaultLocation in the UI.
const DefaultLocationName = "Arlanda (default)"

// Bounds is a rectangular query region in decimal degrees.
type Bounds struct {
	North float64
	South float64
	West  float64
	East  float64
}

// BoundsAround returns the box of +/- offset degrees centred on a point,
// clipped at the poles and the antimeridian.
func BoundsAround(lat, lon, offset float64) Bounds {
	return Bounds{
		North: math.Min(lat+offset, 90),
		South: math.Max(lat-offset, -90),
		West:  math.Max(lon-offset, -180),
		East:  math.Min(lon+offset, 180),
	}
}

// String renders the box in the proxy's "north,south,west,east" order. The
// result is the cache key for bounds queries, so it must be stable.
func (b Bounds) String() string {
	return strings.Join([]string{
		formatDegrees(b.North),
		formatDegrees(b.South),
		formatDegrees(b.West),
		formatDegrees(b.East),
	}, ",")
}

// Center returns the midpoint of the box.
func (b Bounds) Center() LatLon {
	return LatLon{Lat: (b.North + b.South) / 2, Lon: (b.West + b.East) / 2}
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p LatLon) bool {
	return p.Lat <= b.North && p.Lat >= b.South && p.Lon >= b.West && p.Lon <= b.East
}

// ParseBounds reads four comma-separated floats in north,south,west,east order.
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, fmt.Errorf("%w: want 4 comma-separated values, got %d", ErrInvalidBounds, len(parts))
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("%w: %q: %w", ErrInvalidBounds, p, err)
		}
		vals[i] = v
	}
	b := Bounds{North: vals[0], South: vals[1], West: vals[2], East: vals[3]}
	if b.North < b.South || b.North > 90 || b.South < -90 || b.West < -180 || b.East > 180 {
		return Bounds{}, fmt.Errorf("%w: %s out of range", ErrInvalidBounds, s)
	}
	return b, nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
