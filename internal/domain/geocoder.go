package domain

import (
	"context"
	"strings"
)

// DefaultPlaceName is shown when reverse geocoding finds nothing usable.
const DefaultPlaceName = "Your Location"

// placeNamePrecedence is the address component order for a human place name.
var placeNamePrecedence = []string{"city", "town", "village", "suburb", "municipality", "county"}

// ReverseGeocoder turns a coordinate into a place name.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// PlaceNameFromAddress picks the most specific populated component of a
// reverse-geocoded address, or DefaultPlaceName.
func PlaceNameFromAddress(address map[string]string) string {
	for _, key := range placeNamePrecedence {
		if v := strings.TrimSpace(address[key]); v != "" {
			return v
		}
	}
	return DefaultPlaceName
}
