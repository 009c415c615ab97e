package client

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

// Location is where the session looks for flights.
type Location struct {
	Coord domain.LatLon
	Name  string
}

// Locator names the session location.
type Locator struct {
	geocoder domain.ReverseGeocoder
	logger   *slog.Logger
}

// NewLocator creates a Locator backed by geocoder.
func NewLocator(geocoder domain.ReverseGeocoder, logger *slog.Logger) *Locator {
	return &Locator{geocoder: geocoder, logger: logger}
}

// Locate returns the named location for coord. A nil coord means the user's
// position is unknown and yields the default airport. Geocoding failures fall
// back to the generic place name.
func (l *Locator) Locate(ctx context.Context, coord *domain.LatLon) Location {
	if coord == nil || !coord.Valid() {
		return Location{Coord: domain.DefaultLocation, Name: domain.DefaultLocationName}
	}
	name, err := l.geocoder.ReverseGeocode(ctx, coord.Lat, coord.Lon)
	if err != nil {
		l.logger.Warn("reverse geocode failed", "lat", coord.Lat, "lon", coord.Lon, "error", err)
		name = domain.DefaultPlaceName
	}
	if name == "" {
		name = domain.DefaultPlaceName
	}
	return Location{Coord: *coord, Name: name}
}
