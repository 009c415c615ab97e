package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

type stubGeocoder struct {
	name string
	err  error
}

func (g stubGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return g.name, g.err
}

func TestLocator_Locate(t *testing.T) {
	stockholm := &domain.LatLon{Lat: 59.3293, Lon: 18.0686}

	tests := []struct {
		name     string
		geocoder stubGeocoder
		coord    *domain.LatLon
		want     Location
	}{
		{
			name:  "unknown position uses default airport",
			coord: nil,
			want:  Location{Coord: domain.DefaultLocation, Name: "Arlanda (default)"},
		},
		{
			name:  "invalid position uses default airport",
			coord: &domain.LatLon{Lat: 91, Lon: 0},
			want:  Location{Coord: domain.DefaultLocation, Name: "Arlanda (default)"},
		},
		{
			name:     "geocoded name",
			geocoder: stubGeocoder{name: "Stockholm"},
			coord:    stockholm,
			want:     Location{Coord: *stockholm, Name: "Stockholm"},
		},
		{
			name:     "geocoder failure",
			geocoder: stubGeocoder{err: errors.New("down")},
			coord:    stockholm,
			want:     Location{Coord: *stockholm, Name: "Your Location"},
		},
		{
			name:     "empty name",
			geocoder: stubGeocoder{},
			coord:    stockholm,
			want:     Location{Coord: *stockholm, Name: "Your Location"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLocator(tt.geocoder, discardLogger())
			assert.Equal(t, tt.want, l.Locate(context.Background(), tt.coord))
		})
	}
}
