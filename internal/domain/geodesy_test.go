package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	arlanda    = LatLon{Lat: 59.6519, Lon: 17.9186}
	copenhagen = LatLon{Lat: 55.6180, Lon: 12.6508}
)

func TestGreatCircleDistanceKm(t *testing.T) {
	t.Run("identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, GreatCircleDistanceKm(arlanda.Lat, arlanda.Lon, arlanda.Lat, arlanda.Lon))
		assert.Equal(t, 0.0, GreatCircleDistanceKm(-33.9, 151.2, -33.9, 151.2))
	})

	t.Run("symmetric", func(t *testing.T) {
		ab := GreatCircleDistanceKm(arlanda.Lat, arlanda.Lon, copenhagen.Lat, copenhagen.Lon)
		ba := GreatCircleDistanceKm(copenhagen.Lat, copenhagen.Lon, arlanda.Lat, arlanda.Lon)
		assert.InDelta(t, ab, ba, 1e-9)
	})

	t.Run("ARN to CPH", func(t *testing.T) {
		d := DistanceKm(arlanda, copenhagen)
		assert.InDelta(t, 530, d, 10)
	})

	t.Run("quarter meridian", func(t *testing.T) {
		d := GreatCircleDistanceKm(0, 0, 90, 0)
		assert.InDelta(t, EarthRadiusKm*math.Pi/2, d, 1e-6)
	})
}

func TestRouteProgressPercent(t *testing.T) {
	tests := []struct {
		name   string
		cur    LatLon
		orig   LatLon
		dest   LatLon
		want   int
		wantOK bool
	}{
		{"at origin", arlanda, arlanda, copenhagen, 0, true},
		{"at destination", copenhagen, arlanda, copenhagen, 100, true},
		{"midpoint", LatLon{Lat: 57.6350, Lon: 15.2847}, arlanda, copenhagen, 50, true},
		{"beyond destination clamps", LatLon{Lat: 50, Lon: 5}, arlanda, copenhagen, 100, true},
		{"origin equals destination", copenhagen, arlanda, arlanda, 0, true},
		{"latitude out of range", LatLon{Lat: 91, Lon: 0}, arlanda, copenhagen, 0, false},
		{"longitude out of range", arlanda, LatLon{Lat: 0, Lon: 181}, copenhagen, 0, false},
		{"NaN destination", arlanda, arlanda, LatLon{Lat: math.NaN(), Lon: 0}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RouteProgressPercent(tt.cur.Lat, tt.cur.Lon, tt.orig.Lat, tt.orig.Lon, tt.dest.Lat, tt.dest.Lon)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 2)
			}
		})
	}
}

func TestProgressOrDefault(t *testing.T) {
	cur := LatLon{Lat: 57.6350, Lon: 15.2847}

	p, known := ProgressOrDefault(&cur, &arlanda, &copenhagen)
	assert.True(t, known)
	assert.InDelta(t, 50, p, 1)

	p, known = ProgressOrDefault(nil, &arlanda, &copenhagen)
	assert.False(t, known)
	assert.Equal(t, DefaultProgressPercent, p)

	bad := LatLon{Lat: 95, Lon: 0}
	p, known = ProgressOrDefault(&bad, &arlanda, &copenhagen)
	assert.False(t, known)
	assert.Equal(t, 40, p)
}

func TestDecodeVerticalSpeed(t *testing.T) {
	raw := 10
	got := DecodeVerticalSpeed(&raw)
	if assert.NotNil(t, got) {
		assert.Equal(t, 640, *got)
	}

	neg := -3
	assert.Equal(t, -192, *DecodeVerticalSpeed(&neg))
	assert.Nil(t, DecodeVerticalSpeed(nil))
}
