package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsAround(t *testing.T) {
	b := BoundsAround(DefaultLocation.Lat, DefaultLocation.Lon, DefaultBoundsOffset)

	assert.InDelta(t, 60.1519, b.North, 1e-9)
	assert.InDelta(t, 59.1519, b.South, 1e-9)
	assert.InDelta(t, 17.4186, b.West, 1e-9)
	assert.InDelta(t, 18.4186, b.East, 1e-9)
	assert.True(t, b.Contains(DefaultLocation))
	assert.False(t, b.Contains(copenhagen))

	c := b.Center()
	assert.InDelta(t, DefaultLocation.Lat, c.Lat, 1e-9)
	assert.InDelta(t, DefaultLocation.Lon, c.Lon, 1e-9)
}

func TestBoundsAround_ClipsAtEdges(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     Bounds
	}{
		{"north pole", 89.8, 10, Bounds{North: 90, South: 89.3, West: 9.5, East: 10.5}},
		{"south pole", -89.9, 10, Bounds{North: -89.4, South: -90, West: 9.5, East: 10.5}},
		{"antimeridian east", 0, 179.7, Bounds{North: 0.5, South: -0.5, West: 179.2, East: 180}},
		{"antimeridian west", 0, -179.9, Bounds{North: 0.5, South: -0.5, West: -180, East: -179.4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BoundsAround(tt.lat, tt.lon, DefaultBoundsOffset)
			assert.InDelta(t, tt.want.North, b.North, 1e-9)
			assert.InDelta(t, tt.want.South, b.South, 1e-9)
			assert.InDelta(t, tt.want.West, b.West, 1e-9)
			assert.InDelta(t, tt.want.East, b.East, 1e-9)

			_, err := ParseBounds(b.String())
			require.NoError(t, err)
		})
	}
}

func TestBounds_String(t *testing.T) {
	b := Bounds{North: 60.5, South: 59.5, West: 17, East: 18.25}
	assert.Equal(t, "60.5,59.5,17,18.25", b.String())
}

func TestParseBounds(t *testing.T) {
	b, err := ParseBounds(" 60.5, 59.5,17,18.25")
	require.NoError(t, err)
	assert.Equal(t, Bounds{North: 60.5, South: 59.5, West: 17, East: 18.25}, b)

	roundTrip, err := ParseBounds(b.String())
	require.NoError(t, err)
	assert.Equal(t, b, roundTrip)
}

func TestParseBounds_Invalid(t *testing.T) {
	for _, in := range []string{"", "1,2,3", "a,b,c,d", "59,60,17,18", "91,59,17,18", "60,59,-181,18"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseBounds(in)
			assert.ErrorIs(t, err, ErrInvalidBounds)
		})
	}
}

func TestValidIATA(t *testing.T) {
	assert.True(t, ValidIATA("ARN"))
	assert.True(t, ValidIATA("cph"))
	assert.False(t, ValidIATA("AR"))
	assert.False(t, ValidIATA("ARNX"))
	assert.False(t, ValidIATA("A1N"))
	assert.False(t, ValidIATA("ÅRN"))
}

func TestAirportInfo_Coord(t *testing.T) {
	assert.Nil(t, AirportInfo{IATA: "XXX"}.Coord())
	assert.Nil(t, AirportInfo{Lat: 100, Lon: 1}.Coord())
	assert.Equal(t, &arlanda, AirportInfo{Lat: arlanda.Lat, Lon: arlanda.Lon}.Coord())
}

func TestPlaceNameFromAddress(t *testing.T) {
	tests := []struct {
		name    string
		address map[string]string
		want    string
	}{
		{"city wins", map[string]string{"city": "Stockholm", "county": "Stockholms län"}, "Stockholm"},
		{"town before village", map[string]string{"village": "Rosersberg", "town": "Märsta"}, "Märsta"},
		{"county last", map[string]string{"county": "Uppsala län", "country": "Sweden"}, "Uppsala län"},
		{"blank ignored", map[string]string{"city": "  ", "suburb": "Kista"}, "Kista"},
		{"nothing usable", map[string]string{"country": "Sweden"}, DefaultPlaceName},
		{"nil", nil, "Your Location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlaceNameFromAddress(tt.address))
		})
	}
}
