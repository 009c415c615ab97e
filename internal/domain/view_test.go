package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReference struct{}

func (stubReference) Airline(code string) (Airline, bool) {
	if code == "SK" {
		return Airline{Code: "SK", Name: "SAS Scandinavian Airlines", Country: "Sweden", Flag: "🇸🇪"}, true
	}
	return Airline{}, false
}

func (stubReference) AircraftTypeName(code string) (string, bool) {
	if code == "A20N" {
		return "Airbus A320neo", true
	}
	return "", false
}

func (stubReference) Timezone(iata string) string {
	switch iata {
	case "ARN", "CPH":
		return "Europe/Stockholm"
	default:
		return "UTC"
	}
}

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }

func sampleFlight() FlightRecord {
	return FlightRecord{
		Identifier:       "SK1415",
		OriginCode:       "ARN",
		DestCode:         "CPH",
		Position:         &LatLon{Lat: 57.6350, Lon: 15.2847},
		AltitudeFeet:     float64Ptr(34000),
		GroundSpeedKnots: float64Ptr(440),
		VerticalSpeedFPM: intPtr(640),
		AircraftTypeCode: "A20N",
		ETAISO:           "2026-10-18T11:05:00Z",
		AirlineCode:      "SK",
	}
}

func TestBuildFlightView(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 10, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	origin := &AirportInfo{IATA: "ARN", City: "Stockholm", Lat: arlanda.Lat, Lon: arlanda.Lon}
	dest := &AirportInfo{IATA: "CPH", City: "Copenhagen", Lat: copenhagen.Lat, Lon: copenhagen.Lon}

	v := BuildFlightView(sampleFlight(), origin, dest, stubReference{})

	assert.Equal(t, "SAS Scandinavian Airlines", v.AirlineName)
	assert.Equal(t, "Sweden", v.AirlineCountry)
	assert.Equal(t, "https://pics.avs.io/200/200/SK.png", v.LogoURL)
	assert.Equal(t, "Airbus A320neo", v.AircraftType)
	assert.Equal(t, "Stockholm", v.OriginCity)
	assert.Equal(t, "Copenhagen", v.DestCity)
	assert.Equal(t, "Europe/Stockholm", v.OriginTimezone)
	assert.True(t, v.ProgressKnown)
	assert.InDelta(t, 50, v.ProgressPercent, 2)
	require.NotNil(t, v.TotalDistanceKm)
	assert.InDelta(t, *v.TotalDistanceKm, *v.DistanceFromOriginKm+*v.DistanceToDestKm, 1)
	assert.NotEmpty(t, v.TimeToDestination)
	assert.Equal(t, 815, v.GroundSpeedKmh)
	assert.Equal(t, 10363, v.AltitudeMeters)
	assert.Equal(t, "10 363 m", v.AltitudeDisplay)
	assert.Equal(t, "+640", v.VerticalSpeed)
	assert.Equal(t, "11:05", v.ETA)
	assert.Equal(t, fixed, v.BuiltAt)
}

func TestBuildFlightView_UnknownAirports(t *testing.T) {
	f := sampleFlight()
	f.AirlineCode = "ZZZ"
	f.ETAISO = "tomorrow"

	v := BuildFlightView(f, nil, nil, nil)

	assert.Equal(t, "ZZZ", v.AirlineName)
	assert.Equal(t, "https://www.flightaware.com/images/airline_logos/90p/ZZZ.png", v.LogoURL)
	assert.Equal(t, "A20N", v.AircraftType)
	assert.Equal(t, "ARN", v.OriginCity)
	assert.Equal(t, "CPH", v.DestCity)
	assert.Equal(t, "UTC", v.DestTimezone)
	assert.False(t, v.ProgressKnown)
	assert.Equal(t, DefaultProgressPercent, v.ProgressPercent)
	assert.Nil(t, v.TotalDistanceKm)
	assert.Equal(t, "--:--", v.ETA)
}

func TestBuildFlightView_UpstreamValuesWin(t *testing.T) {
	f := sampleFlight()
	f.OriginCity = "Arlanda"
	f.DestCoord = &LatLon{Lat: 55.6180, Lon: 12.6508}

	v := BuildFlightView(f, &AirportInfo{City: "Stockholm"}, &AirportInfo{City: "Copenhagen", Lat: 1, Lon: 1}, nil)

	assert.Equal(t, "Arlanda", v.OriginCity)
	assert.Equal(t, f.DestCoord, v.DestCoord)
	assert.Equal(t, "Unknown", BuildFlightView(FlightRecord{}, nil, nil, nil).AircraftType)
	assert.Equal(t, "Unknown Airline", BuildFlightView(FlightRecord{}, nil, nil, nil).AirlineName)
}

func TestEstimateDuration(t *testing.T) {
	assert.Equal(t, "2h 0m", EstimateDuration(120, 60))
	assert.Equal(t, "0h 40m", EstimateDuration(530, 0))
	assert.Equal(t, "1h 15m", EstimateDuration(1000, 800))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1 234 567", FormatWhole(1234567))
	assert.Equal(t, "999", FormatWhole(999.4))
	assert.Equal(t, "0", FormatVerticalSpeed(0))
	assert.Equal(t, "-1 280", FormatVerticalSpeed(-1280))
	assert.Equal(t, "23:59", FormatETA("2026-10-19T01:59:00+02:00"))
	assert.Equal(t, "--:--", FormatETA(""))
}

type mapLookup map[string]AirportInfo

func (m mapLookup) Resolve(_ context.Context, iata string) (AirportInfo, error) {
	if iata == "ERR" {
		return AirportInfo{}, errors.New("boom")
	}
	info, ok := m[iata]
	if !ok {
		return AirportInfo{}, ErrAirportNotFound
	}
	return info, nil
}

func TestEnrichFlight(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lookup := mapLookup{
		"ARN": {IATA: "ARN", City: "Stockholm", Lat: arlanda.Lat, Lon: arlanda.Lon},
		"CPH": {IATA: "CPH", City: "Copenhagen", Lat: copenhagen.Lat, Lon: copenhagen.Lon},
	}

	v := EnrichFlight(context.Background(), sampleFlight(), lookup, nil, logger)
	assert.True(t, v.ProgressKnown)
	assert.Equal(t, "Copenhagen", v.DestCity)

	f := sampleFlight()
	f.DestCode = "ERR"
	v = EnrichFlight(context.Background(), f, lookup, nil, logger)
	assert.False(t, v.ProgressKnown)
	assert.Equal(t, 40, v.ProgressPercent)
	assert.Equal(t, "ERR", v.DestCity)

	v = EnrichFlight(context.Background(), sampleFlight(), nil, nil, logger)
	assert.False(t, v.ProgressKnown)
}
