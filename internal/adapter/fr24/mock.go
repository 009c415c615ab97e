package fr24

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

const (
	mockFlightsPerBox = 12
	kmPerDegreeLat    = 111.32
	mockTrailPoints   = 20
	mockTrailStep     = time.Minute
	mockIDPrefix      = "mock-"
)

// airportSource supplies the routes and carriers the mock source draws from.
type airportSource interface {
	Airports() []domain.AirportInfo
	Airlines() []domain.Airline
}

// MockSource synthesizes live traffic for a bounding box. The same bounds give
// the same set of flights, moving along their tracks as the clock advances, so
// the UI can be exercised without an FR24 key.
type MockSource struct {
	tables airportSource
	clock  clockwork.Clock
	epoch  time.Time
}

// NewMockSource creates a mock source drawing routes from tables.
func NewMockSource(tables airportSource, clock clockwork.Clock) *MockSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MockSource{tables: tables, clock: clock, epoch: clock.Now()}
}

// FetchPositions returns a payload in the {"data":[...]} shape.
func (m *MockSource) FetchPositions(_ context.Context, bounds string) ([]byte, error) {
	records, err := m.Records(bounds)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"data": records})
}

// Records returns the synthetic raw records for bounds at the current time.
func (m *MockSource) Records(bounds string) ([]map[string]any, error) {
	b, err := domain.ParseBounds(bounds)
	if err != nil {
		return nil, err
	}
	elapsed := m.clock.Since(m.epoch)
	flights := m.seedFlights(bounds)
	out := make([]map[string]any, 0, len(flights))
	for _, f := range flights {
		out = append(out, f.record(b, elapsed, m.clock.Now()))
	}
	return out, nil
}

// FetchTrail returns a straight-line history ending at the flight's current position.
func (m *MockSource) FetchTrail(_ context.Context, flightID string) (domain.Trail, error) {
	idx, bounds, ok := parseMockID(flightID)
	if !ok {
		return domain.Trail{}, fmt.Errorf("%w: unknown mock flight %q", domain.ErrUpstreamUnavailable, flightID)
	}
	b, err := domain.ParseBounds(bounds)
	if err != nil {
		return domain.Trail{}, fmt.Errorf("%w: unknown mock flight %q", domain.ErrUpstreamUnavailable, flightID)
	}
	flights := m.seedFlights(bounds)
	if idx < 0 || idx >= len(flights) {
		return domain.Trail{}, fmt.Errorf("%w: unknown mock flight %q", domain.ErrUpstreamUnavailable, flightID)
	}
	f := flights[idx]

	now := m.clock.Now()
	elapsed := m.clock.Since(m.epoch)
	trail := domain.Trail{FlightID: flightID, Points: make([]domain.TrailPoint, 0, mockTrailPoints)}
	for i := mockTrailPoints - 1; i >= 0; i-- {
		back := time.Duration(i) * mockTrailStep
		p := f.positionAt(b, elapsed-back)
		trail.Points = append(trail.Points, domain.TrailPoint{
			Timestamp:    now.Add(-back).UTC(),
			Lat:          p.Lat,
			Lon:          p.Lon,
			AltitudeFeet: f.altFeet,
			GroundSpeed:  f.speedKts,
			Track:        f.track,
		})
	}
	return trail, nil
}

// mockFlight is the time-independent description of one synthetic flight.
type mockFlight struct {
	id       string
	callsign string
	airline  string
	reg      string
	acType   string
	origin   domain.AirportInfo
	dest     domain.AirportInfo
	start    domain.LatLon // fraction of the box, 0..1 on each axis
	track    float64
	altFeet  float64
	speedKts float64
	vspeed   int
	squawk   string
}

var mockTypes = []string{"A20N", "A320", "A321", "B738", "B38M", "E190", "AT76", "CRJ9", "BCS3"}

func (m *MockSource) seedFlights(bounds string) []mockFlight {
	h := fnv.New64a()
	_, _ = h.Write([]byte(bounds))
	seed := h.Sum64()

	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	airports := m.tables.Airports()
	airlines := m.tables.Airlines()
	if len(airports) < 2 || len(airlines) == 0 {
		return nil
	}

	flights := make([]mockFlight, 0, mockFlightsPerBox)
	callsigns := make(map[string]bool, mockFlightsPerBox)
	for i := range mockFlightsPerBox {
		origin := airports[rng.IntN(len(airports))]
		dest := airports[rng.IntN(len(airports))]
		for dest.IATA == origin.IATA {
			dest = airports[rng.IntN(len(airports))]
		}
		airline := airlines[rng.IntN(len(airlines))]
		callsign := fmt.Sprintf("%s%d", airline.Code, 100+rng.IntN(9000))
		for callsigns[callsign] {
			callsign = fmt.Sprintf("%s%d", airline.Code, 100+rng.IntN(9000))
		}
		callsigns[callsign] = true

		climbing := rng.IntN(4) == 0
		f := mockFlight{
			id:       mockID(i, bounds),
			callsign: callsign,
			airline:  airline.Code,
			reg:      fmt.Sprintf("SE-R%c%c", 'A'+rune(rng.IntN(26)), 'A'+rune(rng.IntN(26))),
			acType:   mockTypes[rng.IntN(len(mockTypes))],
			origin:   origin,
			dest:     dest,
			start:    domain.LatLon{Lat: rng.Float64(), Lon: rng.Float64()},
			track:    math.Round(rng.Float64() * 359),
			altFeet:  float64(20000 + rng.IntN(19)*1000),
			speedKts: float64(380 + rng.IntN(120)),
			squawk:   fmt.Sprintf("%04o", rng.IntN(4096)),
		}
		if climbing {
			f.altFeet = float64(4000 + rng.IntN(12)*1000)
			f.speedKts = float64(220 + rng.IntN(80))
			f.vspeed = 20 + rng.IntN(30)
		}
		flights = append(flights, f)
	}
	return flights
}

// mockID embeds the bounds so a trail can be rebuilt from the id alone.
func mockID(idx int, bounds string) string {
	return fmt.Sprintf("%s%d@%s", mockIDPrefix, idx, bounds)
}

func parseMockID(id string) (idx int, bounds string, ok bool) {
	rest, found := strings.CutPrefix(id, mockIDPrefix)
	if !found {
		return 0, "", false
	}
	num, bounds, found := strings.Cut(rest, "@")
	if !found {
		return 0, "", false
	}
	idx, err := strconv.Atoi(num)
	if err != nil {
		return 0, "", false
	}
	return idx, bounds, true
}

// positionAt advances the flight along its track and wraps it inside b.
func (f mockFlight) positionAt(b domain.Bounds, elapsed time.Duration) domain.LatLon {
	height := b.North - b.South
	width := b.East - b.West

	distKm := f.speedKts * 1.852 * elapsed.Hours()
	rad := f.track * math.Pi / 180
	dLat := distKm * math.Cos(rad) / kmPerDegreeLat
	dLon := distKm * math.Sin(rad) / (kmPerDegreeLat * math.Max(0.1, math.Cos(b.Center().Lat*math.Pi/180)))

	return domain.LatLon{
		Lat: b.South + wrap(f.start.Lat*height+dLat, height),
		Lon: b.West + wrap(f.start.Lon*width+dLon, width),
	}
}

func wrap(v, size float64) float64 {
	if size <= 0 {
		return 0
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}

func (f mockFlight) record(b domain.Bounds, elapsed time.Duration, now time.Time) map[string]any {
	p := f.positionAt(b, elapsed)
	eta := now.Add(time.Duration(domain.DistanceKm(p, domain.LatLon{Lat: f.dest.Lat, Lon: f.dest.Lon})/(f.speedKts*1.852)*60) * time.Minute)
	return map[string]any{
		"fr24_id":    f.id,
		"callsign":   f.callsign,
		"flight":     f.callsign,
		"painted_as": f.airline,
		"reg":        f.reg,
		"type":       f.acType,
		"orig_iata":  f.origin.IATA,
		"dest_iata":  f.dest.IATA,
		"lat":        math.Round(p.Lat*1e5) / 1e5,
		"lon":        math.Round(p.Lon*1e5) / 1e5,
		"track":      f.track,
		"alt":        f.altFeet,
		"gspeed":     f.speedKts,
		"vspeed":     f.vspeed,
		"squawk":     f.squawk,
		"timestamp":  now.UTC().Format(time.RFC3339),
		"eta":        eta.UTC().Format(time.RFC3339),
		"source":     "MOCK",
	}
}
