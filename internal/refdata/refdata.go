// Package refdata holds the bundled reference tables: airports, airlines,
// aircraft types and airport time zones. The tables are embedded YAML so the
// binaries need no data files at runtime.
package refdata

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

//go:embed data/*.yaml
var dataFS embed.FS

const defaultTimezone = "UTC"

type airportRow struct {
	IATA string  `yaml:"iata"`
	Name string  `yaml:"name"`
	City string  `yaml:"city"`
	Lat  float64 `yaml:"lat"`
	Lon  float64 `yaml:"lon"`
}

type airportFile struct {
	Airports []airportRow      `yaml:"airports"`
	Cities   map[string]string `yaml:"cities"`
}

type airlineFile struct {
	Airlines []domain.Airline `yaml:"airlines"`
}

type aircraftFile struct {
	AircraftTypes map[string]string `yaml:"aircraft_types"`
}

type timezoneFile struct {
	Timezones map[string]string `yaml:"timezones"`
}

// Tables is the in-memory form of the bundled data. It is read-only after
// Load and safe for concurrent use.
type Tables struct {
	airports      map[string]domain.AirportInfo
	cities        map[string]string
	airlines      map[string]domain.Airline
	aircraftTypes map[string]string
	timezones     map[string]string
}

// Load parses the embedded tables.
func Load() (*Tables, error) {
	var (
		ap airportFile
		al airlineFile
		ac aircraftFile
		tz timezoneFile
	)
	for name, dst := range map[string]any{
		"data/airports.yaml":       &ap,
		"data/airlines.yaml":       &al,
		"data/aircraft_types.yaml": &ac,
		"data/timezones.yaml":      &tz,
	} {
		if err := decode(name, dst); err != nil {
			return nil, err
		}
	}

	t := &Tables{
		airports:      make(map[string]domain.AirportInfo, len(ap.Airports)),
		cities:        make(map[string]string, len(ap.Cities)),
		airlines:      make(map[string]domain.Airline, len(al.Airlines)),
		aircraftTypes: make(map[string]string, len(ac.AircraftTypes)),
		timezones:     make(map[string]string, len(tz.Timezones)),
	}
	for _, row := range ap.Airports {
		code := domain.NormalizeIdentifierField(row.IATA)
		t.airports[code] = domain.AirportInfo{
			IATA: code,
			Name: row.Name,
			City: row.City,
			Lat:  row.Lat,
			Lon:  row.Lon,
		}
	}
	for code, city := range ap.Cities {
		t.cities[domain.NormalizeIdentifierField(code)] = city
	}
	for _, a := range al.Airlines {
		a.Code = domain.NormalizeIdentifierField(a.Code)
		t.airlines[a.Code] = a
	}
	for code, name := range ac.AircraftTypes {
		t.aircraftTypes[domain.NormalizeIdentifierField(code)] = name
	}
	for code, zone := range tz.Timezones {
		t.timezones[domain.NormalizeIdentifierField(code)] = zone
	}
	return t, nil
}

func decode(name string, dst any) error {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// Default returns the process-wide tables, loading them on first use. The
// embedded files are part of the binary, so a decode failure is a build defect.
func Default() *Tables {
	defaultOnce.Do(func() {
		t, err := Load()
		if err != nil {
			panic(fmt.Sprintf("refdata: %v", err))
		}
		defaultTables = t
	})
	return defaultTables
}

// Airport returns the table entry for code. Airports known only by city come
// back without coordinates.
func (t *Tables) Airport(code string) (domain.AirportInfo, bool) {
	code = domain.NormalizeIdentifierField(code)
	if info, ok := t.airports[code]; ok {
		return info, true
	}
	if city, ok := t.cities[code]; ok {
		return domain.AirportInfo{IATA: code, City: city}, true
	}
	return domain.AirportInfo{}, false
}

// City returns the display city for an airport code, or "".
func (t *Tables) City(code string) string {
	info, _ := t.Airport(code)
	return info.City
}

// Airports lists every airport with coordinates, ordered by code.
func (t *Tables) Airports() []domain.AirportInfo {
	out := make([]domain.AirportInfo, 0, len(t.airports))
	for _, a := range t.airports {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IATA < out[j].IATA })
	return out
}

// AirportsWithin lists the positioned airports inside b, ordered by code.
func (t *Tables) AirportsWithin(b domain.Bounds) []domain.AirportInfo {
	var out []domain.AirportInfo
	for _, a := range t.Airports() {
		if p := a.Coord(); p != nil && b.Contains(*p) {
			out = append(out, a)
		}
	}
	return out
}

// Airlines lists every airline, ordered by code.
func (t *Tables) Airlines() []domain.Airline {
	out := make([]domain.Airline, 0, len(t.airlines))
	for _, a := range t.airlines {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (t *Tables) Airline(code string) (domain.Airline, bool) {
	a, ok := t.airlines[domain.NormalizeIdentifierField(code)]
	return a, ok
}

func (t *Tables) AircraftTypeName(code string) (string, bool) {
	name, ok := t.aircraftTypes[domain.NormalizeIdentifierField(code)]
	return name, ok
}

// Timezone returns the display offset of an airport, "UTC" when unknown.
func (t *Tables) Timezone(iata string) string {
	if zone, ok := t.timezones[strings.ToUpper(iata)]; ok {
		return zone
	}
	return defaultTimezone
}

// Name identifies the table as an airport provider.
func (t *Tables) Name() string { return "static" }

// LookupAirport serves the table as the last airport tier. Only entries with
// coordinates count; a city-only entry cannot place a route.
func (t *Tables) LookupAirport(_ context.Context, iata string) (*domain.AirportInfo, error) {
	info, ok := t.airports[domain.NormalizeIdentifierField(iata)]
	if !ok {
		return nil, nil
	}
	return &info, nil
}
