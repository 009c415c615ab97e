// Command genmock writes synthetic FR24 live-positions payloads in each of the
// three shapes the flight parser accepts, plus the enriched views the tracker
// builds from them. It uses the mock source and domain package directly so
// fixtures match what the service serves with MOCK_FLIGHTS_ENABLED.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out-dir data/mock \
//	  -lat 59.6519 -lon 17.9186
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flight-tracker-service/internal/adapter/fr24"
	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/refdata"
)

// fixtureTime pins timestamps so regenerated fixtures diff cleanly.
var fixtureTime = time.Date(2026, time.October, 18, 10, 0, 0, 0, time.UTC)

// invalidRecords are appended to every payload so validation paths are exercised.
var invalidRecords = []map[string]any{
	{"fr24_id": "invalid-na", "callsign": "N/A", "orig_iata": "ARN", "dest_iata": "CPH", "lat": 59.6, "lon": 17.9},
	{"fr24_id": "invalid-dash", "callsign": "SK999", "orig_iata": "ARN", "dest_iata": "---", "lat": 59.7, "lon": 18.0},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "directory for the generated fixtures")
	lat := flag.Float64("lat", domain.DefaultLocation.Lat, "latitude of the box center")
	lon := flag.Float64("lon", domain.DefaultLocation.Lon, "longitude of the box center")
	offset := flag.Float64("offset", domain.DefaultBoundsOffset, "half-size of the box in degrees")
	withInvalid := flag.Bool("invalid", true, "append records that fail validation")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}

	clock := clockwork.NewFakeClockAt(fixtureTime)
	domain.SetClock(clock)
	defer domain.SetClock(nil)

	tables := refdata.Default()
	bounds := domain.BoundsAround(*lat, *lon, *offset).String()

	records, err := fr24.NewMockSource(tables, clock).Records(bounds)
	if err != nil {
		return fmt.Errorf("generate records: %w", err)
	}
	valid := len(records)
	if *withInvalid {
		records = append(records, invalidRecords...)
	}
	log.Printf("bounds %s: %d valid, %d invalid records", bounds, valid, len(records)-valid)

	keyed := make(map[string]any, len(records))
	for _, r := range records {
		keyed[fmt.Sprint(r["fr24_id"])] = r
	}
	keyed["full_count"] = len(records)
	keyed["version"] = 4

	fixtures := []struct {
		name string
		v    any
	}{
		{"positions_array.json", records},
		{"positions_data.json", map[string]any{"data": records}},
		{"positions_keyed.json", keyed},
	}
	for _, f := range fixtures {
		path := filepath.Join(*outDir, f.name)
		if err := writeJSON(path, f.v); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		log.Printf("wrote %s", path)
	}

	raw := make([]domain.RawRecord, 0, len(records))
	for _, r := range records {
		raw = append(raw, domain.RawRecord(r))
	}
	flights, rejected := domain.NormalizeFlights(raw)

	views := make([]domain.FlightView, 0, len(flights))
	for _, f := range flights {
		origin, _ := tables.Airport(f.OriginCode)
		dest, _ := tables.Airport(f.DestCode)
		views = append(views, domain.BuildFlightView(f, &origin, &dest, tables))
	}
	viewsPath := filepath.Join(*outDir, "views.json")
	if err := writeJSON(viewsPath, views); err != nil {
		return fmt.Errorf("writing views: %w", err)
	}
	log.Printf("wrote %s", viewsPath)

	printStats(views, rejected)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(views []domain.FlightView, rejected int) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Flights: %d valid, %d rejected\n", len(views), rejected)

	airlines := map[string]int{}
	placed := 0
	for _, v := range views {
		airlines[v.Flight.AirlineCode]++
		if v.ProgressKnown {
			placed++
		}
	}
	fmt.Printf("Routes placed: %d/%d\n", placed, len(views))

	codes := make([]string, 0, len(airlines))
	for c := range airlines {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	fmt.Printf("Airlines (%d):", len(codes))
	for _, c := range codes {
		fmt.Printf(" %s=%d", c, airlines[c])
	}
	fmt.Println()

	for _, v := range views {
		fmt.Printf("  %-8s %s -> %s  %3d%%  %s  %s\n",
			v.Flight.Identifier, v.Flight.OriginCode, v.Flight.DestCode,
			v.ProgressPercent, v.AltitudeDisplay, v.AircraftType)
	}
}
