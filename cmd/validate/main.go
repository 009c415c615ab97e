// Command validate checks captured or generated live-positions payloads: every
// file must parse, yield the same valid flights whatever its shape, place its
// flights inside the queried box, and (optionally) rebuild the enriched views
// recorded next to it.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -payloads data/mock/positions_array.json,data/mock/positions_data.json,data/mock/positions_keyed.json \
//	  -bounds 60.1519,59.1519,17.4186,18.4186 \
//	  -views data/mock/views.json \
//	  -expect-rejected 2
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/refdata"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// payload is one parsed input file.
type payload struct {
	path     string
	flights  []domain.FlightRecord
	rejected int
}

func main() {
	payloads := flag.String("payloads", "", "comma-separated payload files")
	bounds := flag.String("bounds", "", "north,south,west,east box the payloads were queried with")
	viewsPath := flag.String("views", "", "optional enriched views fixture to rebuild and compare")
	expectRejected := flag.Int("expect-rejected", -1, "expected rejected records per file, -1 to skip")
	flag.Parse()

	if *payloads == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(strings.Split(*payloads, ","), *bounds, *viewsPath, *expectRejected); code != 0 {
		os.Exit(code)
	}
}

func run(paths []string, boundsArg, viewsPath string, expectRejected int) int {
	fmt.Println("=== Flight Payload Validation ===")
	fmt.Println()

	var box *domain.Bounds
	if boundsArg != "" {
		b, err := domain.ParseBounds(boundsArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		box = &b
	}

	parsing := &phase{name: "Payload parsing"}
	loaded := make([]payload, 0, len(paths))
	for _, path := range paths {
		p, err := loadPayload(strings.TrimSpace(path))
		if err != nil {
			parsing.errorf("%s: %v", path, err)
			continue
		}
		if len(p.flights) == 0 {
			parsing.errorf("%s: no valid flights", path)
		}
		loaded = append(loaded, p)
	}

	phases := []*phase{
		parsing,
		validateRejections(loaded, expectRejected),
		validateCoordinates(loaded, box),
		validateShapeConsistency(loaded),
	}
	if viewsPath != "" && len(loaded) > 0 {
		phases = append(phases, validateViews(loaded[0], viewsPath))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	for _, p := range loaded {
		fmt.Printf("%s: %d valid, %d rejected\n", filepath.Base(p.path), len(p.flights), p.rejected)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadPayload(path string) (payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return payload{}, err
	}
	records, err := domain.ParseUpstreamPayload(data)
	if err != nil {
		return payload{}, err
	}
	flights, rejected := domain.NormalizeFlights(records)
	return payload{path: path, flights: flights, rejected: rejected}, nil
}

func loadViews(path string) ([]domain.FlightView, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var views []domain.FlightView
	if err := json.Unmarshal(data, &views); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return views, nil
}

// ── Phases ──

func validateRejections(loaded []payload, expect int) *phase {
	p := &phase{name: "Record validation"}
	if expect < 0 {
		return p
	}
	for _, pl := range loaded {
		if pl.rejected != expect {
			p.errorf("%s: rejected %d records, expected %d", filepath.Base(pl.path), pl.rejected, expect)
		}
	}
	return p
}

func validateCoordinates(loaded []payload, box *domain.Bounds) *phase {
	p := &phase{name: "Positions and headings"}
	for _, pl := range loaded {
		name := filepath.Base(pl.path)
		for _, f := range pl.flights {
			if f.Position == nil {
				p.errorf("%s: %s has no valid position", name, f.Identifier)
				continue
			}
			if box != nil && !box.Contains(*f.Position) {
				p.errorf("%s: %s at %.4f,%.4f is outside %s", name, f.Identifier, f.Position.Lat, f.Position.Lon, box)
			}
			if f.Heading < 0 || f.Heading >= 360 {
				p.errorf("%s: %s heading %.1f out of range", name, f.Identifier, f.Heading)
			}
		}
	}
	return p
}

func validateShapeConsistency(loaded []payload) *phase {
	p := &phase{name: "Cross-shape consistency"}
	if len(loaded) < 2 {
		return p
	}
	want := identifiers(loaded[0].flights)
	for _, pl := range loaded[1:] {
		got := identifiers(pl.flights)
		if diff := cmp.Diff(want, got); diff != "" {
			p.errorf("%s vs %s flights differ (-first +other):\n%s",
				filepath.Base(loaded[0].path), filepath.Base(pl.path), diff)
		}
	}
	return p
}

func validateViews(pl payload, viewsPath string) *phase {
	p := &phase{name: "View rebuild"}
	recorded, err := loadViews(viewsPath)
	if err != nil {
		p.errorf("%v", err)
		return p
	}

	tables := refdata.Default()
	byID := make(map[string]domain.FlightView, len(recorded))
	for _, v := range recorded {
		byID[v.Flight.Identifier] = v
	}
	if len(recorded) != len(pl.flights) {
		p.errorf("views fixture has %d flights, payload has %d", len(recorded), len(pl.flights))
	}

	ignore := cmpopts.IgnoreFields(domain.FlightView{}, "BuiltAt")
	for _, f := range pl.flights {
		want, ok := byID[f.Identifier]
		if !ok {
			p.errorf("%s missing from views fixture", f.Identifier)
			continue
		}
		origin, _ := tables.Airport(f.OriginCode)
		dest, _ := tables.Airport(f.DestCode)
		got := domain.BuildFlightView(f, &origin, &dest, tables)
		if diff := cmp.Diff(want, got, ignore); diff != "" {
			p.errorf("%s view differs (-fixture +rebuilt):\n%s", f.Identifier, diff)
		}
	}
	return p
}

func identifiers(flights []domain.FlightRecord) []string {
	ids := make([]string, 0, len(flights))
	for _, f := range flights {
		ids = append(ids, f.Identifier)
	}
	sort.Strings(ids)
	return ids
}
