package domain

import "context"

// AirportInfo describes one airport. Country is empty when only the bundled
// table knew the airport.
type AirportInfo struct {
	IATA    string  `json:"iata"`
	Name    string  `json:"name"`
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Coord returns the airport position, or nil when the record has none.
func (a AirportInfo) Coord() *LatLon {
	if a.Lat == 0 && a.Lon == 0 {
		return nil
	}
	p := LatLon{Lat: a.Lat, Lon: a.Lon}
	if !p.Valid() {
		return nil
	}
	return &p
}

// AirportProvider looks airports up in one source. A nil result with a nil
// error means the source does not know the code.
type AirportProvider interface {
	Name() string
	LookupAirport(ctx context.Context, iata string) (*AirportInfo, error)
}

// AirportLookup is what enrichment needs from any airport tier.
type AirportLookup interface {
	Resolve(ctx context.Context, iata string) (AirportInfo, error)
}

// ValidIATA reports whether code is exactly three ASCII letters, any case.
func ValidIATA(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
