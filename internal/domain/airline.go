package domain

import "regexp"

// flightNumberRe pulls the airline designator off a flight number: "SK1415" -> "SK".
var flightNumberRe = regexp.MustCompile(`^([A-Z]{2,3})\d+`)

// AirlineCodeFor returns the explicit airline code when upstream sent one,
// otherwise the 2-3 letter prefix of the identifier.
func AirlineCodeFor(explicit, identifier string) string {
	if explicit != "" {
		return explicit
	}
	if IsPlaceholder(identifier) {
		return ""
	}
	m := flightNumberRe.FindStringSubmatch(NormalizeIdentifierField(identifier))
	if m == nil {
		return ""
	}
	return m[1]
}

// Airline is reference data for one carrier.
type Airline struct {
	Code    string `yaml:"code" json:"code"`
	Name    string `yaml:"name" json:"name"`
	Country string `yaml:"country" json:"country"`
	Flag    string `yaml:"flag" json:"flag,omitempty"`
}

// ReferenceData is the read-only lookup surface of the bundled tables.
type ReferenceData interface {
	Airline(code string) (Airline, bool)
	AircraftTypeName(code string) (string, bool)
	Timezone(iata string) string
}
