package domain

import (
	"math"
	"strings"
)

// Placeholder values upstream feeds and older clients use for "unknown".
const (
	placeholderNA   = "N/A"
	placeholderDash = "---"
)

// FlightRecord is the canonical, validated form of one upstream record.
// Values are immutable after NormalizeFlight returns them.
type FlightRecord struct {
	Identifier string `json:"identifier"`
	OriginCode string `json:"origin_code"`
	DestCode   string `json:"dest_code"`
	FlightID   string `json:"flight_id,omitempty"`

	Position *LatLon `json:"position,omitempty"`
	Heading  float64 `json:"heading"`

	AltitudeFeet     *float64 `json:"altitude_feet,omitempty"`
	GroundSpeedKnots *float64 `json:"ground_speed_knots,omitempty"`
	VerticalSpeedRaw *int     `json:"vertical_speed_raw,omitempty"`
	VerticalSpeedFPM *int     `json:"vertical_speed_fpm,omitempty"`

	Registration     string `json:"registration,omitempty"`
	Squawk           string `json:"squawk,omitempty"`
	AircraftTypeCode string `json:"aircraft_type_code,omitempty"`
	Source           string `json:"source,omitempty"`
	TimestampISO     string `json:"timestamp,omitempty"`
	ETAISO           string `json:"eta,omitempty"`

	AirlineCode string `json:"airline_code,omitempty"`
	OriginCity  string `json:"origin_city,omitempty"`
	DestCity    string `json:"dest_city,omitempty"`

	OriginCoord *LatLon `json:"origin_coord,omitempty"`
	DestCoord   *LatLon `json:"dest_coord,omitempty"`
}

// NormalizeIdentifierField trims and uppercases a code or callsign.
func NormalizeIdentifierField(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// IsPlaceholder reports whether a value carries no information once normalized.
func IsPlaceholder(value string) bool {
	switch NormalizeIdentifierField(value) {
	case "", placeholderNA, placeholderDash:
		return true
	default:
		return false
	}
}

// IsValidFlight reports whether a raw record names a flight with a real
// identifier, origin and destination. Invalid records are never shown or counted.
func IsValidFlight(r RawRecord) bool {
	return !IsPlaceholder(r.String(FieldIdentifier)) &&
		!IsPlaceholder(r.String(FieldOriginCode)) &&
		!IsPlaceholder(r.String(FieldDestCode))
}

// NormalizeFlight collapses a raw record into a FlightRecord. ok is false when
// the record fails IsValidFlight.
func NormalizeFlight(r RawRecord) (FlightRecord, bool) {
	if !IsValidFlight(r) {
		return FlightRecord{}, false
	}

	rec := FlightRecord{
		Identifier: NormalizeIdentifierField(r.String(FieldIdentifier)),
		OriginCode: NormalizeIdentifierField(r.String(FieldOriginCode)),
		DestCode:   NormalizeIdentifierField(r.String(FieldDestCode)),
		FlightID:   r.String(FieldFlightID),

		Position: r.Coord(FieldLatitude, FieldLongitude),
		Heading:  normalizeHeading(r),

		AltitudeFeet:     r.FloatPtr(FieldAltitudeFeet),
		GroundSpeedKnots: r.FloatPtr(FieldGroundSpeedKnots),
		VerticalSpeedRaw: r.IntPtr(FieldVerticalSpeedRaw),

		Registration:     r.String(FieldRegistration),
		Squawk:           r.String(FieldSquawk),
		AircraftTypeCode: NormalizeIdentifierField(r.String(FieldAircraftTypeCode)),
		Source:           r.String(FieldSource),
		TimestampISO:     r.String(FieldTimestampISO),
		ETAISO:           r.String(FieldETAISO),

		OriginCity: r.String(FieldOriginCity),
		DestCity:   r.String(FieldDestCity),

		OriginCoord: r.Coord(FieldOriginLat, FieldOriginLon),
		DestCoord:   r.Coord(FieldDestLat, FieldDestLon),
	}
	rec.VerticalSpeedFPM = DecodeVerticalSpeed(rec.VerticalSpeedRaw)
	rec.AirlineCode = AirlineCodeFor(NormalizeIdentifierField(r.String(FieldAirlineCode)), rec.Identifier)

	if rec.Position != nil && !rec.Position.Valid() {
		rec.Position = nil
	}
	return rec, true
}

// normalizeHeading folds the track into [0,360); absent tracks read 0.
func normalizeHeading(r RawRecord) float64 {
	h, ok := r.Float(FieldHeading)
	if !ok {
		return 0
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// FindByIdentifier returns the flight in list whose normalized identifier
// matches id. It is how a selected flight is refreshed from a new poll.
func FindByIdentifier(list []FlightRecord, id string) (FlightRecord, bool) {
	want := NormalizeIdentifierField(id)
	if want == "" {
		return FlightRecord{}, false
	}
	for _, f := range list {
		if f.Identifier == want {
			return f, true
		}
	}
	return FlightRecord{}, false
}
