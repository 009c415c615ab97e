package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawRecord is one upstream flight record exactly as decoded from JSON.
type RawRecord map[string]any

// Field names a semantic value extracted from a RawRecord.
type Field string

// Semantic fields with a fixed alias precedence.
const (
	FieldIdentifier       Field = "identifier"
	FieldOriginCode       Field = "originCode"
	FieldDestCode         Field = "destCode"
	FieldFlightID         Field = "flightID"
	FieldLatitude         Field = "latitude"
	FieldLongitude        Field = "longitude"
	FieldHeading          Field = "heading"
	FieldAltitudeFeet     Field = "altitudeFeet"
	FieldGroundSpeedKnots Field = "groundSpeedKnots"
	FieldVerticalSpeedRaw Field = "verticalSpeedRaw"
	FieldRegistration     Field = "registration"
	FieldSquawk           Field = "squawk"
	FieldAircraftTypeCode Field = "aircraftTypeCode"
	FieldSource           Field = "source"
	FieldTimestampISO     Field = "timestampIso"
	FieldETAISO           Field = "etaIso"
	FieldAirlineCode      Field = "airlineCode"
	FieldOriginCity       Field = "originCity"
	FieldDestCity         Field = "destCity"
	FieldOriginLat        Field = "originLat"
	FieldOriginLon        Field = "originLon"
	FieldDestLat          Field = "destLat"
	FieldDestLon          Field = "destLon"
)

// FieldAliases is the one precedence table for upstream keys. Order matters:
// the first alias with a non-empty value wins. Every reader of RawRecord goes
// through it so the list view, detail view and validator never disagree.
var FieldAliases = map[Field][]string{
	FieldIdentifier:       {"callsign", "flight_number", "flight"},
	FieldOriginCode:       {"orig_iata", "origin_airport_iata"},
	FieldDestCode:         {"dest_iata", "destination_airport_iata"},
	FieldFlightID:         {"fr24_id", "flight_id"},
	FieldLatitude:         {"lat", "latitude"},
	FieldLongitude:        {"lon", "longitude"},
	FieldHeading:          {"track", "heading"},
	FieldAltitudeFeet:     {"alt", "altitude"},
	FieldGroundSpeedKnots: {"gspeed", "ground_speed"},
	FieldVerticalSpeedRaw: {"vspeed"},
	FieldRegistration:     {"reg", "registration"},
	FieldSquawk:           {"squawk"},
	FieldAircraftTypeCode: {"type", "aircraft_type"},
	FieldSource:           {"source"},
	FieldTimestampISO:     {"timestamp"},
	FieldETAISO:           {"eta"},
	FieldAirlineCode:      {"painted_as", "operating_as", "airline_iata", "airline_icao"},
	FieldOriginCity:       {"origin_city", "origin_airport_name"},
	FieldDestCity:         {"destination_city", "destination_airport_name"},
	FieldOriginLat:        {"origin_lat"},
	FieldOriginLon:        {"origin_lon"},
	FieldDestLat:          {"dest_lat"},
	FieldDestLon:          {"dest_lon"},
}

// String returns the first non-blank string value for the field, trimmed.
// Numbers are rendered in their shortest form so a numeric squawk still reads.
func (r RawRecord) String(f Field) string {
	return r.FirstString(FieldAliases[f]...)
}

// Float returns the first present, finite numeric value for the field.
func (r RawRecord) Float(f Field) (float64, bool) {
	return r.FirstFloat(FieldAliases[f]...)
}

// FirstString is String over an explicit key list, for payloads outside the
// flight alias table such as airport provider responses.
func (r RawRecord) FirstString(keys ...string) string {
	for _, key := range keys {
		if s, ok := stringValue(r[key]); ok {
			return s
		}
	}
	return ""
}

// FirstFloat is Float over an explicit key list.
func (r RawRecord) FirstFloat(keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, ok := floatValue(r[key]); ok {
			return v, true
		}
	}
	return 0, false
}

// FloatPtr is Float returning nil when the field is absent.
func (r RawRecord) FloatPtr(f Field) *float64 {
	v, ok := r.Float(f)
	if !ok {
		return nil
	}
	return &v
}

// IntPtr is Float rounded to the nearest integer, nil when absent.
func (r RawRecord) IntPtr(f Field) *int {
	v, ok := r.Float(f)
	if !ok {
		return nil
	}
	n := int(math.Round(v))
	return &n
}

// Coord combines two numeric fields into a coordinate; nil unless both are present.
func (r RawRecord) Coord(latField, lonField Field) *LatLon {
	lat, okLat := r.Float(latField)
	lon, okLon := r.Float(lonField)
	if !okLat || !okLon {
		return nil
	}
	return &LatLon{Lat: lat, Lon: lon}
}

// HasAnyKey reports whether any of the keys is present, whatever its value.
func (r RawRecord) HasAnyKey(keys ...string) bool {
	for _, k := range keys {
		if _, ok := r[k]; ok {
			return true
		}
	}
	return false
}

func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func floatValue(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
