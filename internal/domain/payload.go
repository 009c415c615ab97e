package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// recordMarkerKeys identify a record among the values of a keyed (legacy) payload.
var recordMarkerKeys = []string{"lat", "latitude", "flight_id"}

// ParseUpstreamPayload extracts the raw records from any of the three payload
// shapes the flight proxy returns. A well-formed body of any other shape yields
// no records. Only a body that is not JSON at all is an error.
func ParseUpstreamPayload(body []byte) ([]RawRecord, error) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	switch v := root.(type) {
	case []any:
		return recordsFromArray(v), nil
	case map[string]any:
		if data, ok := v["data"].([]any); ok {
			return recordsFromArray(data), nil
		}
		return recordsFromKeyedObject(v), nil
	default:
		return []RawRecord{}, nil
	}
}

// recordsFromArray keeps the object elements of an array; scalars are skipped.
func recordsFromArray(items []any) []RawRecord {
	out := make([]RawRecord, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, RawRecord(m))
		}
	}
	return out
}

// recordsFromKeyedObject returns the object values that look like flight
// records, ordered by key so repeated parses agree.
func recordsFromKeyedObject(obj map[string]any) []RawRecord {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]RawRecord, 0, len(keys))
	for _, k := range keys {
		m, ok := obj[k].(map[string]any)
		if !ok {
			continue
		}
		rec := RawRecord(m)
		if rec.HasAnyKey(recordMarkerKeys...) {
			out = append(out, rec)
		}
	}
	return out
}

// NormalizeFlights validates and normalizes parsed records, returning the
// valid flights in upstream order and how many records were dropped.
func NormalizeFlights(records []RawRecord) (flights []FlightRecord, rejected int) {
	flights = make([]FlightRecord, 0, len(records))
	for _, r := range records {
		rec, ok := NormalizeFlight(r)
		if !ok {
			rejected++
			continue
		}
		flights = append(flights, rec)
	}
	return flights, rejected
}
