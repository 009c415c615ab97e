// Package domain models live flight positions reported by the Flightradar24
// (FR24) API and the airport metadata used to place them on a route.
//
// # Data Source
//
// Positions come from the FR24 "live flight positions (full)" endpoint, queried
// with a bounding box around the user: "north,south,west,east" in decimal
// degrees. The service proxies that endpoint unchanged, so every consumer in
// this repository sees the raw upstream JSON and normalizes it here.
//
// # Payload Shapes
//
// The proxy has returned three shapes over time and all of them are accepted
// by [ParseUpstreamPayload]:
//
//	[{...}, {...}]                  a bare array of records
//	{"data": [{...}, {...}]}        the documented v1 envelope
//	{"2f3a1b": {...}, "full_count": 12, "version": 4}
//	                                the legacy feed keyed by flight id; only
//	                                object values carrying "lat", "latitude"
//	                                or "flight_id" are records
//
// Anything else is treated as zero flights, never as an error.
//
// # Field Aliases
//
// Upstream records are loosely typed and the same concept arrives under
// different keys depending on the feed version ("callsign" vs "flight_number",
// "orig_iata" vs "origin_airport_iata"). Every extraction goes through the
// single precedence table [FieldAliases]: the first alias holding a non-empty
// value wins. Strings are non-empty after trimming; numbers count when present
// and finite, so an altitude of 0 is a real reading.
//
// # Placeholders
//
// FR24 and older UI code use "N/A" and "---" for unknown callsigns and
// airports. A record whose identifier, origin or destination normalizes to
// empty or to one of those placeholders is invalid and is dropped before it
// can be rendered or counted. See [IsValidFlight].
//
// # Telemetry Encoding
//
// Vertical speed ("vspeed") is transmitted in units of 1/64 ft/min; see
// [DecodeVerticalSpeed]. Altitude is feet, ground speed is knots, track is
// degrees true in [0,360).
//
// # Route Progress
//
// Progress is the great-circle distance flown from the origin divided by the
// origin-destination distance, clamped to 0..100. It is a 1-D projection and
// ignores cross-track position, so a holding pattern or a dog-leg departure
// reads as progress. When coordinates are missing callers show
// [DefaultProgressPercent] instead.
package domain
