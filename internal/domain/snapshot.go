package domain

import "time"

// Snapshot is one poll of the watch area, enriched and ready to publish.
type Snapshot struct {
	Bounds    string       `json:"bounds"`
	Flights   []FlightView `json:"flights"`
	Rejected  int          `json:"rejected"`
	FromCache bool         `json:"from_cache"`
	Throttled bool         `json:"throttled"`
	PolledAt  time.Time    `json:"polled_at"`
}
