package domain

import (
	"context"
	"time"
)

// TrailPoint is one historical position report of a flight.
type TrailPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	AltitudeFeet float64   `json:"alt"`
	GroundSpeed  float64   `json:"gspeed"`
	Track        float64   `json:"track"`
}

// Trail is the position history of one flight, oldest first.
type Trail struct {
	FlightID string       `json:"flight_id"`
	Points   []TrailPoint `json:"points"`
}

// TrailFetcher loads a flight's trail.
type TrailFetcher interface {
	FetchTrail(ctx context.Context, flightID string) (Trail, error)
}
