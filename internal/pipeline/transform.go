package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/flights"
)

// Enricher turns a flight query result into a publishable snapshot, resolving
// each flight's airports and building its view.
type Enricher struct {
	lookup domain.AirportLookup
	ref    domain.ReferenceData
	logger *slog.Logger
}

// NewEnricher creates an Enricher. Pass a nil lookup to skip airport
// resolution; routes then keep their default progress.
func NewEnricher(lookup domain.AirportLookup, ref domain.ReferenceData, logger *slog.Logger) *Enricher {
	return &Enricher{lookup: lookup, ref: ref, logger: logger}
}

// Enrich builds the snapshot of res.
func (e *Enricher) Enrich(ctx context.Context, res flights.Result) domain.Snapshot {
	snap := domain.Snapshot{
		Bounds:    res.Bounds,
		Flights:   make([]domain.FlightView, 0, len(res.Flights)),
		Rejected:  res.Rejected,
		FromCache: res.FromCache,
		Throttled: res.Throttled,
		PolledAt:  res.FetchedAt,
	}
	for _, f := range res.Flights {
		if ctx.Err() != nil {
			break
		}
		snap.Flights = append(snap.Flights, domain.EnrichFlight(ctx, f, e.lookup, e.ref, e.logger))
	}
	return snap
}
