package domain

import (
	"context"
	"errors"
	"log/slog"
)

// EnrichFlight resolves the flight's airports and builds its view. Lookup
// failures degrade to an unplaced route (default progress) rather than an error.
func EnrichFlight(ctx context.Context, f FlightRecord, lookup AirportLookup, ref ReferenceData, logger *slog.Logger) FlightView {
	if lookup == nil {
		return BuildFlightView(f, nil, nil, ref)
	}
	origin := resolveForView(ctx, lookup, f.OriginCode, f.Identifier, logger)
	dest := resolveForView(ctx, lookup, f.DestCode, f.Identifier, logger)
	return BuildFlightView(f, origin, dest, ref)
}

func resolveForView(ctx context.Context, lookup AirportLookup, code, flight string, logger *slog.Logger) *AirportInfo {
	info, err := lookup.Resolve(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrAirportNotFound) && !errors.Is(err, ErrInvalidIATA) {
			logger.Warn("airport lookup failed",
				"flight", flight,
				"code", code,
				"error", err,
			)
		}
		return nil
	}
	return &info
}
