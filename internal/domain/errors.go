package domain

import "errors"

var (
	// ErrUpstreamUnavailable marks network failures and non-2xx answers from the
	// flight or airport services. Callers fall back to cached data where they have it.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedPayload is returned when the upstream body is not JSON at all.
	// A well-formed body with an unexpected shape is not an error; it yields no flights.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrAirportNotFound is returned when no tier knows the requested airport.
	ErrAirportNotFound = errors.New("airport not found")

	// ErrInvalidIATA is returned for airport codes that are not exactly three letters.
	ErrInvalidIATA = errors.New("valid IATA code required (3 letters)")

	// ErrInvalidBounds is returned when a bounding box string cannot be parsed.
	ErrInvalidBounds = errors.New("invalid bounds")
)
