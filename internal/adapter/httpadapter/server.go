// Package httpadapter serves the tracker's HTTP API alongside the health,
// readiness, and metrics endpoints.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

// PositionSource returns the raw live-positions payload of a bounds string.
type PositionSource interface {
	FetchPositions(ctx context.Context, bounds string) ([]byte, error)
}

// ReadyFunc adapts a function to sharedobs.ReadinessChecker.
type ReadyFunc func(ctx context.Context) error

// CheckReadiness calls f.
func (f ReadyFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

// AlwaysReady is the readiness checker of a server with nothing to warm up.
var AlwaysReady = ReadyFunc(func(context.Context) error { return nil })

// Dependencies are the collaborators behind the API routes. A nil Positions
// or Trails makes the matching route answer 503.
type Dependencies struct {
	Positions PositionSource
	Trails    domain.TrailFetcher
	Airports  domain.AirportLookup
	Geocoder  domain.ReverseGeocoder
	Stream    *Hub
	Ready     sharedobs.ReadinessChecker
}

// Server exposes the API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Dependencies
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API, /healthz, /readyz, and
// /metrics routes.
func NewServer(addr string, deps Dependencies, logger *slog.Logger) *Server {
	if deps.Ready == nil {
		deps.Ready = AlwaysReady
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// No WriteTimeout: it would cut /api/stream connections.
			IdleTimeout: 60 * time.Second,
		},
		deps:   deps,
		logger: logger,
	}

	mux.HandleFunc("GET /api/flights", s.handleFlights)
	mux.HandleFunc("GET /api/flights/{flightID}/trail", s.handleTrail)
	mux.HandleFunc("GET /api/airport/{iataCode}", s.handleAirport)
	mux.HandleFunc("GET /api/location", s.handleLocation)
	if deps.Stream != nil {
		mux.Handle("GET /api/stream", deps.Stream)
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(deps.Ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
// Stream connections are hijacked, so the hub is closed separately.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.deps.Stream != nil {
		s.deps.Stream.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
