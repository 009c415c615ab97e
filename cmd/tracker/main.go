package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flight-tracker-service/internal/adapter/airportapi"
	"github.com/couchcryptid/flight-tracker-service/internal/adapter/fr24"
	"github.com/couchcryptid/flight-tracker-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/flight-tracker-service/internal/adapter/kafka"
	"github.com/couchcryptid/flight-tracker-service/internal/adapter/nominatim"
	"github.com/couchcryptid/flight-tracker-service/internal/airport"
	"github.com/couchcryptid/flight-tracker-service/internal/config"
	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/flights"
	"github.com/couchcryptid/flight-tracker-service/internal/observability"
	"github.com/couchcryptid/flight-tracker-service/internal/pipeline"
	"github.com/couchcryptid/flight-tracker-service/internal/refdata"
)

// flightSource is what the proxy and poller need from FR24 or the mock.
type flightSource interface {
	httpadapter.PositionSource
	domain.TrailFetcher
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	tables, err := refdata.Load()
	if err != nil {
		logger.Error("failed to load reference data", "error", err)
		os.Exit(1)
	}

	// Live data needs FR24_API_KEY; without it MOCK_FLIGHTS_ENABLED substitutes
	// synthetic traffic, otherwise the proxy answers 503.
	var source flightSource
	switch {
	case cfg.UpstreamConfigured():
		source = fr24.NewClient(fr24.Config{
			APIKey:            cfg.FR24APIKey,
			BaseURL:           cfg.FR24BaseURL,
			Timeout:           cfg.FR24Timeout,
			RequestsPerSecond: cfg.FR24RateLimit,
		}, metrics, logger)
		logger.Info("fr24 upstream enabled", "base_url", cfg.FR24BaseURL, "rate_limit", cfg.FR24RateLimit)
	case cfg.MockFlights:
		source = fr24.NewMockSource(tables, nil)
		logger.Warn("FR24_API_KEY not set, serving mock flights")
	default:
		logger.Warn("FR24_API_KEY not set and mock flights disabled, flight routes will answer 503")
	}

	providers := []domain.AirportProvider{
		airportapi.NewAirportsAPI(cfg.AirportsAPIURL, cfg.LookupTimeout, logger),
	}
	if ninjas := airportapi.NewNinjas(cfg.NinjasBaseURL, cfg.NinjasAPIKey, cfg.LookupTimeout, logger); ninjas.Enabled() {
		providers = append(providers, ninjas)
	}
	resolver := airport.NewResolver(providers, tables, logger, airport.Options{
		TTL:           cfg.AirportCacheTTL,
		LookupTimeout: cfg.LookupTimeout,
		Metrics:       metrics,
	})

	geocoder := nominatim.NewCachedGeocoder(
		nominatim.NewClient(cfg.NominatimURL, cfg.LookupTimeout, metrics, logger),
		cfg.GeocodeCacheSize, metrics)

	hub := httpadapter.NewHub(logger, metrics)

	deps := httpadapter.Dependencies{
		Airports: resolver,
		Geocoder: geocoder,
		Stream:   hub,
	}
	if source != nil {
		deps.Positions = source
		deps.Trails = source
	}

	var (
		poller *pipeline.Poller
		writer *kafkaadapter.Writer
	)
	if cfg.PollerEnabled && source != nil {
		sinks := []pipeline.Sink{hub}
		if cfg.KafkaEnabled() {
			writer = kafkaadapter.NewWriter(cfg, logger)
			sinks = append(sinks, writer)
			logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
		}
		service := flights.NewService(source, logger, flights.Options{
			CacheDuration:      cfg.CacheDuration,
			MinRequestInterval: cfg.MinRequestDelay,
			Metrics:            metrics,
		})
		enricher := pipeline.NewEnricher(resolver, tables, logger)
		poller = pipeline.New(service, enricher, sinks, cfg.WatchBounds(), logger, metrics, pipeline.Options{
			Interval: cfg.PollInterval,
		})
		deps.Ready = poller
	} else if cfg.PollerEnabled {
		logger.Warn("poller enabled but no flight source configured, not starting it")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, deps, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start watch-area poller.
	if poller != nil {
		go func() {
			if err := poller.Run(ctx); err != nil {
				logger.Error("poller error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
