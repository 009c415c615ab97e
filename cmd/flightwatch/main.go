// Command flightwatch is a terminal client of the flight tracker service. It
// lists the flights around a location and follows the selected one.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/flight-tracker-service/internal/client"
	"github.com/couchcryptid/flight-tracker-service/internal/config"
	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/flights"
	"github.com/couchcryptid/flight-tracker-service/internal/observability"
	"github.com/couchcryptid/flight-tracker-service/internal/refdata"
	"github.com/couchcryptid/flight-tracker-service/internal/trail"
)

func main() {
	serviceURL := flag.String("service", config.DefaultServiceURL, "flight tracker service base URL")
	lat := flag.String("lat", "", "latitude of your position (empty uses the default airport)")
	lon := flag.String("lon", "", "longitude of your position")
	offset := flag.Float64("offset", domain.DefaultBoundsOffset, "half-size of the bounding box in degrees")
	poll := flag.Duration("poll", config.DefaultPollInterval, "refresh interval")
	cacheDuration := flag.Duration("cache", config.DefaultCacheDuration, "how long a flight list stays fresh")
	minInterval := flag.Duration("min-interval", config.DefaultMinRequestInterval, "minimum time between upstream requests")
	airportCache := flag.Int("airport-cache", config.DefaultClientCacheSize, "airport lookups kept in memory")
	timeout := flag.Duration("timeout", 10*time.Second, "HTTP timeout for service calls")
	logFile := flag.String("log", "flightwatch.log", "log file")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "text", "log format (json, text)")
	flag.Parse()

	position, err := parsePosition(*lat, *lon)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// The terminal belongs to the UI, so logs go to a file.
	f, err := tea.LogToFile(*logFile, "flightwatch")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	logger, err := observability.NewWriterLogger(f, *logLevel, *logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	// The session has no /metrics endpoint; its counters live in a private registry.
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	api := client.New(*serviceURL, *timeout, logger)
	sess := &session{
		flights: flights.NewService(api, logger, flights.Options{
			CacheDuration:      *cacheDuration,
			MinRequestInterval: *minInterval,
			Metrics:            metrics,
		}),
		airports:     client.NewAirportCache(api, *airportCache, logger),
		locator:      client.NewLocator(api, logger),
		follower:     trail.NewFollower(api, logger),
		ref:          refdata.Default(),
		logger:       logger,
		position:     position,
		boundsOffset: *offset,
		pollInterval: *poll,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("flightwatch starting", "service", *serviceURL)
	p := tea.NewProgram(newModel(ctx, sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("ui exited", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parsePosition reads the optional -lat/-lon pair. Both empty means unknown.
func parsePosition(lat, lon string) (*domain.LatLon, error) {
	if lat == "" && lon == "" {
		return nil, nil
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid -lat %q", lat)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid -lon %q", lon)
	}
	p := domain.LatLon{Lat: la, Lon: lo}
	if !p.Valid() {
		return nil, fmt.Errorf("position %v,%v out of range", la, lo)
	}
	return &p, nil
}
