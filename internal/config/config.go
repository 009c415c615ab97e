package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

// Defaults shared by the service and the terminal client.
const (
	DefaultCacheDuration      = 15 * time.Second
	DefaultMinRequestInterval = 10 * time.Second
	DefaultAirportCacheTTL    = 24 * time.Hour
	DefaultClientCacheSize    = 100
	DefaultLookupTimeout      = 5 * time.Second
	DefaultPollInterval       = 15 * time.Second
	DefaultServiceURL         = "http://localhost:8080"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Flightradar24 upstream.
	FR24APIKey      string
	FR24BaseURL     string
	FR24Timeout     time.Duration
	FR24RateLimit   float64
	MockFlights     bool
	CacheDuration   time.Duration
	MinRequestDelay time.Duration

	// Airport lookups.
	AirportCacheTTL  time.Duration
	ClientCacheSize  int
	LookupTimeout    time.Duration
	AirportsAPIURL   string
	NinjasAPIKey     string
	NinjasBaseURL    string
	NominatimURL     string
	GeocodeCacheSize int

	// Watch-area poller.
	PollerEnabled bool
	WatchLat      float64
	WatchLon      float64
	BoundsOffset  float64
	PollInterval  time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FR24APIKey:  os.Getenv("FR24_API_KEY"),
		FR24BaseURL: sharedcfg.EnvOrDefault("FR24_BASE_URL", "https://fr24api.flightradar24.com/api"),

		AirportsAPIURL: sharedcfg.EnvOrDefault("AIRPORTSAPI_BASE_URL", "https://airportsapi.com/api"),
		NinjasAPIKey:   os.Getenv("API_NINJAS_KEY"),
		NinjasBaseURL:  sharedcfg.EnvOrDefault("API_NINJAS_BASE_URL", "https://api.api-ninjas.com/v1"),
		NominatimURL:   sharedcfg.EnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "live-flights"),
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"FR24_TIMEOUT", 10 * time.Second, &cfg.FR24Timeout},
		{"FLIGHT_CACHE_DURATION", DefaultCacheDuration, &cfg.CacheDuration},
		{"FLIGHT_MIN_REQUEST_INTERVAL", DefaultMinRequestInterval, &cfg.MinRequestDelay},
		{"AIRPORT_CACHE_TTL", DefaultAirportCacheTTL, &cfg.AirportCacheTTL},
		{"AIRPORT_LOOKUP_TIMEOUT", DefaultLookupTimeout, &cfg.LookupTimeout},
		{"POLL_INTERVAL", DefaultPollInterval, &cfg.PollInterval},
	}
	for _, d := range durations {
		if *d.dest, err = parseDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if cfg.ClientCacheSize, err = parsePositiveInt("AIRPORT_CLIENT_CACHE_SIZE", DefaultClientCacheSize); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheSize, err = parsePositiveInt("GEOCODE_CACHE_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.FR24RateLimit, err = parseFloat("FR24_RATE_LIMIT", 1); err != nil {
		return nil, err
	}
	if cfg.WatchLat, err = parseFloat("WATCH_LAT", domain.DefaultLocation.Lat); err != nil {
		return nil, err
	}
	if cfg.WatchLon, err = parseFloat("WATCH_LON", domain.DefaultLocation.Lon); err != nil {
		return nil, err
	}
	if cfg.BoundsOffset, err = parseFloat("BOUNDS_OFFSET", domain.DefaultBoundsOffset); err != nil {
		return nil, err
	}
	cfg.MockFlights = os.Getenv("MOCK_FLIGHTS_ENABLED") == "true"
	cfg.PollerEnabled = os.Getenv("POLLER_ENABLED") == "true"

	if cfg.FR24RateLimit <= 0 {
		return nil, errors.New("invalid FR24_RATE_LIMIT: must be positive")
	}
	if !(domain.LatLon{Lat: cfg.WatchLat, Lon: cfg.WatchLon}).Valid() {
		return nil, errors.New("invalid WATCH_LAT/WATCH_LON")
	}
	if cfg.BoundsOffset <= 0 || cfg.BoundsOffset > 10 {
		return nil, errors.New("invalid BOUNDS_OFFSET: must be in (0, 10]")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// UpstreamConfigured reports whether live flight data can be fetched.
func (c *Config) UpstreamConfigured() bool {
	return c.FR24APIKey != ""
}

// KafkaEnabled reports whether snapshots should be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// WatchBounds is the query region of the poller.
func (c *Config) WatchBounds() domain.Bounds {
	return domain.BoundsAround(c.WatchLat, c.WatchLon, c.BoundsOffset)
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
