package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "fr24-test-key"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.FR24APIKey)
	assert.False(t, cfg.UpstreamConfigured())
	assert.Equal(t, "https://fr24api.flightradar24.com/api", cfg.FR24BaseURL)
	assert.Equal(t, 10*time.Second, cfg.FR24Timeout)
	assert.Equal(t, 1.0, cfg.FR24RateLimit)
	assert.False(t, cfg.MockFlights)
	assert.Equal(t, 15*time.Second, cfg.CacheDuration)
	assert.Equal(t, 10*time.Second, cfg.MinRequestDelay)
	assert.Equal(t, 24*time.Hour, cfg.AirportCacheTTL)
	assert.Equal(t, 100, cfg.ClientCacheSize)
	assert.Equal(t, 5*time.Second, cfg.LookupTimeout)
	assert.Equal(t, "https://airportsapi.com/api", cfg.AirportsAPIURL)
	assert.Empty(t, cfg.NinjasAPIKey)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.NominatimURL)
	assert.Equal(t, 1000, cfg.GeocodeCacheSize)
	assert.False(t, cfg.PollerEnabled)
	assert.Equal(t, 59.6519, cfg.WatchLat)
	assert.Equal(t, 17.9186, cfg.WatchLon)
	assert.Equal(t, 0.5, cfg.BoundsOffset)
	assert.Equal(t, 15*time.Second, cfg.PollInterval)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "live-flights", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("FR24_API_KEY", testAPIKey)
	t.Setenv("FR24_RATE_LIMIT", "0.5")
	t.Setenv("MOCK_FLIGHTS_ENABLED", "true")
	t.Setenv("FLIGHT_CACHE_DURATION", "30s")
	t.Setenv("FLIGHT_MIN_REQUEST_INTERVAL", "20s")
	t.Setenv("AIRPORT_CACHE_TTL", "1h")
	t.Setenv("AIRPORT_CLIENT_CACHE_SIZE", "50")
	t.Setenv("API_NINJAS_KEY", "ninja")
	t.Setenv("POLLER_ENABLED", "true")
	t.Setenv("WATCH_LAT", "55.618")
	t.Setenv("WATCH_LON", "12.6508")
	t.Setenv("BOUNDS_OFFSET", "1")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "flights")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.UpstreamConfigured())
	assert.Equal(t, 0.5, cfg.FR24RateLimit)
	assert.True(t, cfg.MockFlights)
	assert.Equal(t, 30*time.Second, cfg.CacheDuration)
	assert.Equal(t, 20*time.Second, cfg.MinRequestDelay)
	assert.Equal(t, time.Hour, cfg.AirportCacheTTL)
	assert.Equal(t, 50, cfg.ClientCacheSize)
	assert.Equal(t, "ninja", cfg.NinjasAPIKey)
	assert.True(t, cfg.PollerEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "flights", cfg.KafkaTopic)

	b := cfg.WatchBounds()
	assert.InDelta(t, 56.618, b.North, 1e-9)
	assert.InDelta(t, 11.6508, b.West, 1e-9)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"FR24_TIMEOUT", "bad"},
		{"FLIGHT_CACHE_DURATION", "0s"},
		{"FLIGHT_MIN_REQUEST_INTERVAL", "-5s"},
		{"AIRPORT_CACHE_TTL", "forever"},
		{"AIRPORT_CLIENT_CACHE_SIZE", "0"},
		{"GEOCODE_CACHE_SIZE", "many"},
		{"FR24_RATE_LIMIT", "0"},
		{"WATCH_LAT", "north"},
		{"WATCH_LAT", "91"},
		{"BOUNDS_OFFSET", "0"},
		{"POLL_INTERVAL", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
