package fr24

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/observability"
)

const testAPIKey = "test-key"

func testClient(baseURL, key string) *Client {
	return NewClient(Config{
		APIKey:            key,
		BaseURL:           baseURL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
	}, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_FetchPositions(t *testing.T) {
	const body = `{"data":[{"callsign":"SK100","orig_iata":"ARN","dest_iata":"CPH","lat":59.5,"lon":17.9}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/live/flight-positions/full", r.URL.Path)
		assert.Equal(t, "60,59,17,18", r.URL.Query().Get("bounds"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "v1", r.Header.Get("Accept-Version"))
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, testAPIKey).FetchPositions(context.Background(), "60,59,17,18")
	require.NoError(t, err)
	assert.JSONEq(t, body, string(got))
}

func TestClient_FetchPositions_BoundsStayOneParameter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, []string{"bounds"}, keys(q))
		assert.Equal(t, "60,59,17,18&x=y+z", q.Get("bounds"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, testAPIKey).FetchPositions(context.Background(), "60,59,17,18&x=y+z")
	require.NoError(t, err)
}

func keys(q url.Values) []string {
	out := make([]string, 0, len(q))
	for k := range q {
		out = append(out, k)
	}
	return out
}

func TestClient_FetchPositions_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, testAPIKey).FetchPositions(context.Background(), "60,59,17,18")
	require.Error(t, err)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusTooManyRequests, upErr.Status)
	assert.Contains(t, upErr.Body, "rate limited")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_NoAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := testClient(srv.URL, "")
	assert.False(t, c.Configured())
	_, err := c.FetchPositions(context.Background(), "60,59,17,18")
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.False(t, called)
}

func TestClient_RateLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: testAPIKey, BaseURL: srv.URL, RequestsPerSecond: 0.001},
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.FetchPositions(context.Background(), "1,0,0,1")
	require.NoError(t, err, "first request uses the burst")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.FetchPositions(ctx, "1,0,0,1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestClient_FetchTrail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flight-tracks", r.URL.Path)
		assert.Equal(t, "3a4b5c", r.URL.Query().Get("flight_id"))
		_, _ = w.Write([]byte(`[{"fr24_id":"3a4b5c","tracks":[
			{"timestamp":"2026-10-18T10:02:00Z","lat":59.7,"lon":17.8,"alt":3000,"gspeed":210,"track":190},
			{"timestamp":"2026-10-18T10:00:00Z","lat":59.65,"lon":17.92,"alt":0,"gspeed":150,"track":190},
			{"timestamp":"2026-10-18T10:01:00Z","lat":95,"lon":17.9,"alt":1000,"gspeed":180,"track":190}
		]}]`))
	}))
	defer srv.Close()

	trail, err := testClient(srv.URL, testAPIKey).FetchTrail(context.Background(), "3a4b5c")
	require.NoError(t, err)
	assert.Equal(t, "3a4b5c", trail.FlightID)
	require.Len(t, trail.Points, 2, "invalid positions are dropped")
	assert.True(t, trail.Points[0].Timestamp.Before(trail.Points[1].Timestamp))
	assert.InDelta(t, 59.65, trail.Points[0].Lat, 1e-9)
	assert.InDelta(t, 3000, trail.Points[1].AltitudeFeet, 1e-9)
}

func TestParseTrail_ObjectForm(t *testing.T) {
	trail, err := parseTrail("x", []byte(`{"fr24_id":"x","tracks":[{"timestamp":"2026-10-18T10:00:00Z","lat":1,"lon":2}]}`))
	require.NoError(t, err)
	assert.Len(t, trail.Points, 1)

	_, err = parseTrail("x", []byte(`nope`))
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}
