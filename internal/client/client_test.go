package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_FetchPositions(t *testing.T) {
	const body = `{"data":[{"callsign":"SK100","orig_iata":"ARN","dest_iata":"CPH","lat":59.5,"lon":17.9}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flights", r.URL.Path)
		assert.Equal(t, "60,59,17,18", r.URL.Query().Get("bounds"))
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	got, err := New(srv.URL, time.Second, discardLogger()).FetchPositions(context.Background(), "60,59,17,18")
	require.NoError(t, err)
	assert.JSONEq(t, body, string(got))
}

func TestClient_FetchPositions_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Service temporarily unavailable"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second, discardLogger()).FetchPositions(context.Background(), "60,59,17,18")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusServiceUnavailable, svcErr.Status)
	assert.Equal(t, "Service temporarily unavailable", svcErr.Message)
	assert.Equal(t, "API Error: 503: Service temporarily unavailable", svcErr.Error())
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second, discardLogger()).FetchPositions(context.Background(), "60,59,17,18")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_LookupAirport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/airport/ARN":
			_, _ = w.Write([]byte(`{"iata":"ARN","name":"Stockholm Arlanda","city":"Stockholm","country":"SE","lat":59.6519,"lon":17.9186}`))
		case "/api/airport/ZZZ":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Airport not found"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	c := New(srv.URL, time.Second, discardLogger())

	info, err := c.LookupAirport(context.Background(), "ARN")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Stockholm", info.City)

	info, err = c.LookupAirport(context.Background(), "ZZZ")
	require.NoError(t, err)
	assert.Nil(t, info)

	_, err = c.LookupAirport(context.Background(), "QQQ")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_FetchTrail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/flights/3a4b5c/trail", r.URL.Path)
		_, _ = w.Write([]byte(`{"flight_id":"3a4b5c","points":[{"timestamp":"2026-10-18T10:00:00Z","lat":59.6,"lon":17.9,"alt":0,"gspeed":150,"track":190}]}`))
	}))
	defer srv.Close()

	trail, err := New(srv.URL, time.Second, discardLogger()).FetchTrail(context.Background(), "3a4b5c")
	require.NoError(t, err)
	assert.Equal(t, "3a4b5c", trail.FlightID)
	require.Len(t, trail.Points, 1)
	assert.InDelta(t, 150, trail.Points[0].GroundSpeed, 1e-9)
}

func TestClient_ReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "59.3293", r.URL.Query().Get("lat"))
		assert.Equal(t, "18.0686", r.URL.Query().Get("lon"))
		_, _ = w.Write([]byte(`{"name":"Stockholm"}`))
	}))
	defer srv.Close()

	name, err := New(srv.URL, time.Second, discardLogger()).ReverseGeocode(context.Background(), 59.3293, 18.0686)
	require.NoError(t, err)
	assert.Equal(t, "Stockholm", name)
}
