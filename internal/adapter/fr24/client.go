// Package fr24 talks to the Flightradar24 API: live flight positions inside a
// bounding box and the position history of a single flight.
package fr24

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/observability"
)

const (
	// DefaultBaseURL is the public FR24 API root.
	DefaultBaseURL = "https://fr24api.flightradar24.com/api"
	// DefaultTimeout for API requests.
	DefaultTimeout = 10 * time.Second

	apiVersion = "v1"
	maxErrBody = 1 << 10
)

// ErrNoAPIKey is returned when a request is attempted without credentials.
var ErrNoAPIKey = errors.New("fr24: api key not configured")

// UpstreamError is a non-2xx answer from FR24.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("fr24: upstream status %d", e.Status)
}

// Is lets callers match any UpstreamError against domain.ErrUpstreamUnavailable.
func (e *UpstreamError) Is(target error) bool {
	return target == domain.ErrUpstreamUnavailable
}

// Config contains configuration for the FR24 client.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client is a Flightradar24 API client. Requests share one rate limiter.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates an FR24 client.
func NewClient(cfg Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		metrics:     metrics,
		logger:      logger,
	}
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// FetchPositions returns the raw live-positions payload for a
// "north,south,west,east" bounds string.
func (c *Client) FetchPositions(ctx context.Context, bounds string) ([]byte, error) {
	u := c.baseURL + "/live/flight-positions/full?" + url.Values{"bounds": {bounds}}.Encode()
	return c.get(ctx, u, "positions")
}

// FetchTrail returns the recorded track of one flight, oldest point first.
func (c *Client) FetchTrail(ctx context.Context, flightID string) (domain.Trail, error) {
	u := c.baseURL + "/flight-tracks?" + url.Values{"flight_id": {flightID}}.Encode()
	body, err := c.get(ctx, u, "tracks")
	if err != nil {
		return domain.Trail{}, err
	}
	return parseTrail(flightID, body)
}

func (c *Client) get(ctx context.Context, u, endpoint string) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNoAPIKey
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Version", apiVersion)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		c.logger.Warn("fr24 api error",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"body", string(body),
		)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

// FR24 flight-tracks response types.

type trackResponse struct {
	FlightID string       `json:"fr24_id"`
	Tracks   []trackPoint `json:"tracks"`
}

type trackPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Alt       float64   `json:"alt"`
	GSpeed    float64   `json:"gspeed"`
	Track     float64   `json:"track"`
}

// parseTrail accepts both the documented array form and a bare object.
func parseTrail(flightID string, body []byte) (domain.Trail, error) {
	var list []trackResponse
	if err := json.Unmarshal(body, &list); err != nil {
		var single trackResponse
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			return domain.Trail{}, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
		}
		list = []trackResponse{single}
	}

	trail := domain.Trail{FlightID: flightID, Points: []domain.TrailPoint{}}
	for _, r := range list {
		if r.FlightID != "" && r.FlightID != flightID {
			continue
		}
		for _, p := range r.Tracks {
			pt := domain.TrailPoint{
				Timestamp:    p.Timestamp,
				Lat:          p.Lat,
				Lon:          p.Lon,
				AltitudeFeet: p.Alt,
				GroundSpeed:  p.GSpeed,
				Track:        p.Track,
			}
			if !(domain.LatLon{Lat: pt.Lat, Lon: pt.Lon}).Valid() {
				continue
			}
			trail.Points = append(trail.Points, pt)
		}
	}
	sort.SliceStable(trail.Points, func(i, j int) bool {
		return trail.Points[i].Timestamp.Before(trail.Points[j].Timestamp)
	})
	return trail, nil
}
