// Package client talks to the flight tracker service over HTTP. It is the
// session side of the system: the terminal client wraps it with the bounds
// query cache and owns one AirportCache for the lifetime of the session.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

const maxErrBody = 4 << 10

// ServiceError is a non-2xx answer from the service. Message carries the
// {"error": ...} body when the service sent one.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API Error: %d", e.Status)
	}
	return fmt.Sprintf("API Error: %d: %s", e.Status, e.Message)
}

// Is makes every ServiceError match domain.ErrUpstreamUnavailable.
func (e *ServiceError) Is(target error) bool {
	return target == domain.ErrUpstreamUnavailable
}

// Client is an HTTP client of the service API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchPositions asks the service proxy for the raw payload of bounds. The
// body is returned untouched so the caller can parse any of its shapes.
func (c *Client) FetchPositions(ctx context.Context, bounds string) ([]byte, error) {
	return c.get(ctx, "/api/flights?"+url.Values{"bounds": {bounds}}.Encode())
}

// FetchTrail loads the recorded track of one flight.
func (c *Client) FetchTrail(ctx context.Context, flightID string) (domain.Trail, error) {
	body, err := c.get(ctx, "/api/flights/"+url.PathEscape(flightID)+"/trail")
	if err != nil {
		return domain.Trail{}, err
	}
	var trail domain.Trail
	if err := json.Unmarshal(body, &trail); err != nil {
		return domain.Trail{}, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}
	return trail, nil
}

// Name identifies the service as an airport source.
func (c *Client) Name() string { return "service" }

// LookupAirport asks the service resolver for code. A 404 is reported as an
// unknown airport rather than an error.
func (c *Client) LookupAirport(ctx context.Context, code string) (*domain.AirportInfo, error) {
	body, err := c.get(ctx, "/api/airport/"+url.PathEscape(code))
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && svcErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	var info domain.AirportInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}
	return &info, nil
}

// ReverseGeocode resolves a place name through the service.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
	body, err := c.get(ctx, "/api/location?"+q.Encode())
	if err != nil {
		return "", err
	}
	var resp struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}
	return resp.Name, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &errBody)
		c.logger.Debug("service error",
			"path", path,
			"status", resp.StatusCode,
			"error", errBody.Error,
		)
		return nil, &ServiceError{Status: resp.StatusCode, Message: errBody.Error}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrUpstreamUnavailable, err)
	}
	return body, nil
}
