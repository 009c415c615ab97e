package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
	"github.com/couchcryptid/flight-tracker-service/internal/observability"
)

// userAgent identifies the service; the public Nominatim instance rejects anonymous clients.
const userAgent = "flight-tracker-service/1.0"

// Client implements domain.ReverseGeocoder using the Nominatim reverse API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim client for baseURL, e.g. https://nominatim.openstreetmap.org.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// ReverseGeocode returns the most specific place name for a coordinate, or
// domain.DefaultPlaceName when the address has no usable component.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{
		"format": {"json"},
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', -1, 64)},
		"zoom":   {"10"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamLatency.WithLabelValues("reverse").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: reverse geocode request: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: nominatim status %d: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	name := domain.PlaceNameFromAddress(r.Address)
	c.logger.Debug("reverse geocoded", "lat", lat, "lon", lon, "name", name)
	return name, nil
}

// Nominatim API response types.

type response struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}
