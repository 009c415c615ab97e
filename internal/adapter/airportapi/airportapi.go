// Package airportapi implements live airport providers: airportsapi.com and
// API Ninjas. Both implement domain.AirportProvider and are raced by the
// airport resolver.
package airportapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

// AirportsAPI looks airports up at airportsapi.com.
type AirportsAPI struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewAirportsAPI creates an airportsapi.com provider.
func NewAirportsAPI(baseURL string, timeout time.Duration, logger *slog.Logger) *AirportsAPI {
	return &AirportsAPI{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

func (a *AirportsAPI) Name() string { return "airportsapi" }

// LookupAirport returns nil without error when the service does not know the code.
func (a *AirportsAPI) LookupAirport(ctx context.Context, iata string) (*domain.AirportInfo, error) {
	u := fmt.Sprintf("%s/airports/%s", a.baseURL, url.PathEscape(iata))

	var rec domain.RawRecord
	found, err := getJSON(ctx, a.httpClient, u, nil, &rec)
	if err != nil || !found {
		return nil, err
	}
	info := airportFromRecord(iata, rec, airportsAPIKeys)
	a.logger.Debug("airport lookup", "provider", a.Name(), "code", iata, "found", info != nil)
	return info, nil
}

// Ninjas looks airports up at API Ninjas. It needs an API key and answers
// nothing without one.
type Ninjas struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// NewNinjas creates an API Ninjas provider.
func NewNinjas(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Ninjas {
	return &Ninjas{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

func (n *Ninjas) Name() string { return "api-ninjas" }

// Enabled reports whether an API key is configured.
func (n *Ninjas) Enabled() bool { return n.apiKey != "" }

func (n *Ninjas) LookupAirport(ctx context.Context, iata string) (*domain.AirportInfo, error) {
	if !n.Enabled() {
		return nil, nil
	}
	u := n.baseURL + "/airports?" + url.Values{"iata": {iata}}.Encode()

	var recs []domain.RawRecord
	found, err := getJSON(ctx, n.httpClient, u, http.Header{"X-Api-Key": {n.apiKey}}, &recs)
	if err != nil || !found || len(recs) == 0 {
		return nil, err
	}
	info := airportFromRecord(iata, recs[0], ninjasKeys)
	n.logger.Debug("airport lookup", "provider", n.Name(), "code", iata, "found", info != nil)
	return info, nil
}

// recordKeys names the response keys of one provider, in precedence order.
type recordKeys struct {
	name, city, country, lat, lon []string
}

var (
	airportsAPIKeys = recordKeys{
		name:    []string{"name", "airport_name"},
		city:    []string{"city", "municipality"},
		country: []string{"country", "country_code"},
		lat:     []string{"latitude", "lat"},
		lon:     []string{"longitude", "lon"},
	}
	ninjasKeys = recordKeys{
		name:    []string{"name"},
		city:    []string{"city"},
		country: []string{"country"},
		lat:     []string{"latitude"},
		lon:     []string{"longitude"},
	}
)

// airportFromRecord maps a provider record. A record with neither a name nor
// coordinates says nothing and maps to nil.
func airportFromRecord(iata string, rec domain.RawRecord, keys recordKeys) *domain.AirportInfo {
	info := &domain.AirportInfo{
		IATA:    domain.NormalizeIdentifierField(iata),
		Name:    rec.FirstString(keys.name...),
		City:    rec.FirstString(keys.city...),
		Country: rec.FirstString(keys.country...),
	}
	info.Lat, _ = rec.FirstFloat(keys.lat...)
	info.Lon, _ = rec.FirstFloat(keys.lon...)
	if info.Name == "" && info.Coord() == nil {
		return nil
	}
	return info
}

// getJSON decodes a 2xx body into dst. found is false for 404.
func getJSON(ctx context.Context, client *http.Client, u string, header http.Header, dst any) (found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: airport request: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("%w: airport API status %d: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}
