package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/flight-tracker-service/internal/adapter/fr24"
	"github.com/couchcryptid/flight-tracker-service/internal/domain"
)

// Client-facing error messages.
const (
	msgBoundsRequired   = "Bounds parameter is required"
	msgUnavailable      = "Service temporarily unavailable"
	msgAirportNotFound  = "Airport not found"
	msgAirportFailed    = "Failed to fetch airport information"
	msgInvalidIATA      = "Valid IATA code required (3 letters)"
	msgInvalidLocation  = "lat and lon query parameters are required"
	msgTrailUnavailable = "Flight trail unavailable"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, errorBody{Error: msg})
}

// handleFlights proxies the live-positions query and returns the upstream
// payload untouched.
func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	bounds := r.URL.Query().Get("bounds")
	if bounds == "" {
		writeError(w, http.StatusBadRequest, msgBoundsRequired)
		return
	}
	if s.deps.Positions == nil {
		s.logger.Error("flight source not configured")
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
		return
	}

	body, err := s.deps.Positions.FetchPositions(r.Context(), bounds)
	if err != nil {
		s.writeUpstreamError(w, "positions", err)
		return
	}
	if !json.Valid(body) {
		s.logger.Error("upstream returned invalid json", "bounds", bounds)
		writeError(w, http.StatusInternalServerError, domain.ErrMalformedPayload.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleTrail(w http.ResponseWriter, r *http.Request) {
	if s.deps.Trails == nil {
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
		return
	}
	flightID := r.PathValue("flightID")
	trail, err := s.deps.Trails.FetchTrail(r.Context(), flightID)
	if err != nil {
		s.writeUpstreamError(w, "tracks", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, trail)
}

// writeUpstreamError maps a fetch failure onto the response status.
func (s *Server) writeUpstreamError(w http.ResponseWriter, endpoint string, err error) {
	var upErr *fr24.UpstreamError
	switch {
	case errors.As(err, &upErr):
		writeError(w, upErr.Status, fmt.Sprintf("Upstream API Error: %d", upErr.Status))
	case errors.Is(err, fr24.ErrNoAPIKey):
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
	case errors.Is(err, domain.ErrInvalidBounds):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable) && endpoint == "tracks":
		writeError(w, http.StatusBadGateway, msgTrailUnavailable)
	default:
		s.logger.Error("upstream request failed", "endpoint", endpoint, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleAirport(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("iataCode")
	if !domain.ValidIATA(code) {
		writeError(w, http.StatusBadRequest, msgInvalidIATA)
		return
	}
	if s.deps.Airports == nil {
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
		return
	}

	info, err := s.deps.Airports.Resolve(r.Context(), strings.ToUpper(code))
	switch {
	case err == nil:
		sharedobs.WriteJSON(w, http.StatusOK, info)
	case errors.Is(err, domain.ErrAirportNotFound):
		writeError(w, http.StatusNotFound, msgAirportNotFound)
	case errors.Is(err, domain.ErrInvalidIATA):
		writeError(w, http.StatusBadRequest, msgInvalidIATA)
	default:
		s.logger.Error("airport lookup failed", "code", code, "error", err)
		writeError(w, http.StatusInternalServerError, msgAirportFailed)
	}
}

// handleLocation names a coordinate. Geocoding failures still answer 200
// with the generic place name.
func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil || !(domain.LatLon{Lat: lat, Lon: lon}).Valid() {
		writeError(w, http.StatusBadRequest, msgInvalidLocation)
		return
	}

	name := domain.DefaultPlaceName
	if s.deps.Geocoder != nil {
		got, err := s.deps.Geocoder.ReverseGeocode(r.Context(), lat, lon)
		if err != nil {
			s.logger.Warn("reverse geocode failed", "lat", lat, "lon", lon, "error", err)
		} else if got != "" {
			name = got
		}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]string{"name": name})
}
