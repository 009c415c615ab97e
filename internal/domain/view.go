package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	knotsToKmh  = 1.852
	feetToMeter = 0.3048

	// defaultCruiseKmh is used for time estimates when ground speed is unknown.
	defaultCruiseKmh = 800.0

	unknownAirline  = "Unknown Airline"
	unknownAircraft = "Unknown"
	noTime          = "--:--"
)

var printer = message.NewPrinter(language.English)

// FlightView is a FlightRecord enriched for display: names resolved, route
// placed on the great circle, units converted.
type FlightView struct {
	Flight FlightRecord `json:"flight"`

	AirlineName    string `json:"airline_name"`
	AirlineCountry string `json:"airline_country,omitempty"`
	AirlineFlag    string `json:"airline_flag,omitempty"`
	LogoURL        string `json:"logo_url,omitempty"`
	AircraftType   string `json:"aircraft_type"`

	OriginCity     string  `json:"origin_city"`
	DestCity       string  `json:"dest_city"`
	OriginTimezone string  `json:"origin_timezone"`
	DestTimezone   string  `json:"dest_timezone"`
	OriginCoord    *LatLon `json:"origin_coord,omitempty"`
	DestCoord      *LatLon `json:"dest_coord,omitempty"`

	ProgressPercent int  `json:"progress_percent"`
	ProgressKnown   bool `json:"progress_known"`

	TotalDistanceKm      *float64 `json:"total_distance_km,omitempty"`
	DistanceFromOriginKm *float64 `json:"distance_from_origin_km,omitempty"`
	DistanceToDestKm     *float64 `json:"distance_to_dest_km,omitempty"`
	TimeFromOrigin       string   `json:"time_from_origin,omitempty"`
	TimeToDestination    string   `json:"time_to_destination,omitempty"`

	AltitudeMeters  int    `json:"altitude_meters"`
	AltitudeDisplay string `json:"altitude_display"`
	GroundSpeedKmh  int    `json:"ground_speed_kmh"`
	VerticalSpeed   string `json:"vertical_speed"`
	ETA             string `json:"eta"`

	BuiltAt time.Time `json:"built_at"`
}

// BuildFlightView enriches a flight. origin and dest may be nil when the
// airport is unknown; ref may be nil when no reference tables are loaded.
func BuildFlightView(f FlightRecord, origin, dest *AirportInfo, ref ReferenceData) FlightView {
	v := FlightView{
		Flight:       f,
		AirlineName:  unknownAirline,
		AircraftType: unknownAircraft,
		OriginCity:   cityFor(f.OriginCity, origin, f.OriginCode),
		DestCity:     cityFor(f.DestCity, dest, f.DestCode),
		OriginCoord:  coordFor(f.OriginCoord, origin),
		DestCoord:    coordFor(f.DestCoord, dest),
		ETA:          FormatETA(f.ETAISO),
		BuiltAt:      builtAt(),
	}

	v.OriginTimezone, v.DestTimezone = "UTC", "UTC"
	if f.AirlineCode != "" {
		v.AirlineName = f.AirlineCode
		v.LogoURL = LogoURL(f.AirlineCode)
	}
	if f.AircraftTypeCode != "" {
		v.AircraftType = f.AircraftTypeCode
	}
	if ref != nil {
		applyReference(&v, f, ref)
	}

	v.ProgressPercent, v.ProgressKnown = ProgressOrDefault(f.Position, v.OriginCoord, v.DestCoord)

	speedKmh := 0.0
	if f.GroundSpeedKnots != nil {
		speedKmh = *f.GroundSpeedKnots * knotsToKmh
		v.GroundSpeedKmh = int(math.Round(speedKmh))
	}
	if f.Position != nil && v.OriginCoord != nil && v.DestCoord != nil {
		total := DistanceKm(*v.OriginCoord, *v.DestCoord)
		fromOrigin := DistanceKm(*v.OriginCoord, *f.Position)
		toDest := DistanceKm(*f.Position, *v.DestCoord)
		v.TotalDistanceKm = &total
		v.DistanceFromOriginKm = &fromOrigin
		v.DistanceToDestKm = &toDest
		v.TimeFromOrigin = EstimateDuration(fromOrigin, speedKmh)
		v.TimeToDestination = EstimateDuration(toDest, speedKmh)
	}

	altFeet := 0.0
	if f.AltitudeFeet != nil {
		altFeet = *f.AltitudeFeet
	}
	v.AltitudeMeters = int(math.Round(altFeet * feetToMeter))
	v.AltitudeDisplay = FormatWhole(float64(v.AltitudeMeters)) + " m"

	fpm := 0
	if f.VerticalSpeedFPM != nil {
		fpm = *f.VerticalSpeedFPM
	}
	v.VerticalSpeed = FormatVerticalSpeed(fpm)
	return v
}

func applyReference(v *FlightView, f FlightRecord, ref ReferenceData) {
	if a, ok := ref.Airline(f.AirlineCode); ok {
		v.AirlineName = a.Name
		v.AirlineCountry = a.Country
		v.AirlineFlag = a.Flag
	}
	if name, ok := ref.AircraftTypeName(f.AircraftTypeCode); ok {
		v.AircraftType = name
	}
	v.OriginTimezone = ref.Timezone(f.OriginCode)
	v.DestTimezone = ref.Timezone(f.DestCode)
}

// cityFor applies the city precedence: upstream city, airport city, then the code.
func cityFor(upstream string, info *AirportInfo, code string) string {
	if upstream != "" {
		return upstream
	}
	if info != nil && info.City != "" {
		return info.City
	}
	return code
}

// coordFor prefers coordinates upstream sent with the flight over resolved ones.
func coordFor(upstream *LatLon, info *AirportInfo) *LatLon {
	if upstream != nil && upstream.Valid() {
		return upstream
	}
	if info != nil {
		return info.Coord()
	}
	return nil
}

// LogoURL returns an airline logo image: IATA codes from pics.avs.io, ICAO
// codes from FlightAware.
func LogoURL(code string) string {
	switch len(code) {
	case 0:
		return ""
	case 2:
		return "https://pics.avs.io/200/200/" + code + ".png"
	default:
		return "https://www.flightaware.com/images/airline_logos/90p/" + code + ".png"
	}
}

// EstimateDuration renders the time to cover distanceKm at speedKmh as "1h 25m".
// Non-positive speeds use a typical cruise speed.
func EstimateDuration(distanceKm, speedKmh float64) string {
	if speedKmh <= 0 {
		speedKmh = defaultCruiseKmh
	}
	minutes := int(math.Round(distanceKm / speedKmh * 60))
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatWhole renders a rounded number with spaces between thousands: 10668 -> "10 668".
func FormatWhole(v float64) string {
	return strings.ReplaceAll(printer.Sprintf("%d", int64(math.Round(v))), ",", " ")
}

// FormatVerticalSpeed renders ft/min with an explicit sign for climbs.
func FormatVerticalSpeed(fpm int) string {
	if fpm == 0 {
		return "0"
	}
	s := strings.ReplaceAll(printer.Sprintf("%d", fpm), ",", " ")
	if fpm > 0 {
		return "+" + s
	}
	return s
}

// FormatETA renders an ISO-8601 ETA as 24h "HH:MM" UTC, or "--:--".
func FormatETA(iso string) string {
	if iso == "" {
		return noTime
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return noTime
	}
	return t.UTC().Format("15:04")
}
