// Package weather provides thin clients for the upstream forecast services:
// the Met Office DataHub site-specific API and the OpenWeatherMap current
// conditions API. Both clients are plain forwarding layers; responses are
// decoded into small normalized structs and errors are typed per upstream.
package weather

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
	"time"

	"github.com/brollyweather/brolly/internal/models"
)

// MetOfficeBaseURL is the DataHub site-specific API base URL.
const MetOfficeBaseURL = "https://data.hub.api.metoffice.gov.uk/sitespecific/v0"

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Common errors for the Met Office client.
var (
	ErrMetOfficeUnauthorized  = errors.New("met office API unauthorized (invalid API key)")
	ErrMetOfficeEmptyResponse = errors.New("met office API returned no forecast data")
)

// DailyForecast is one day of the normalized site-specific forecast.
type DailyForecast struct {
	Date            string  `json:"date"`              // Date in the upstream's ISO-8601 form.
	MaxTempC        float64 `json:"max_temp_c"`        // Daytime maximum screen temperature.
	MinTempC        float64 `json:"min_temp_c"`        // Overnight minimum screen temperature.
	PrecipChancePct float64 `json:"precip_chance_pct"` // Daytime probability of precipitation.
	WindSpeedMS     float64 `json:"wind_speed_ms"`     // Midday 10 m wind speed.
	Conditions      string  `json:"conditions"`        // Human-readable significant weather.
}

// Forecast is the normalized multi-day forecast for one coordinate pair.
type Forecast struct {
	Location    string             `json:"location,omitempty"`
	Coordinates models.Coordinates `json:"coordinates"`
	Days        []DailyForecast    `json:"days"`
}

// metOfficeResponse is the subset of the DataHub GeoJSON response we consume.
type metOfficeResponse struct {
	Features []struct {
		Properties struct {
			Location struct {
				Name string `json:"name"`
			} `json:"location"`
			TimeSeries []struct {
				Time                          string  `json:"time"`
				DayMaxScreenTemperature       float64 `json:"dayMaxScreenTemperature"`
				NightMinScreenTemperature     float64 `json:"nightMinScreenTemperature"`
				DayProbabilityOfPrecipitation float64 `json:"dayProbabilityOfPrecipitation"`
				Midday10MWindSpeed            float64 `json:"midday10MWindSpeed"`
				DaySignificantWeatherCode     int     `json:"daySignificantWeatherCode"`
			} `json:"timeSeries"`
		} `json:"properties"`
	} `json:"features"`
}

// MetOfficeClient fetches daily site-specific forecasts from the DataHub API.
type MetOfficeClient struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the DataHub site-specific API
	apiKey  string       // DataHub API key, sent as the apikey header
	log     *slog.Logger // Logger for logging operations
}

// NewMetOfficeClient creates a new Met Office DataHub client.
func NewMetOfficeClient(apiKey string, log *slog.Logger, timeout time.Duration) *MetOfficeClient {
	return NewMetOfficeClientWithHTTP(&http.Client{Timeout: timeout}, apiKey, log)
}

// NewMetOfficeClientWithHTTP allows injecting a custom HTTP client.
func NewMetOfficeClientWithHTTP(client HTTPClient, apiKey string, log *slog.Logger) *MetOfficeClient {
	return &MetOfficeClient{
		client:  client,
		baseURL: MetOfficeBaseURL,
		apiKey:  apiKey,
		log:     log,
	}
}

// DailyForecast fetches the daily forecast for the given coordinates.
func (mc *MetOfficeClient) DailyForecast(ctx context.Context, coords models.Coordinates) (*Forecast, error) {
	mc.log.DebugContext(ctx, "Fetching Met Office forecast",
		"lat", coords.Latitude, "lon", coords.Longitude)

	reqURL, err := url.Parse(mc.baseURL + "/point/daily")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", mc.apiKey)

	resp, err := mc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute forecast request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrMetOfficeUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		mc.log.ErrorContext(ctx, "Met Office API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("met office API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var decoded metOfficeResponse
	if err = json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode met office response: %w", err)
	}

	if len(decoded.Features) == 0 || len(decoded.Features[0].Properties.TimeSeries) == 0 {
		return nil, ErrMetOfficeEmptyResponse
	}

	props := decoded.Features[0].Properties
	forecast := &Forecast{
		Location:    props.Location.Name,
		Coordinates: coords,
		Days:        make([]DailyForecast, 0, len(props.TimeSeries)),
	}
	for _, entry := range props.TimeSeries {
		forecast.Days = append(forecast.Days, DailyForecast{
			Date:            entry.Time,
			MaxTempC:        entry.DayMaxScreenTemperature,
			MinTempC:        entry.NightMinScreenTemperature,
			PrecipChancePct: entry.DayProbabilityOfPrecipitation,
			WindSpeedMS:     entry.Midday10MWindSpeed,
			Conditions:      significantWeather(entry.DaySignificantWeatherCode),
		})
	}

	mc.log.DebugContext(ctx, "Met Office forecast fetched", "days", len(forecast.Days))

	return forecast, nil
}

// significantWeather maps a Met Office significant weather code to a
// human-readable description.
func significantWeather(code int) string {
	descriptions := map[int]string{
		0:  "Clear night",
		1:  "Sunny day",
		2:  "Partly cloudy (night)",
		3:  "Partly cloudy (day)",
		5:  "Mist",
		6:  "Fog",
		7:  "Cloudy",
		8:  "Overcast",
		9:  "Light rain shower (night)",
		10: "Light rain shower (day)",
		11: "Drizzle",
		12: "Light rain",
		13: "Heavy rain shower (night)",
		14: "Heavy rain shower (day)",
		15: "Heavy rain",
		16: "Sleet shower (night)",
		17: "Sleet shower (day)",
		18: "Sleet",
		19: "Hail shower (night)",
		20: "Hail shower (day)",
		21: "Hail",
		22: "Light snow shower (night)",
		23: "Light snow shower (day)",
		24: "Light snow",
		25: "Heavy snow shower (night)",
		26: "Heavy snow shower (day)",
		27: "Heavy snow",
		28: "Thunder shower (night)",
		29: "Thunder shower (day)",
		30: "Thunder",
	}
	if desc, ok := descriptions[code]; ok {
		return desc
	}
	return "Unknown"
}
