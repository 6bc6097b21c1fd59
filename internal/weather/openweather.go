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
	"golang.org/x/time/rate"
)

// OpenWeatherBaseURL is the OpenWeatherMap current weather API base URL.
const OpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Common errors for the OpenWeatherMap client.
var (
	ErrOpenWeatherUnauthorized  = errors.New("openweathermap API unauthorized (invalid API key)")
	ErrOpenWeatherEmptyResponse = errors.New("openweathermap API returned no conditions")
)

// CurrentWeather is the normalized current conditions for one coordinate pair.
type CurrentWeather struct {
	Location     string  `json:"location,omitempty"`
	Conditions   string  `json:"conditions"`
	TemperatureC float64 `json:"temperature_c"`
	FeelsLikeC   float64 `json:"feels_like_c"`
	HumidityPct  int     `json:"humidity_pct"`
	WindSpeedMS  float64 `json:"wind_speed_ms"`
}

// openWeatherResponse is the subset of the current weather response we consume.
type openWeatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Name string `json:"name"`
}

// OpenWeatherClient fetches current conditions from OpenWeatherMap.
// The free tier allows 60 calls/minute; a courtesy limiter keeps the client
// inside that budget regardless of how the tool layer is driven.
type OpenWeatherClient struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the current weather API
	apiKey  string        // API key, sent as the appid query parameter
	log     *slog.Logger  // Logger for logging operations
	limiter *rate.Limiter // Rate limiter
}

// NewOpenWeatherClient creates a new OpenWeatherMap client.
func NewOpenWeatherClient(apiKey string, log *slog.Logger, timeout time.Duration) *OpenWeatherClient {
	return NewOpenWeatherClientWithHTTP(
		&http.Client{Timeout: timeout},
		apiKey,
		rate.NewLimiter(rate.Every(time.Second), 1),
		log,
	)
}

// NewOpenWeatherClientWithHTTP allows injecting a custom HTTP client and limiter.
func NewOpenWeatherClientWithHTTP(
	client HTTPClient,
	apiKey string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *OpenWeatherClient {
	return &OpenWeatherClient{
		client:  client,
		baseURL: OpenWeatherBaseURL,
		apiKey:  apiKey,
		log:     log,
		limiter: limiter,
	}
}

// Current fetches the current conditions for the given coordinates.
// Values are requested in metric units.
func (oc *OpenWeatherClient) Current(ctx context.Context, coords models.Coordinates) (*CurrentWeather, error) {
	if err := oc.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	oc.log.DebugContext(ctx, "Fetching current weather",
		"lat", coords.Latitude, "lon", coords.Longitude)

	reqURL, err := url.Parse(oc.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	query.Set("units", "metric")
	query.Set("appid", oc.apiKey)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := oc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute weather request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrOpenWeatherUnauthorized
	default:
		body, _ := io.ReadAll(resp.Body)
		oc.log.ErrorContext(ctx, "OpenWeatherMap API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("openweathermap API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var decoded openWeatherResponse
	if err = json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode openweathermap response: %w", err)
	}

	if len(decoded.Weather) == 0 {
		return nil, ErrOpenWeatherEmptyResponse
	}

	current := &CurrentWeather{
		Location:     decoded.Name,
		Conditions:   decoded.Weather[0].Description,
		TemperatureC: decoded.Main.Temp,
		FeelsLikeC:   decoded.Main.FeelsLike,
		HumidityPct:  decoded.Main.Humidity,
		WindSpeedMS:  decoded.Wind.Speed,
	}

	oc.log.InfoContext(ctx, "Current weather fetched",
		"location", current.Location, "conditions", current.Conditions)

	return current, nil
}
