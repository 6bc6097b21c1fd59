package geocoding

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

	"github.com/brollyweather/brolly/internal/models"
)

// Client performs geocoding lookups against OpenStreetMap's Nominatim API.
// Nominatim is a free service with a fair-use limit of 1 request/second;
// callers that issue more than one lookup should go through the rate limiter.
type Client struct {
	client      HTTPClient   // HTTP client for making requests
	baseURL     string       // Base URL for the Nominatim search endpoint
	log         *slog.Logger // Logger for logging operations
	countryCode string       // Default countrycodes filter applied when the caller passes none
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResult represents one candidate object in the Nominatim JSON response.
type nominatimResult struct {
	Name        string `json:"name"`         // Short name, may be empty
	DisplayName string `json:"display_name"` // Full display string
	Lat         string `json:"lat"`          // Latitude as string
	Lon         string `json:"lon"`          // Longitude as string
	Address     struct {
		Country string `json:"country"`
		County  string `json:"county"`
		State   string `json:"state"`
	} `json:"address"`
}

const (
	// DefaultCountryCode restricts lookups to Great Britain unless overridden.
	DefaultCountryCode = "gb"

	// fallbackCountry is used when the upstream address block omits a country.
	fallbackCountry = "United Kingdom"

	// maxCandidates caps the number of matches requested from the upstream.
	maxCandidates = 5
)

// Common errors for the Nominatim client.
var (
	ErrEmptyResponse   = errors.New("nominatim API returned empty response")
	ErrMalformedCoords = errors.New("nominatim API returned malformed coordinates")
)

// StatusError reports a non-success HTTP status from the upstream.
type StatusError struct {
	Code int    // HTTP status code
	Text string // Status text for the code
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nominatim API returned status %d: %s", e.Code, e.Text)
}

// NewClient creates a new Nominatim geocoding client.
// Uses the public Nominatim API endpoint by default. The contact string is
// embedded into the User-Agent header as required by the usage policy, and
// countryCode sets the default countrycodes filter ("gb" when empty).
func NewClient(log *slog.Logger, contact, countryCode string, timeout time.Duration) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: timeout}, log, contact, countryCode)
}

// NewClientWithHTTP creates a Nominatim client with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewClientWithHTTP(client HTTPClient, log *slog.Logger, contact, countryCode string) *Client {
	if contact == "" {
		contact = "https://github.com/brollyweather/brolly"
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return &Client{
		client:      client,
		baseURL:     "https://nominatim.openstreetmap.org/search",
		log:         log,
		countryCode: countryCode,
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent: "Brolly-Weather-MCP/1.0 (" + contact + ")",
	}
}

// Lookup geocodes a free-text place name and classifies the result.
//
// The name is trimmed and sent upstream even when empty after trimming; an
// empty query is rejected by the upstream and surfaces as a failed outcome
// like any other. countryCodes overrides the default "gb" filter when set.
//
// Lookup never returns an out-of-band error: HTTP failures, decode failures
// and empty result sets are all folded into the returned outcome so that
// callers can treat failures as data.
func (c *Client) Lookup(ctx context.Context, name, countryCodes string) models.Outcome {
	name = strings.TrimSpace(name)
	if countryCodes == "" {
		countryCodes = c.countryCode
	}

	c.log.DebugContext(ctx, "Geocoding place name", "name", name, "countrycodes", countryCodes)

	locations, err := c.search(ctx, name, countryCodes)
	var statusErr *StatusError
	switch {
	case err == nil:
		return models.OK(locations)
	case errors.As(err, &statusErr):
		return models.Failed("service unavailable", fmt.Sprintf("%d: %s", statusErr.Code, statusErr.Text))
	case errors.Is(err, ErrEmptyResponse):
		return models.Failed(
			fmt.Sprintf("no results for %s", name),
			"check the spelling or try a more specific place name",
		)
	default:
		detail := "unknown error"
		if msg := err.Error(); msg != "" {
			detail = msg
		}
		return models.Failed("failed to geocode", detail)
	}
}

// search performs the single upstream request and normalizes the candidates.
func (c *Client) search(ctx context.Context, name, countryCodes string) ([]models.Location, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", name)
	query.Set("countrycodes", countryCodes)
	query.Set("format", "json")
	query.Set("addressdetails", "1")
	query.Set("limit", strconv.Itoa(maxCandidates))
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Required per Nominatim usage policy.
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, &StatusError{Code: resp.StatusCode, Text: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var results []nominatimResult
	if err = json.Unmarshal(body, &results); err != nil {
		c.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrEmptyResponse
	}

	locations := make([]models.Location, 0, len(results))
	for _, raw := range results {
		loc, err := normalize(raw)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}

	c.log.DebugContext(ctx, "Nominatim found results", "name", name, "count", len(locations))

	return locations, nil
}

// normalize maps one raw Nominatim candidate to a Location.
// Malformed lat/lon strings fail with ErrMalformedCoords; NaN never
// enters a Location.
func normalize(raw nominatimResult) (models.Location, error) {
	lat, err := strconv.ParseFloat(raw.Lat, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("%w: latitude %q", ErrMalformedCoords, raw.Lat)
	}
	lon, err := strconv.ParseFloat(raw.Lon, 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("%w: longitude %q", ErrMalformedCoords, raw.Lon)
	}

	name := raw.Name
	if name == "" {
		name = strings.TrimSpace(strings.SplitN(raw.DisplayName, ",", 2)[0])
	}

	country := raw.Address.Country
	if country == "" {
		country = fallbackCountry
	}

	return models.Location{
		Name:        name,
		Coordinates: models.Coordinates{Latitude: lat, Longitude: lon},
		DisplayName: raw.DisplayName,
		Country:     country,
		County:      raw.Address.County,
		State:       raw.Address.State,
	}, nil
}
