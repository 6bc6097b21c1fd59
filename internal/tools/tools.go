// Package tools wires the geocoding and weather operations into an MCP
// server. Each tool takes typed, jsonschema-described arguments and returns
// structured content; geocoding failures are returned as data inside the
// result rather than as protocol errors, so the host can show them to the
// model verbatim.
package tools

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/brollyweather/brolly/internal/models"
	"github.com/brollyweather/brolly/internal/weather"
)

// serverVersion is reported to the MCP host during initialization.
const serverVersion = "1.0.0"

// Geocoder is the slice of the geocoding service the tools need.
type Geocoder interface {
	Lookup(ctx context.Context, name, countryCodes string) models.Outcome
	LookupBatch(ctx context.Context, names []string, rateLimited bool) models.BatchResult
}

// ForecastProvider fetches a daily forecast for a coordinate pair.
type ForecastProvider interface {
	DailyForecast(ctx context.Context, coords models.Coordinates) (*weather.Forecast, error)
}

// CurrentProvider fetches current conditions for a coordinate pair.
type CurrentProvider interface {
	Current(ctx context.Context, coords models.Coordinates) (*weather.CurrentWeather, error)
}

// Handlers holds the collaborators behind the MCP tools.
type Handlers struct {
	log       *slog.Logger
	geocoder  Geocoder
	forecasts ForecastProvider
	current   CurrentProvider
}

// NewHandlers creates the tool handlers with their collaborators.
func NewHandlers(
	log *slog.Logger,
	geocoder Geocoder,
	forecasts ForecastProvider,
	current CurrentProvider,
) *Handlers {
	return &Handlers{
		log:       log,
		geocoder:  geocoder,
		forecasts: forecasts,
		current:   current,
	}
}

// NewServer builds the MCP server and registers all four tools on it.
// The returned server is ready to run over any transport.
func NewServer(
	log *slog.Logger,
	geocoder Geocoder,
	forecasts ForecastProvider,
	current CurrentProvider,
) *mcp.Server {
	h := NewHandlers(log, geocoder, forecasts, current)

	server := mcp.NewServer(&mcp.Implementation{Name: "brolly", Version: serverVersion}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name: "find_location",
		Description: "Geocode a free-text UK place name into coordinates and address details. " +
			"Returns up to 5 candidate locations, or a structured error when the name cannot be resolved.",
	}, h.FindLocation)

	mcp.AddTool(server, &mcp.Tool{
		Name: "find_locations",
		Description: "Geocode a list of UK place names sequentially and return one outcome per name. " +
			"A failed name never aborts the rest of the batch. Lookups are spaced at the upstream's " +
			"fair-use interval unless rate_limited is set to false.",
	}, h.FindLocations)

	mcp.AddTool(server, &mcp.Tool{
		Name: "get_forecast",
		Description: "Get the Met Office daily forecast for a coordinate pair: temperatures, " +
			"precipitation chance, wind and conditions per day.",
	}, h.GetForecast)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_current_weather",
		Description: "Get the current weather conditions for a coordinate pair from OpenWeatherMap.",
	}, h.GetCurrentWeather)

	return server
}

// FindLocationArgs is the input for the "find_location" tool.
type FindLocationArgs struct {
	// Name is the free-text place name to geocode.
	Name string `json:"name" jsonschema:"free-text place name to geocode, e.g. 'York' or 'Lake District'"`

	// CountryCodes optionally overrides the default country filter.
	CountryCodes string `json:"country_codes,omitempty" jsonschema:"optional comma-separated ISO 3166-1 country codes filter, defaults to gb"`
}

// FindLocationResult is the output of the "find_location" tool.
type FindLocationResult struct {
	// Query echoes the requested place name.
	Query string `json:"query"`

	// Locations holds the candidate matches on success.
	Locations []models.Location `json:"locations,omitempty"`

	// Failure describes why the lookup produced no locations.
	Failure *models.Failure `json:"failure,omitempty"`
}

// FindLocation implements the "find_location" tool.
func (h *Handlers) FindLocation(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	args FindLocationArgs,
) (*mcp.CallToolResult, FindLocationResult, error) {
	h.log.InfoContext(ctx, "Tool call: find_location", "name", args.Name)

	outcome := h.geocoder.Lookup(ctx, args.Name, args.CountryCodes)

	return nil, FindLocationResult{
		Query:     args.Name,
		Locations: outcome.Locations,
		Failure:   outcome.Failure,
	}, nil
}

// FindLocationsArgs is the input for the "find_locations" tool.
type FindLocationsArgs struct {
	// Names is the ordered list of place names to geocode.
	Names []string `json:"names" jsonschema:"ordered list of place names to geocode"`

	// RateLimited toggles the fixed-interval spacing between lookups.
	RateLimited *bool `json:"rate_limited,omitempty" jsonschema:"space lookups at the upstream fair-use interval, defaults to true"`
}

// FindLocationsResult is the output of the "find_locations" tool.
type FindLocationsResult struct {
	// Results maps every requested name to its own outcome.
	Results models.BatchResult `json:"results"`
}

// FindLocations implements the "find_locations" tool.
func (h *Handlers) FindLocations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	args FindLocationsArgs,
) (*mcp.CallToolResult, FindLocationsResult, error) {
	rateLimited := true
	if args.RateLimited != nil {
		rateLimited = *args.RateLimited
	}

	h.log.InfoContext(ctx, "Tool call: find_locations", "names", len(args.Names), "rate_limited", rateLimited)

	results := h.geocoder.LookupBatch(ctx, args.Names, rateLimited)

	return nil, FindLocationsResult{Results: results}, nil
}

// GetForecastArgs is the input for the "get_forecast" tool.
type GetForecastArgs struct {
	Latitude  float64 `json:"latitude" jsonschema:"latitude of the point, -90 to 90"`
	Longitude float64 `json:"longitude" jsonschema:"longitude of the point, -180 to 180"`
}

// GetForecastResult is the output of the "get_forecast" tool.
type GetForecastResult struct {
	Forecast *weather.Forecast `json:"forecast"`
}

// GetForecast implements the "get_forecast" tool. Upstream failures surface
// as tool errors; there is no outcome classification for the forwarding glue.
func (h *Handlers) GetForecast(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	args GetForecastArgs,
) (*mcp.CallToolResult, GetForecastResult, error) {
	h.log.InfoContext(ctx, "Tool call: get_forecast", "lat", args.Latitude, "lon", args.Longitude)

	forecast, err := h.forecasts.DailyForecast(ctx, models.Coordinates{
		Latitude:  args.Latitude,
		Longitude: args.Longitude,
	})
	if err != nil {
		return nil, GetForecastResult{}, err
	}

	return nil, GetForecastResult{Forecast: forecast}, nil
}

// GetCurrentWeatherArgs is the input for the "get_current_weather" tool.
type GetCurrentWeatherArgs struct {
	Latitude  float64 `json:"latitude" jsonschema:"latitude of the point, -90 to 90"`
	Longitude float64 `json:"longitude" jsonschema:"longitude of the point, -180 to 180"`
}

// GetCurrentWeatherResult is the output of the "get_current_weather" tool.
type GetCurrentWeatherResult struct {
	Current *weather.CurrentWeather `json:"current"`
}

// GetCurrentWeather implements the "get_current_weather" tool.
func (h *Handlers) GetCurrentWeather(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	args GetCurrentWeatherArgs,
) (*mcp.CallToolResult, GetCurrentWeatherResult, error) {
	h.log.InfoContext(ctx, "Tool call: get_current_weather", "lat", args.Latitude, "lon", args.Longitude)

	current, err := h.current.Current(ctx, models.Coordinates{
		Latitude:  args.Latitude,
		Longitude: args.Longitude,
	})
	if err != nil {
		return nil, GetCurrentWeatherResult{}, err
	}

	return nil, GetCurrentWeatherResult{Current: current}, nil
}
