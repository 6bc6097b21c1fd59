package weather_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/brollyweather/brolly/internal/models"
	"github.com/brollyweather/brolly/internal/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const currentWeatherBody = `{
	"weather": [{"description": "light rain"}],
	"main": {"temp": 14.3, "feels_like": 13.1, "humidity": 82},
	"wind": {"speed": 5.7},
	"name": "London"
}`

func unlimited() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestOpenWeatherClient_Current(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	coords := models.Coordinates{Latitude: 51.5074, Longitude: -0.1278}

	t.Run("successful current conditions", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Equal(t, "51.5074", req.URL.Query().Get("lat"))
				assert.Equal(t, "-0.1278", req.URL.Query().Get("lon"))
				assert.Equal(t, "metric", req.URL.Query().Get("units"))
				assert.Equal(t, "test-key", req.URL.Query().Get("appid"))

				return jsonResponse(http.StatusOK, currentWeatherBody), nil
			},
		}

		client := weather.NewOpenWeatherClientWithHTTP(mockClient, "test-key", unlimited(), logger)
		current, err := client.Current(ctx, coords)

		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, "London", current.Location)
		assert.Equal(t, "light rain", current.Conditions)
		assert.InEpsilon(t, 14.3, current.TemperatureC, 0.0001)
		assert.InEpsilon(t, 13.1, current.FeelsLikeC, 0.0001)
		assert.Equal(t, 82, current.HumidityPct)
		assert.InEpsilon(t, 5.7, current.WindSpeedMS, 0.0001)
	})

	t.Run("unauthorized", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusUnauthorized, `{"cod":401}`), nil
			},
		}

		client := weather.NewOpenWeatherClientWithHTTP(mockClient, "bad-key", unlimited(), logger)
		current, err := client.Current(ctx, coords)

		require.Error(t, err)
		require.Nil(t, current)
		assert.ErrorIs(t, err, weather.ErrOpenWeatherUnauthorized)
	})

	t.Run("empty conditions list", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"weather":[],"main":{},"wind":{}}`), nil
			},
		}

		client := weather.NewOpenWeatherClientWithHTTP(mockClient, "test-key", unlimited(), logger)
		_, err := client.Current(ctx, coords)

		require.Error(t, err)
		assert.ErrorIs(t, err, weather.ErrOpenWeatherEmptyResponse)
	})

	t.Run("cancelled context aborts before dispatch", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("request must not be dispatched after cancellation")
				return nil, nil
			},
		}

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		// Zero-rate limiter: Wait can only return via the cancelled context.
		blocked := rate.NewLimiter(rate.Every(time.Hour), 1)
		_ = blocked.Wait(context.Background())

		client := weather.NewOpenWeatherClientWithHTTP(mockClient, "test-key", blocked, logger)
		_, err := client.Current(cancelled, coords)

		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
