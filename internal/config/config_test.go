package config_test

import (
	"testing"
	"time"

	"github.com/brollyweather/brolly/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoad(t *testing.T) {
	t.Setenv("BROLLY_ENV", "local")
	t.Setenv("BROLLY_CONTACT", "ops@brolly.example")
	t.Setenv("BROLLY_MIN_INTERVAL", "1500ms")
	t.Setenv("BROLLY_LOOKUP_TIMEOUT", "5s")
	t.Setenv("BROLLY_HEALTH_PORT", "9090")
	t.Setenv("METOFFICE_API_KEY", "metKey")
	t.Setenv("OPENWEATHER_API_KEY", "owmKey")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "ops@brolly.example", cfg.Contact)
	assert.Equal(t, "gb", cfg.CountryCodes)
	assert.Equal(t, 1500*time.Millisecond, cfg.MinInterval)
	assert.Equal(t, 5*time.Second, cfg.LookupTimeout)
	assert.Equal(t, 9090, cfg.HealthPort)
	assert.Equal(t, "metKey", cfg.MetOfficeKey)
	assert.Equal(t, "owmKey", cfg.OpenWeatherKey)
}

func Test_MustLoadDefaults(t *testing.T) {
	cfg := config.MustLoad()

	assert.Equal(t, "gb", cfg.CountryCodes)
	assert.Equal(t, time.Second, cfg.MinInterval)
	assert.Equal(t, 10*time.Second, cfg.LookupTimeout)
	assert.Equal(t, 8080, cfg.HealthPort)
}

func TestMustLoad_IntervalError(t *testing.T) {
	t.Setenv("BROLLY_MIN_INTERVAL", "error_value")

	assert.PanicsWithValue(t, "failed to parse minimum lookup interval from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_TimeoutError(t *testing.T) {
	t.Setenv("BROLLY_LOOKUP_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "failed to parse lookup timeout from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("BROLLY_HEALTH_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for monitoring server from configuration", func() {
		config.MustLoad()
	})
}
