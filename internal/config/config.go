package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the brolly MCP server.
//
// Fields:
// - Env: The current environment (e.g., local, dev, prod).
// - HealthPort: The port for the monitoring HTTP server.
// - Contact: Contact info embedded in the Nominatim User-Agent header.
// - CountryCodes: Default country filter for geocoding lookups.
// - MinInterval: Minimum spacing between rate-limited geocoding dispatches.
// - LookupTimeout: Per-request timeout for all upstream HTTP calls.
// - MetOfficeKey: API key for the Met Office DataHub.
// - OpenWeatherKey: API key for OpenWeatherMap.
type Config struct {
	Env            string        // Env is the current environment: local, dev, prod.
	HealthPort     int           // HealthPort is the monitoring server port.
	Contact        string        // Contact info required by the Nominatim usage policy.
	CountryCodes   string        // Default countrycodes filter for lookups.
	MinInterval    time.Duration // Minimum interval between rate-limited lookups.
	LookupTimeout  time.Duration // Timeout for upstream HTTP requests.
	MetOfficeKey   string        // API key for the Met Office DataHub.
	OpenWeatherKey string        // API key for OpenWeatherMap.
}

// MustLoad loads the configuration from the environment (and an optional
// .env file) and returns a Config struct. It panics on malformed values.
func MustLoad() *Config {
	_ = godotenv.Load()

	minInterval, err := time.ParseDuration(setDefaultEnv("BROLLY_MIN_INTERVAL", "1s"))
	if err != nil {
		panic("failed to parse minimum lookup interval from configuration")
	}

	lookupTimeout, err := time.ParseDuration(setDefaultEnv("BROLLY_LOOKUP_TIMEOUT", "10s"))
	if err != nil {
		panic("failed to parse lookup timeout from configuration")
	}

	healthPort, err := strconv.Atoi(setDefaultEnv("BROLLY_HEALTH_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	return &Config{
		Env:            setDefaultEnv("BROLLY_ENV", "production"),
		HealthPort:     healthPort,
		Contact:        setDefaultEnv("BROLLY_CONTACT", ""),
		CountryCodes:   setDefaultEnv("BROLLY_COUNTRY_CODES", "gb"),
		MinInterval:    minInterval,
		LookupTimeout:  lookupTimeout,
		MetOfficeKey:   os.Getenv("METOFFICE_API_KEY"),
		OpenWeatherKey: os.Getenv("OPENWEATHER_API_KEY"),
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
