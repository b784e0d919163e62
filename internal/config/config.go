package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Storage backends accepted by DB_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type AppConfig struct {
	Port     string
	LogLevel string

	// DBDriver selects the store: memory, postgres or sqlite.
	DBDriver string
	DBDSN    string

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string
	EnableOpenMeteo   bool

	// FetchInterval controls how often we fetch data for each location.
	FetchInterval time.Duration
	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// In-memory store retention.
	StoreMaxHistory int           // max number of readings per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of readings (0 = unlimited)
}

// Load reads configuration from environment with sensible defaults. A .env
// file in the working directory is applied first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		DBDriver:          strings.ToLower(getenvDefault("DB_DRIVER", DriverMemory)),
		DBDSN:             os.Getenv("DB_DSN"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		EnableOpenMeteo:   getenvBool("ENABLE_OPENMETEO", true),
		// Roughly 90 days at 15-minute intervals.
		StoreMaxHistory: getenvInt("STORE_MAX_HISTORY", 8640),
	}

	var err error
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "0"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.DBDriver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for DB_DRIVER=%s", c.DBDriver)
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want memory, postgres or sqlite", c.DBDriver)
	}
	if c.FetchInterval <= 0 {
		return fmt.Errorf("FETCH_INTERVAL must be positive, got %s", c.FetchInterval)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
