package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

// openStore returns the configured store and a function releasing it.
// SQL stores are migrated before use.
func openStore(ctx context.Context, cfg *config.AppConfig) (weather.Store, func() error, error) {
	if cfg.DBDriver == config.DriverMemory {
		log.Info().Int("max_history", cfg.StoreMaxHistory).Dur("max_age", cfg.StoreMaxAge).Msg("using in-memory store")
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge), func() error { return nil }, nil
	}

	sqlStore, err := openSQLStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := sqlStore.Migrate(ctx); err != nil {
		sqlStore.Close()
		return nil, nil, err
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("using SQL store")
	return sqlStore, sqlStore.Close, nil
}

func openSQLStore(ctx context.Context, cfg *config.AppConfig) (*store.SQLStore, error) {
	sqlCfg := store.DefaultSQLConfig()
	sqlCfg.Driver = cfg.DBDriver
	sqlCfg.DSN = cfg.DBDSN
	return store.OpenSQL(ctx, sqlCfg)
}

// buildProviders enables Open-Meteo unless disabled and every keyed
// provider whose API key is set.
func buildProviders(cfg *config.AppConfig, client *http.Client) ([]weather.Provider, error) {
	var provs []weather.Provider

	if cfg.EnableOpenMeteo {
		provs = append(provs, providers.NewOpenMeteoProvider(client))
	}
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey))
	}

	if len(provs) == 0 {
		return nil, fmt.Errorf("no weather providers enabled: set ENABLE_OPENMETEO or a provider API key")
	}
	for _, p := range provs {
		log.Info().Str("provider", p.Name()).Msg("provider enabled")
	}
	return provs, nil
}
