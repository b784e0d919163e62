package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// kphToMS converts kilometres per hour to metres per second.
const kphToMS = 1 / 3.6

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("weatherapi: %w", errMissingAPIKey)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location and accepts "lat,lon".
	values.Set("q", fmt.Sprintf("%.4f,%.4f", loc.Latitude, loc.Longitude))

	var payload struct {
		Current struct {
			LastUpdatedEpoch int64    `json:"last_updated_epoch"`
			TempC            *float64 `json:"temp_c"`
			Humidity         *float64 `json:"humidity"`
			WindKph          *float64 `json:"wind_kph"`
			WindDegree       *float64 `json:"wind_degree"`
			PressureMb       *float64 `json:"pressure_mb"`
			PrecipMm         *float64 `json:"precip_mm"`
		} `json:"current"`
	}

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	var ts time.Time
	if payload.Current.LastUpdatedEpoch > 0 {
		ts = time.Unix(payload.Current.LastUpdatedEpoch, 0).UTC()
	}

	var wind *float64
	if payload.Current.WindKph != nil {
		wind = finite(*payload.Current.WindKph * kphToMS)
	}

	return weather.ProviderReading{
		ProviderName:     p.name,
		Timestamp:        ts,
		TemperatureC:     optional(payload.Current.TempC),
		HumidityPct:      optional(payload.Current.Humidity),
		WindSpeedMS:      wind,
		WindDirectionDeg: optional(payload.Current.WindDegree),
		PressureHpa:      optional(payload.Current.PressureMb),
		PrecipMm:         optional(payload.Current.PrecipMm),
	}, nil
}
