package weather

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/daterange"
)

// ProviderReading represents a single provider's normalized observation
// that can be aggregated into a Reading. Fields the provider did not report
// stay nil.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC     *float64
	HumidityPct      *float64
	WindSpeedMS      *float64
	WindDirectionDeg *float64
	PressureHpa      *float64
	PrecipMm         *float64
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// ReadingFilter narrows a reading query. Range bounds are inclusive; an
// inverted range matches nothing and a zero Range applies no time bound.
// A zero Limit means no limit; otherwise the earliest Limit readings are kept.
type ReadingFilter struct {
	LocationID *uuid.UUID
	Range      daterange.Range
	Limit      int
}

// Matches reports whether r satisfies the filter, ignoring Limit.
func (f ReadingFilter) Matches(r Reading) bool {
	if f.LocationID != nil && r.LocationID != *f.LocationID {
		return false
	}
	return f.Range.IsZero() || f.Range.Contains(r.RecordedAt)
}

// Store is the contract every persistence backend must satisfy.
type Store interface {
	ListLocations(ctx context.Context) ([]Location, error)
	GetLocation(ctx context.Context, id uuid.UUID) (Location, error)
	CreateLocation(ctx context.Context, loc Location) error
	// DeleteLocation removes the location together with its readings.
	DeleteLocation(ctx context.Context, id uuid.UUID) error

	InsertReading(ctx context.Context, r Reading) error
	DeleteReading(ctx context.Context, id uuid.UUID) error
	// ListReadings returns matching readings ordered by RecordedAt ascending.
	ListReadings(ctx context.Context, f ReadingFilter) ([]Reading, error)
	LatestReading(ctx context.Context, locationID uuid.UUID) (Reading, error)
}
