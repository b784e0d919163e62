package weather

import (
	"time"

	"github.com/google/uuid"
)

// Location represents a monitored place. Latitude and longitude are required.
type Location struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" validate:"required,max=200"`
	Latitude  float64   `json:"latitude" db:"latitude" validate:"finite,gte=-90,lte=90"`
	Longitude float64   `json:"longitude" db:"longitude" validate:"finite,gte=-180,lte=180"`
	Elevation *float64  `json:"elevation,omitempty" db:"elevation" validate:"omitempty,finite"`
	Timezone  *string   `json:"timezone,omitempty" db:"timezone" validate:"omitempty,timezone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.ID.String()
}

// TimeLocation returns the location's IANA zone, or UTC when unset or unknown.
func (l Location) TimeLocation() *time.Location {
	if l.Timezone == nil || *l.Timezone == "" {
		return time.UTC
	}
	tz, err := time.LoadLocation(*l.Timezone)
	if err != nil {
		return time.UTC
	}
	return tz
}

// Reading is a single observation at a location. Every measurement is
// optional; nil means the value was not observed.
type Reading struct {
	ID               uuid.UUID `json:"id" db:"id"`
	LocationID       uuid.UUID `json:"location_id" db:"location_id" validate:"required"`
	RecordedAt       time.Time `json:"recorded_at" db:"recorded_at" validate:"required"`
	TemperatureC     *float64  `json:"temperature_c" db:"temperature_c" validate:"omitempty,finite,gte=-100,lte=70"`
	HumidityPercent  *float64  `json:"humidity_percent" db:"humidity_percent" validate:"omitempty,finite,gte=0,lte=100"`
	PressureHpa      *float64  `json:"pressure_hpa" db:"pressure_hpa" validate:"omitempty,finite,gt=0"`
	WindSpeedMS      *float64  `json:"wind_speed_ms" db:"wind_speed_ms" validate:"omitempty,finite,gte=0"`
	WindDirectionDeg *float64  `json:"wind_direction_deg" db:"wind_direction_deg" validate:"omitempty,finite,gte=0,lte=360"`
	PrecipitationMM  *float64  `json:"precipitation_mm" db:"precipitation_mm" validate:"omitempty,finite,gte=0"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// ReadingWithLocation joins a reading to its location, many-to-one.
type ReadingWithLocation struct {
	Reading
	Location Location `json:"location"`
}
