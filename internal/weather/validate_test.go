package weather

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/volatility"
)

func TestValidateLocationCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid", 51.5, -0.12, false},
		{"poles and antimeridian", -90, 180, false},
		{"latitude too high", 90.01, 0, true},
		{"latitude too low", -91, 0, true},
		{"longitude too high", 0, 180.5, true},
		{"longitude too low", 0, -181, true},
		{"nan latitude", math.NaN(), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLocation(Location{ID: uuid.New(), Name: "X", Latitude: tt.lat, Longitude: tt.lon})
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLocation) {
					t.Fatalf("expected ErrInvalidLocation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateLocationTimezone(t *testing.T) {
	bad := "Mars/Olympus"
	err := ValidateLocation(Location{Name: "X", Timezone: &bad})
	if !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation for unknown zone, got %v", err)
	}
}

func TestValidateReading(t *testing.T) {
	base := Reading{LocationID: uuid.New(), RecordedAt: time.Now()}

	if err := ValidateReading(base); err != nil {
		t.Fatalf("reading with no measurements should be valid: %v", err)
	}

	withZero := base
	withZero.TemperatureC = fp(0)
	withZero.PrecipitationMM = fp(0)
	if err := ValidateReading(withZero); err != nil {
		t.Fatalf("zero values should be valid: %v", err)
	}

	for name, mutate := range map[string]func(*Reading){
		"humidity over 100":  func(r *Reading) { r.HumidityPercent = fp(101) },
		"negative wind":      func(r *Reading) { r.WindSpeedMS = fp(-1) },
		"direction over 360": func(r *Reading) { r.WindDirectionDeg = fp(361) },
		"infinite pressure":  func(r *Reading) { r.PressureHpa = fp(math.Inf(1)) },
		"missing location":   func(r *Reading) { r.LocationID = uuid.Nil },
		"missing time":       func(r *Reading) { r.RecordedAt = time.Time{} },
	} {
		r := base
		mutate(&r)
		if err := ValidateReading(r); !errors.Is(err, ErrInvalidReading) {
			t.Errorf("%s: expected ErrInvalidReading, got %v", name, err)
		}
	}
}

func TestValidateReadingNonFinite(t *testing.T) {
	r := Reading{LocationID: uuid.New(), RecordedAt: time.Now(), TemperatureC: fp(math.NaN())}

	err := ValidateReading(r)
	if !errors.Is(err, ErrInvalidReading) || !errors.Is(err, volatility.ErrNonFinite) {
		t.Fatalf("expected ErrInvalidReading wrapping ErrNonFinite, got %v", err)
	}
}
