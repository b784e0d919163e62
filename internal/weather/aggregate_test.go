package weather

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func fp(v float64) *float64 { return &v }

func TestAggregateReadingsAveragesPresentValues(t *testing.T) {
	loc := Location{ID: uuid.New(), Name: "Paris", Latitude: 48.85, Longitude: 2.35}
	t1 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(5 * time.Minute)

	r := AggregateReadings(loc, []ProviderReading{
		{ProviderName: "a", Timestamp: t1, TemperatureC: fp(10), HumidityPct: fp(70), WindDirectionDeg: fp(80)},
		{ProviderName: "b", Timestamp: t2, TemperatureC: fp(12), WindDirectionDeg: fp(100)},
	}, time.Now())

	if r.LocationID != loc.ID {
		t.Fatalf("location id = %s, want %s", r.LocationID, loc.ID)
	}
	if !r.RecordedAt.Equal(t2) {
		t.Fatalf("RecordedAt = %s, want newest provider time %s", r.RecordedAt, t2)
	}
	if r.TemperatureC == nil || *r.TemperatureC != 11 {
		t.Fatalf("temperature = %v, want 11", r.TemperatureC)
	}
	if r.HumidityPercent == nil || *r.HumidityPercent != 70 {
		t.Fatalf("humidity should average only reporting providers, got %v", r.HumidityPercent)
	}
	if r.PressureHpa != nil {
		t.Fatalf("pressure should stay nil when nobody reported it, got %v", *r.PressureHpa)
	}
	if r.WindDirectionDeg == nil || math.Abs(*r.WindDirectionDeg-90) > 1e-9 {
		t.Fatalf("wind direction = %v, want 90", r.WindDirectionDeg)
	}
}

func TestAggregateReadingsWrapsBearing(t *testing.T) {
	r := AggregateReadings(Location{}, []ProviderReading{
		{WindDirectionDeg: fp(350)},
		{WindDirectionDeg: fp(10)},
	}, time.Now())

	got := *r.WindDirectionDeg
	if math.Min(got, 360-got) > 1e-9 {
		t.Fatalf("mean of 350 and 10 should be north, got %v", got)
	}
}

func TestAggregateReadingsFallsBackToNow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := AggregateReadings(Location{}, []ProviderReading{{TemperatureC: fp(1)}}, now)
	if !r.RecordedAt.Equal(now) {
		t.Fatalf("RecordedAt = %s, want %s", r.RecordedAt, now)
	}
}
