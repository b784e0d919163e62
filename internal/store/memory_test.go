package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/daterange"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

func f(v float64) *float64 { return &v }

func seedLocation(t *testing.T, s *MemoryStore, name string) weather.Location {
	t.Helper()
	loc := weather.Location{ID: uuid.New(), Name: name, Latitude: 48.85, Longitude: 2.35}
	if err := s.CreateLocation(context.Background(), loc); err != nil {
		t.Fatalf("CreateLocation: %v", err)
	}
	return loc
}

func reading(loc weather.Location, at time.Time, temp float64) weather.Reading {
	return weather.Reading{ID: uuid.New(), LocationID: loc.ID, RecordedAt: at, TemperatureC: f(temp)}
}

func TestMemoryStoreRangeInclusive(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 0)
	paris := seedLocation(t, s, "Paris")

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rng := daterange.ResolveCustom(day, day)

	inserts := []weather.Reading{
		reading(paris, rng.End(), 3),
		reading(paris, rng.Start(), 1),
		reading(paris, day.Add(12*time.Hour), 2),
		reading(paris, rng.Start().Add(-time.Millisecond), 0),
		reading(paris, rng.End().Add(time.Millisecond), 4),
	}
	for _, r := range inserts {
		if err := s.InsertReading(ctx, r); err != nil {
			t.Fatalf("InsertReading: %v", err)
		}
	}

	got, err := s.ListReadings(ctx, weather.ReadingFilter{Range: rng})
	if err != nil {
		t.Fatalf("ListReadings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(got))
	}
	for i, want := range []float64{1, 2, 3} {
		if *got[i].TemperatureC != want {
			t.Fatalf("reading %d temperature = %v, want %v (ordering)", i, *got[i].TemperatureC, want)
		}
	}
}

func TestMemoryStoreInvertedRangeIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 0)
	loc := seedLocation(t, s, "Oslo")

	for d := 1; d <= 10; d++ {
		at := time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
		if err := s.InsertReading(ctx, reading(loc, at, float64(d))); err != nil {
			t.Fatalf("InsertReading: %v", err)
		}
	}

	inverted := daterange.ResolveCustom(
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	)
	got, err := s.ListReadings(ctx, weather.ReadingFilter{Range: inverted})
	if err != nil {
		t.Fatalf("inverted range should not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d readings", len(got))
	}
}

func TestMemoryStoreLocationScopeAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 0)
	a := seedLocation(t, s, "A")
	b := seedLocation(t, s, "B")

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_ = s.InsertReading(ctx, reading(a, base.Add(time.Duration(i)*time.Hour), float64(i)))
		_ = s.InsertReading(ctx, reading(b, base.Add(time.Duration(i)*time.Hour), float64(10+i)))
	}

	got, err := s.ListReadings(ctx, weather.ReadingFilter{LocationID: &b.ID, Limit: 2})
	if err != nil {
		t.Fatalf("ListReadings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(got))
	}
	for _, r := range got {
		if r.LocationID != b.ID {
			t.Fatalf("reading from wrong location %s", r.LocationID)
		}
	}
	if *got[0].TemperatureC != 10 {
		t.Fatalf("expected earliest reading first, got %v", *got[0].TemperatureC)
	}

	latest, err := s.LatestReading(ctx, a.ID)
	if err != nil {
		t.Fatalf("LatestReading: %v", err)
	}
	if *latest.TemperatureC != 4 {
		t.Fatalf("latest temperature = %v, want 4", *latest.TemperatureC)
	}
}

func TestMemoryStoreRetention(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(3, 24*time.Hour).WithClock(func() time.Time { return now })
	loc := seedLocation(t, s, "Rome")

	for i := 4; i >= 0; i-- {
		at := now.Add(-time.Duration(i) * time.Hour)
		if err := s.InsertReading(ctx, reading(loc, at, float64(i))); err != nil {
			t.Fatalf("InsertReading: %v", err)
		}
	}
	got, _ := s.ListReadings(ctx, weather.ReadingFilter{LocationID: &loc.ID})
	if len(got) != 3 {
		t.Fatalf("expected count retention to keep 3 readings, got %d", len(got))
	}
	if !got[0].RecordedAt.Equal(now.Add(-2 * time.Hour)) {
		t.Fatalf("oldest kept reading = %s, want the newest three", got[0].RecordedAt)
	}
}

func TestMemoryStoreRejectsReadingsOutsideRetention(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		maxHistory int
		maxAge     time.Duration
		at         time.Time
	}{
		{"older than max age", 0, 24 * time.Hour, now.Add(-48 * time.Hour)},
		{"older than a full history", 2, 0, now.AddDate(0, 0, -3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStore(tt.maxHistory, tt.maxAge).WithClock(func() time.Time { return now })
			loc := seedLocation(t, s, "Turin")
			for _, at := range []time.Time{now, now.Add(-time.Hour)} {
				if err := s.InsertReading(ctx, reading(loc, at, 1)); err != nil {
					t.Fatalf("seed: %v", err)
				}
			}

			old := reading(loc, tt.at, 99)
			if err := s.InsertReading(ctx, old); !errors.Is(err, ErrOutsideRetention) {
				t.Fatalf("expected ErrOutsideRetention, got %v", err)
			}
			got, _ := s.ListReadings(ctx, weather.ReadingFilter{LocationID: &loc.ID})
			if len(got) != 2 {
				t.Fatalf("existing readings should be untouched, got %d", len(got))
			}
		})
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 0)

	if _, err := s.GetLocation(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetLocation: expected ErrNotFound, got %v", err)
	}
	if _, err := s.LatestReading(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LatestReading: expected ErrNotFound, got %v", err)
	}
	if err := s.InsertReading(ctx, weather.Reading{ID: uuid.New(), LocationID: uuid.New()}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("InsertReading for unknown location: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteReading(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteReading: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 0)
	loc := seedLocation(t, s, "Lima")
	r := reading(loc, time.Now(), 20)
	_ = s.InsertReading(ctx, r)

	if err := s.CreateLocation(ctx, loc); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate CreateLocation: expected ErrConflict, got %v", err)
	}
	if err := s.DeleteLocation(ctx, loc.ID); err != nil {
		t.Fatalf("DeleteLocation: %v", err)
	}

	got, _ := s.ListReadings(ctx, weather.ReadingFilter{})
	if len(got) != 0 {
		t.Fatalf("readings should be removed with their location, got %d", len(got))
	}
	if err := s.DeleteLocation(ctx, loc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}
