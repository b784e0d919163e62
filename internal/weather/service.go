package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-dashboard/internal/daterange"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/volatility"
)

var (
	// ErrNoProviderData is returned when every provider failed for a location.
	ErrNoProviderData = errors.New("no successful provider readings")
	// ErrNoCoordinates is returned when a location has no coordinates and
	// cannot be geocoded.
	ErrNoCoordinates = errors.New("latitude and longitude are required")
	// ErrGeocode is returned when a place name could not be resolved to
	// coordinates.
	ErrGeocode = errors.New("could not geocode location")
)

// Geocoder resolves a free-form place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (lat, lon float64, err error)
}

// NewLocation is the input for creating a location. Coordinates may be left
// out when Geocode is set and a Geocoder is configured.
type NewLocation struct {
	Name      string   `json:"name" validate:"required,max=200"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,finite,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,finite,gte=-180,lte=180"`
	Elevation *float64 `json:"elevation" validate:"omitempty,finite"`
	Timezone  *string  `json:"timezone" validate:"omitempty,timezone"`
	Geocode   bool     `json:"geocode"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithGeocoder enables coordinate lookup for new locations.
func WithGeocoder(g Geocoder) Option {
	return func(s *Service) { s.geocoder = g }
}

// Service orchestrates providers, the store and the dashboard views.
type Service struct {
	store     Store
	providers []Provider
	geocoder  Geocoder
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider, opts ...Option) *Service {
	s := &Service{
		store:     store,
		providers: providers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// CreateLocation validates, optionally geocodes and persists a location.
func (s *Service) CreateLocation(ctx context.Context, in NewLocation) (Location, error) {
	if err := validate.Struct(in); err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}

	if in.Latitude == nil || in.Longitude == nil {
		if !in.Geocode || s.geocoder == nil {
			return Location{}, fmt.Errorf("%w: %w", ErrInvalidLocation, ErrNoCoordinates)
		}
		lat, lon, err := s.geocoder.Geocode(ctx, in.Name)
		if err != nil {
			return Location{}, fmt.Errorf("%w %q: %w", ErrGeocode, in.Name, err)
		}
		in.Latitude, in.Longitude = &lat, &lon
		log.Debug().Str("name", in.Name).Float64("lat", lat).Float64("lon", lon).Msg("geocoded location")
	}

	now := s.now().UTC()
	loc := Location{
		ID:        uuid.New(),
		Name:      in.Name,
		Latitude:  *in.Latitude,
		Longitude: *in.Longitude,
		Elevation: in.Elevation,
		Timezone:  in.Timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ValidateLocation(loc); err != nil {
		return Location{}, err
	}

	if err := s.store.CreateLocation(ctx, loc); err != nil {
		return Location{}, fmt.Errorf("create location: %w", err)
	}
	log.Info().Str("location", loc.Key()).Str("name", loc.Name).Msg("location created")
	return loc, nil
}

// ListLocations delegates to the underlying store.
func (s *Service) ListLocations(ctx context.Context) ([]Location, error) {
	return s.store.ListLocations(ctx)
}

// GetLocation delegates to the underlying store.
func (s *Service) GetLocation(ctx context.Context, id uuid.UUID) (Location, error) {
	return s.store.GetLocation(ctx, id)
}

// LatestReading delegates to the underlying store.
func (s *Service) LatestReading(ctx context.Context, locationID uuid.UUID) (Reading, error) {
	return s.store.LatestReading(ctx, locationID)
}

// DeleteLocation removes a location and all of its readings.
func (s *Service) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteLocation(ctx, id); err != nil {
		return err
	}
	s.metrics.ForgetScope(scope(&id))
	log.Info().Str("location", id.String()).Msg("location deleted")
	return nil
}

// RecordReading validates and stores a manually submitted reading.
func (s *Service) RecordReading(ctx context.Context, r Reading) (Reading, error) {
	if _, err := s.store.GetLocation(ctx, r.LocationID); err != nil {
		return Reading{}, err
	}

	now := s.now().UTC()
	r.ID = uuid.New()
	r.RecordedAt = r.RecordedAt.UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if err := ValidateReading(r); err != nil {
		return Reading{}, err
	}

	if err := s.store.InsertReading(ctx, r); err != nil {
		return Reading{}, fmt.Errorf("insert reading: %w", err)
	}
	s.metrics.ReadingStored("api")
	return r, nil
}

// DeleteReading delegates to the underlying store.
func (s *Service) DeleteReading(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteReading(ctx, id)
}

// Readings returns the readings matching f, joined to their locations.
func (s *Service) Readings(ctx context.Context, f ReadingFilter) ([]ReadingWithLocation, error) {
	readings, err := s.store.ListReadings(ctx, f)
	if err != nil {
		return nil, err
	}
	locs, err := s.scopeLocations(ctx, f.LocationID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]Location, len(locs))
	for _, l := range locs {
		byID[l.ID] = l
	}

	out := make([]ReadingWithLocation, 0, len(readings))
	for _, r := range readings {
		out = append(out, ReadingWithLocation{Reading: r, Location: byID[r.LocationID]})
	}
	return out, nil
}

// FetchAndStore fetches data from all providers concurrently for the given location,
// aggregates successful readings, and stores a reading. When every provider
// fails, nothing is written and ErrNoProviderData is returned.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) (Reading, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
	)

	if len(s.providers) == 0 {
		log.Error().Str("location", loc.Key()).Msg("no providers available to fetch weather data")
		return Reading{}, fmt.Errorf("no weather providers configured")
	}

	for _, p := range s.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			s.metrics.ProviderFetch(p.Name(), err)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Warn().Err(err).Str("provider", p.Name()).Str("location", loc.Key()).Msg("provider fetch failed")
				return
			}

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}(p)
	}

	wg.Wait()

	if len(readings) == 0 {
		log.Warn().Str("location", loc.Key()).Msg("no successful provider readings; keeping stored history")
		return Reading{}, ErrNoProviderData
	}

	now := s.now().UTC()
	reading := AggregateReadings(loc, readings, now)
	reading.CreatedAt = now
	reading.UpdatedAt = now
	if err := ValidateReading(reading); err != nil {
		return Reading{}, err
	}

	if err := s.store.InsertReading(ctx, reading); err != nil {
		return Reading{}, fmt.Errorf("insert reading: %w", err)
	}
	s.metrics.ReadingStored("provider")
	log.Debug().Str("location", loc.Key()).Int("providers", len(readings)).Msg("stored aggregated reading")
	return reading, nil
}

// RefreshAll fetches every stored location concurrently. Each location gets
// its own timeout; failures are logged and counted, never fatal.
func (s *Service) RefreshAll(ctx context.Context, perLocation time.Duration) (int, error) {
	locs, err := s.store.ListLocations(ctx)
	if err != nil {
		return 0, fmt.Errorf("list locations: %w", err)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		stored int
	)
	for _, loc := range locs {
		wg.Add(1)
		go func(loc Location) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, perLocation)
			defer cancel()

			if _, err := s.FetchAndStore(fetchCtx, loc); err != nil {
				log.Warn().Err(err).Str("location", loc.Key()).Msg("refresh failed")
				return
			}
			mu.Lock()
			stored++
			mu.Unlock()
		}(loc)
	}
	wg.Wait()

	return stored, nil
}

// Dashboard builds the headline metrics for the range, optionally scoped to
// one location.
func (s *Service) Dashboard(ctx context.Context, rng daterange.Range, locationID *uuid.UUID) (Dashboard, error) {
	readings, err := s.store.ListReadings(ctx, ReadingFilter{LocationID: locationID, Range: rng})
	if err != nil {
		return Dashboard{}, err
	}
	locs, err := s.scopeLocations(ctx, locationID)
	if err != nil {
		return Dashboard{}, err
	}

	d := BuildDashboard(readings, locs)
	s.metrics.VolatilityComputed(scope(locationID), float64(d.Volatility.Score))
	return d, nil
}

// Trends returns per-day aggregates for the range, bucketed in the range's
// time zone.
func (s *Service) Trends(ctx context.Context, rng daterange.Range, locationID *uuid.UUID) ([]DailyTrend, error) {
	if locationID != nil {
		if _, err := s.store.GetLocation(ctx, *locationID); err != nil {
			return nil, err
		}
	}
	readings, err := s.store.ListReadings(ctx, ReadingFilter{LocationID: locationID, Range: rng})
	if err != nil {
		return nil, err
	}
	return BuildTrends(readings, rng.Start().Location()), nil
}

// Volatility computes the composite volatility score for the range.
func (s *Service) Volatility(ctx context.Context, rng daterange.Range, locationID *uuid.UUID) (volatility.Report, error) {
	if locationID != nil {
		if _, err := s.store.GetLocation(ctx, *locationID); err != nil {
			return volatility.Report{}, err
		}
	}
	readings, err := s.store.ListReadings(ctx, ReadingFilter{LocationID: locationID, Range: rng})
	if err != nil {
		return volatility.Report{}, err
	}

	report := volatility.Explain(VolatilityInput(readings))
	s.metrics.VolatilityComputed(scope(locationID), float64(report.Score))
	return report, nil
}

func (s *Service) scopeLocations(ctx context.Context, locationID *uuid.UUID) ([]Location, error) {
	if locationID == nil {
		return s.store.ListLocations(ctx)
	}
	loc, err := s.store.GetLocation(ctx, *locationID)
	if err != nil {
		return nil, err
	}
	return []Location{loc}, nil
}

func scope(locationID *uuid.UUID) string {
	if locationID == nil {
		return "all"
	}
	return locationID.String()
}
