package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when a requested location or reading does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a record with the same ID already exists.
	ErrConflict = errors.New("already exists")
	// ErrOutsideRetention is returned when a reading would be evicted by the
	// retention limits as soon as it was stored.
	ErrOutsideRetention = errors.New("reading is outside the retention window")
)

// readingHistory holds a time-ordered list of readings for a location.
type readingHistory struct {
	readings []weather.Reading
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	locations map[uuid.UUID]weather.Location
	// key: location id, value: history ordered by RecordedAt
	history map[uuid.UUID]*readingHistory

	// retention configuration
	maxHistory int           // max number of readings per location
	maxAge     time.Duration // optional max age for readings
	now        func() time.Time
}

var _ weather.Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0 or maxAge is <= 0, that limit is disabled.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		locations:  make(map[uuid.UUID]weather.Location),
		history:    make(map[uuid.UUID]*readingHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for age-based retention.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryStore) ListLocations(_ context.Context) ([]weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Location, 0, len(s.locations))
	for _, l := range s.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *MemoryStore) GetLocation(_ context.Context, id uuid.UUID) (weather.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.locations[id]
	if !ok {
		return weather.Location{}, ErrNotFound
	}
	return l, nil
}

func (s *MemoryStore) CreateLocation(_ context.Context, loc weather.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[loc.ID]; ok {
		return ErrConflict
	}
	s.locations[loc.ID] = loc
	return nil
}

func (s *MemoryStore) DeleteLocation(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[id]; !ok {
		return ErrNotFound
	}
	delete(s.locations, id)
	delete(s.history, id)
	return nil
}

// InsertReading adds a reading in RecordedAt order and enforces retention.
// A reading that retention would evict immediately is rejected with
// ErrOutsideRetention instead of being silently dropped.
func (s *MemoryStore) InsertReading(_ context.Context, r weather.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[r.LocationID]; !ok {
		return ErrNotFound
	}

	var cutoff time.Time
	if s.maxAge > 0 {
		cutoff = s.now().Add(-s.maxAge)
		if r.RecordedAt.Before(cutoff) {
			return fmt.Errorf("%w: recorded %s, oldest kept %s", ErrOutsideRetention, r.RecordedAt.Format(time.RFC3339), cutoff.Format(time.RFC3339))
		}
	}

	h, ok := s.history[r.LocationID]
	if !ok {
		h = &readingHistory{}
		s.history[r.LocationID] = h
	}
	for _, existing := range h.readings {
		if existing.ID == r.ID {
			return ErrConflict
		}
	}

	i := sort.Search(len(h.readings), func(i int) bool {
		return h.readings[i].RecordedAt.After(r.RecordedAt)
	})
	// With a full history the oldest entry is evicted; that must not be r.
	if s.maxHistory > 0 && len(h.readings) >= s.maxHistory && i == 0 {
		return fmt.Errorf("%w: older than the %d kept readings", ErrOutsideRetention, s.maxHistory)
	}

	h.readings = append(h.readings, weather.Reading{})
	copy(h.readings[i+1:], h.readings[i:])
	h.readings[i] = r

	if s.maxHistory > 0 && len(h.readings) > s.maxHistory {
		over := len(h.readings) - s.maxHistory
		h.readings = h.readings[over:]
	}
	if s.maxAge > 0 {
		i := sort.Search(len(h.readings), func(i int) bool {
			return !h.readings[i].RecordedAt.Before(cutoff)
		})
		h.readings = h.readings[i:]
	}
	return nil
}

func (s *MemoryStore) DeleteReading(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, h := range s.history {
		for i, r := range h.readings {
			if r.ID == id {
				h.readings = append(h.readings[:i], h.readings[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

// ListReadings returns all readings matching f ordered by RecordedAt.
// Bounds are inclusive; an inverted range yields an empty result.
func (s *MemoryStore) ListReadings(_ context.Context, f weather.ReadingFilter) ([]weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []weather.Reading{}
	if f.Range.Inverted() {
		return result, nil
	}

	for id, h := range s.history {
		if f.LocationID != nil && id != *f.LocationID {
			continue
		}
		for _, r := range h.readings {
			if f.Matches(r) {
				result = append(result, r)
			}
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RecordedAt.Before(result[j].RecordedAt)
	})
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

// LatestReading returns the most recent reading for a location.
func (s *MemoryStore) LatestReading(_ context.Context, locationID uuid.UUID) (weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.history[locationID]
	if !ok || len(h.readings) == 0 {
		return weather.Reading{}, ErrNotFound
	}
	return h.readings[len(h.readings)-1], nil
}
