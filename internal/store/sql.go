package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	locationColumns = "id, name, latitude, longitude, elevation, timezone, created_at, updated_at"
	readingColumns  = "id, location_id, recorded_at, temperature_c, humidity_percent, pressure_hpa, " +
		"wind_speed_ms, wind_direction_deg, precipitation_mm, created_at, updated_at"
)

// SQLConfig holds database connection configuration.
type SQLConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// DefaultSQLConfig returns reasonable pool defaults.
func DefaultSQLConfig() SQLConfig {
	return SQLConfig{
		Driver:          DriverPostgres,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		QueryTimeout:    10 * time.Second,
	}
}

// SQLStore implements weather.Store on top of PostgreSQL or SQLite.
type SQLStore struct {
	db      *sqlx.DB
	driver  string
	timeout time.Duration
}

var _ weather.Store = (*SQLStore)(nil)

// OpenSQL connects to the configured database and verifies the connection.
func OpenSQL(ctx context.Context, cfg SQLConfig) (*SQLStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required for driver %q", cfg.Driver)
	}
	if cfg.Driver != DriverPostgres && cfg.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	if cfg.Driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewSQLStore(db, cfg.QueryTimeout), nil
}

// NewSQLStore wraps an existing connection. The driver is taken from db.
func NewSQLStore(db *sqlx.DB, timeout time.Duration) *SQLStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SQLStore{db: db, driver: db.DriverName(), timeout: timeout}
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Migrate creates the tables and indexes when they do not exist yet.
func (s *SQLStore) Migrate(ctx context.Context) error {
	stmts, err := schemaFor(s.driver)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	log.Info().Str("driver", s.driver).Int("statements", len(stmts)).Msg("schema migrated")
	return nil
}

func (s *SQLStore) ListLocations(ctx context.Context) ([]weather.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	locs := []weather.Location{}
	query := "SELECT " + locationColumns + " FROM locations ORDER BY name ASC, id ASC"
	if err := s.db.SelectContext(ctx, &locs, query); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locs, nil
}

func (s *SQLStore) GetLocation(ctx context.Context, id uuid.UUID) (weather.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var loc weather.Location
	query := s.db.Rebind("SELECT " + locationColumns + " FROM locations WHERE id = ?")
	if err := s.db.GetContext(ctx, &loc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return weather.Location{}, ErrNotFound
		}
		return weather.Location{}, fmt.Errorf("failed to get location: %w", err)
	}
	return loc, nil
}

func (s *SQLStore) CreateLocation(ctx context.Context, loc weather.Location) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := "INSERT INTO locations (" + locationColumns + ") VALUES " +
		"(:id, :name, :latitude, :longitude, :elevation, :timezone, :created_at, :updated_at)"
	if _, err := s.db.NamedExecContext(ctx, query, loc); err != nil {
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

// DeleteLocation removes the location and its readings in one transaction.
// Readings are deleted explicitly so SQLite without foreign key enforcement
// behaves like PostgreSQL's ON DELETE CASCADE.
func (s *SQLStore) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM weather_readings WHERE location_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete readings: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM locations WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLStore) InsertReading(ctx context.Context, r weather.Reading) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r.RecordedAt = r.RecordedAt.UTC()
	query := "INSERT INTO weather_readings (" + readingColumns + ") VALUES " +
		"(:id, :location_id, :recorded_at, :temperature_c, :humidity_percent, :pressure_hpa, " +
		":wind_speed_ms, :wind_direction_deg, :precipitation_mm, :created_at, :updated_at)"
	if _, err := s.db.NamedExecContext(ctx, query, r); err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteReading(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM weather_readings WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete reading: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReadings runs a range query. Bounds are inclusive, so an inverted
// range matches no rows.
func (s *SQLStore) ListReadings(ctx context.Context, f weather.ReadingFilter) ([]weather.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query, args := buildReadingQuery(f)
	readings := []weather.Reading{}
	if err := s.db.SelectContext(ctx, &readings, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	return readings, nil
}

func (s *SQLStore) LatestReading(ctx context.Context, locationID uuid.UUID) (weather.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var r weather.Reading
	query := s.db.Rebind("SELECT " + readingColumns +
		" FROM weather_readings WHERE location_id = ? ORDER BY recorded_at DESC LIMIT 1")
	if err := s.db.GetContext(ctx, &r, query, locationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return weather.Reading{}, ErrNotFound
		}
		return weather.Reading{}, fmt.Errorf("failed to get latest reading: %w", err)
	}
	return r, nil
}

// buildReadingQuery renders f as a SELECT with '?' placeholders.
func buildReadingQuery(f weather.ReadingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !f.Range.IsZero() {
		conds = append(conds, "recorded_at >= ?", "recorded_at <= ?")
		args = append(args, f.Range.Start().UTC(), f.Range.End().UTC())
	}
	if f.LocationID != nil {
		conds = append(conds, "location_id = ?")
		args = append(args, *f.LocationID)
	}

	var b strings.Builder
	b.WriteString("SELECT " + readingColumns + " FROM weather_readings")
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY recorded_at ASC")
	if f.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", f.Limit)
	}
	return b.String(), args
}
