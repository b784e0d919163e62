package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

// Refresher fetches current conditions for every stored location.
// *weather.Service satisfies it.
type Refresher interface {
	RefreshAll(ctx context.Context, perLocation time.Duration) (int, error)
}

// Scheduler periodically refreshes weather data for all stored locations.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	refresher   Refresher
	interval    time.Duration
	perLocation time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler. perLocation bounds each location's fetch.
func New(refresher Refresher, interval, perLocation time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// Skip a run rather than stack it behind a slow one.
	s.SingletonModeAll()
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler:   s,
		refresher:   refresher,
		interval:    interval,
		perLocation: perLocation,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Info().Dur("interval", s.interval).Msg("scheduler started")
	return nil
}

func (s *Scheduler) run() {
	started := time.Now()
	log.Debug().Msg("scheduler: running weather fetch job")

	stored, err := s.refresher.RefreshAll(s.ctx, s.perLocation)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: refresh failed")
		return
	}
	log.Info().Int("stored", stored).Dur("took", time.Since(started)).Msg("scheduler: completed weather fetch job")
}

// Stop cancels an in-flight refresh, then stops the scheduler and any
// future jobs.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
