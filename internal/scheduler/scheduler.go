package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-cache/internal/weather"
)

// runTimeout bounds a single refresh run.
const runTimeout = 30 * time.Second

// Fetcher is the part of weather.Cache the scheduler needs.
type Fetcher interface {
	GetMany(ctx context.Context, locations []string) ([]weather.Snapshot, error)
}

// Scheduler periodically requests weather for configured locations so the
// cache stays warm, like a dashboard polling on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	locations []string
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a new Scheduler.
func New(locations []string, interval time.Duration, fetcher Fetcher, log zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		fetcher:   fetcher,
		locations: locations,
		interval:  interval,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.log.Info().Msg("no locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = weather.DefaultTTL
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		s.Run(ctx)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Strs("locations", s.locations).
		Dur("interval", interval).
		Msg("refresher scheduled")
	s.scheduler.StartAsync()
	return nil
}

// Run performs one refresh of every configured location. Failures are logged, never returned.
func (s *Scheduler) Run(ctx context.Context) {
	start := time.Now()
	s.log.Debug().Msg("running weather refresh job")

	snaps, err := s.fetcher.GetMany(ctx, s.locations)
	if err != nil {
		s.log.Error().Err(err).Msg("weather refresh failed")
		return
	}
	s.log.Info().
		Int("locations", len(snaps)).
		Dur("took", time.Since(start)).
		Msg("weather refresh completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
