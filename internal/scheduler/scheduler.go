// Package scheduler runs refreshes on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/vitalscope/vitalscope/pkg/health"
)

// RefreshFunc refreshes one period.
type RefreshFunc func(ctx context.Context, period health.Period) error

// Scheduler refreshes a fixed set of periods on every tick. A tick that
// fires while the previous one is still running is skipped.
type Scheduler struct {
	cron    *cron.Cron
	refresh RefreshFunc
	periods []health.Period
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a scheduler. Periods are refreshed in the order given.
func New(refresh RefreshFunc, periods []health.Period, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		refresh: refresh,
		periods: periods,
		timeout: 5 * time.Minute,
		log:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Schedule registers the refresh job.
// Schedule examples:
//   - "*/30 * * * *" - every 30 minutes
//   - "@hourly"      - every hour
//   - "@every 10m"   - every 10 minutes
func (s *Scheduler) Schedule(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	s.log.Info().Str("schedule", spec).Int("periods", len(s.periods)).Msg("refresh scheduled")
	return nil
}

// RunNow refreshes every period once, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) error {
	var firstErr error
	for _, p := range s.periods {
		if err := s.refresh(ctx, p); err != nil {
			s.log.Error().Err(err).Str("period", string(p)).Msg("refresh failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.log.Debug().Msg("running scheduled refresh")
	_ = s.RunNow(ctx)
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// a running tick to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
	return nil
}
