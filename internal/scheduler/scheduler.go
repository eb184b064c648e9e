package scheduler

import (
	"context"
	"fmt"
	"time"

	"clubratings/ingestion/internal/cache"
	"clubratings/ingestion/internal/config"
	"clubratings/ingestion/internal/importer"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages the recurring import jobs. The nightly run imports
// today's rating snapshot and the current fixture predictions; the two jobs
// are independent invocations and rely on the store's upsert semantics to
// stay correct when runs overlap.
type Scheduler struct {
	cfg   *config.Config
	imp   *importer.Importer
	state *cache.RedisCache // nil when Redis is unavailable
	cron  *cron.Cron
}

// NewScheduler creates a new scheduler instance. state may be nil.
func NewScheduler(cfg *config.Config, imp *importer.Importer, state *cache.RedisCache) *Scheduler {
	return &Scheduler{
		cfg:   cfg,
		imp:   imp,
		state: state,
		cron:  cron.New(),
	}
}

// Start registers and starts the nightly refresh job
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlyRefreshCron, func() {
		log.Info().Msg("Running nightly refresh...")
		s.RunNightly(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly refresh: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyRefreshCron).
		Msg("Nightly refresh scheduled")

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	log.Info().Msg("Scheduler stopped")
}

// RunNightly imports today's snapshot and the fixture predictions. Job
// failures are logged and never crash the worker; a failed day is picked up
// by the next scheduled run.
func (s *Scheduler) RunNightly(ctx context.Context) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	if err := s.RunSnapshot(ctx, today); err != nil {
		log.Error().Err(err).Time("date", today).Msg("Nightly snapshot import failed")
	}

	if err := s.RunFixtures(ctx); err != nil {
		log.Error().Err(err).Msg("Nightly fixtures import failed")
	}
}

// RunSnapshot fetches and imports the rating snapshot for one date
func (s *Scheduler) RunSnapshot(ctx context.Context, date time.Time) error {
	res, err := s.imp.SyncSnapshot(ctx, date)
	if err != nil {
		return err
	}

	s.recordState(ctx, "snapshot", res)
	log.Info().
		Time("date", date).
		Int("success", res.Success).
		Int("errors", res.Errors).
		Msg("Snapshot sync finished")

	return nil
}

// RunFixtures fetches and imports the current fixture predictions
func (s *Scheduler) RunFixtures(ctx context.Context) error {
	res, err := s.imp.SyncFixtures(ctx, nil)
	if err != nil {
		return err
	}

	s.recordState(ctx, "fixtures", res)
	log.Info().
		Int("success", res.Success).
		Int("errors", res.Errors).
		Msg("Fixtures sync finished")

	return nil
}

func (s *Scheduler) recordState(ctx context.Context, job string, res importer.Result) {
	if s.state == nil {
		return
	}

	err := s.state.SetImportState(ctx, cache.ImportState{
		Job:         job,
		CompletedAt: time.Now().UTC(),
		Success:     res.Success,
		Errors:      res.Errors,
	})
	if err != nil {
		log.Warn().Err(err).Str("job", job).Msg("Failed to record import state")
	}
}
