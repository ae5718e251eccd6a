package scraper

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/dkarlov/faretrack/pkg/logger"
)

// Scheduler re-runs the capture on a cron schedule. Scheduling is decoupled
// from aggregation: the aggregator stays a pure computation over the store,
// and a stopped scheduler leaves no partial state behind.
type Scheduler struct {
	cron     *cron.Cron
	runner   *Runner
	schedule string
	logger   *logger.Logger
}

// NewScheduler creates a scheduler for the given runner. The schedule is a
// standard 5-field cron expression.
func NewScheduler(runner *Runner, schedule string, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		runner:   runner,
		schedule: schedule,
		logger:   log.Named("scheduler"),
	}
}

// Start validates the schedule and begins ticking. A tick that fires while a
// previous run is still active is skipped, not queued.
func (s *Scheduler) Start() error {
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		key, skipped, err := s.runner.TryRun(context.Background())
		switch {
		case skipped:
			s.logger.Warn("Skipping scheduled run, previous run still active")
		case err != nil:
			s.logger.Error("Scheduled run failed", logger.Error(err))
		default:
			s.logger.Info("Scheduled run stored snapshot", logger.String("key", key))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule runs: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started", logger.String("schedule", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}
