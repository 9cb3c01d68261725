package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"mofa_notifier/internal/domain"
)

// Runner performs one notifier pass.
type Runner interface {
	Run(ctx context.Context) (*domain.RunStats, error)
}

// Scheduler runs a Runner on a cron spec. Overlapping ticks are skipped.
type Scheduler struct {
	runner     Runner
	spec       string
	location   *time.Location
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewScheduler(runner Runner, spec string, location *time.Location, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		spec:       spec,
		location:   location,
		runTimeout: 5 * time.Minute,
		logger:     logger,
	}
}

// Start runs once immediately, then on every tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	if _, err := c.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("%w: schedule %q: %v", domain.ErrConfiguration, s.spec, err)
	}

	s.logger.Info("scheduler started", "cron", s.spec, "location", s.location.String())

	s.runOnce(ctx)

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	// Failed runs are logged by the runner.
	stats, err := s.runner.Run(runCtx)
	if err != nil {
		return
	}
	s.logger.Info(stats.Summary(), "run_id", stats.RunID)
}
