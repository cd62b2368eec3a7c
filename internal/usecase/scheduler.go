package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsLens/internal/ports"
)

// Runner is a batch job the scheduler can trigger.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// Scheduler wires the interval driver with a batch use case.
type Scheduler struct {
	driver ports.Scheduler
	runner Runner
	logger *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, runner Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, runner: runner, logger: logger.With("component", "scheduler")}
}

// Start registers the runner with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.runner == nil {
		return nil
	}

	job := func(trigger time.Time) {
		logger := s.logger.With("trigger", trigger.Format(time.RFC3339))
		if ctx.Err() != nil {
			logger.Info("scheduled run skipped, shutting down")
			return
		}
		started := time.Now()
		if err := s.runner.RunOnce(ctx); err != nil {
			logger.Error("scheduled run failed", "error", err, "elapsed", time.Since(started).String())
			return
		}
		logger.Info("scheduled run finished", "elapsed", time.Since(started).String())
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

// RunOnce adapts Run to the Runner interface, discarding the summary.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	_, err := p.Run(ctx)
	return err
}
