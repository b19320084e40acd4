package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsIngest/internal/ports"
)

// Sweeper binds one recurring sweep to a scheduler driver. A sweep error is
// logged and dropped; the next tick retries from scratch.
type Sweeper struct {
	name   string
	driver ports.Scheduler
	run    func(context.Context) error
	logger *slog.Logger
}

// NewSweeper returns a helper to start/stop one recurring sweep.
func NewSweeper(name string, driver ports.Scheduler, run func(context.Context) error, logger *slog.Logger) *Sweeper {
	return &Sweeper{name: name, driver: driver, run: run, logger: logger}
}

// Start registers the sweep with the underlying scheduler.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.driver == nil || s.run == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.run(ctx); err != nil {
			if s.logger != nil {
				s.logger.Error("sweep failed", "sweep", s.name, "error", err)
			}
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
