// Package runner repeats the trial check on a fixed interval.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dev/bravebird/trial-resetter/pkg/models"
)

// Iteration is one check run.
type Iteration interface {
	RunOnce(ctx context.Context) (models.CheckResult, error)
}

// Recorder receives the result of every iteration.
type Recorder interface {
	Record(ctx context.Context, result models.CheckResult) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, result models.CheckResult) error

func (f RecorderFunc) Record(ctx context.Context, result models.CheckResult) error {
	return f(ctx, result)
}

// Runner runs an Iteration, logs any failure and sleeps, until its context
// is cancelled. A failed iteration never stops the loop.
type Runner struct {
	iteration Iteration
	interval  time.Duration
	logger    zerolog.Logger
	recorders []Recorder
}

// New creates a runner.
func New(iteration Iteration, interval time.Duration, logger zerolog.Logger, recorders ...Recorder) *Runner {
	return &Runner{
		iteration: iteration,
		interval:  interval,
		logger:    logger,
		recorders: recorders,
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info().Dur("interval", r.interval).Msg("Starting trial reset loop")

	for ctx.Err() == nil {
		result, err := r.runOnce(ctx)
		if err != nil {
			r.logger.Error().Err(err).Str("check_id", result.ID).Msg("Trial check failed")
		}
		r.record(context.WithoutCancel(ctx), result)

		select {
		case <-ctx.Done():
		case <-time.After(r.interval):
		}
	}
	r.logger.Info().Msg("Trial reset loop stopped")
}

// runOnce isolates an iteration, turning a panic into an error.
func (r *Runner) runOnce(ctx context.Context) (result models.CheckResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
			result.Outcome = models.OutcomeFailed
			result.ErrorMessage = err.Error()
		}
	}()
	return r.iteration.RunOnce(ctx)
}

func (r *Runner) record(ctx context.Context, result models.CheckResult) {
	for _, rec := range r.recorders {
		if err := rec.Record(ctx, result); err != nil {
			r.logger.Warn().Err(err).Str("check_id", result.ID).Msg("Failed to record check result")
		}
	}
}
