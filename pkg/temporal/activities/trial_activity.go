package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"dev/bravebird/trial-resetter/pkg/models"
	"dev/bravebird/trial-resetter/pkg/runner"
)

// Activities holds activity implementations
type Activities struct {
	Check     runner.Iteration
	Recorders []runner.Recorder
}

// NewActivities creates new activities
func NewActivities(check runner.Iteration, recorders ...runner.Recorder) *Activities {
	return &Activities{
		Check:     check,
		Recorders: recorders,
	}
}

// CheckTrialActivity runs one check-and-reset iteration. A failed check is
// reported in the result, not as an activity error, so Temporal never
// retries it.
func (a *Activities) CheckTrialActivity(ctx context.Context) (models.CheckResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Checking trial countdown")

	result, err := a.Check.RunOnce(ctx)
	if err != nil {
		result.Outcome = models.OutcomeFailed
		result.ErrorMessage = err.Error()
	}

	for _, rec := range a.Recorders {
		if err := rec.Record(ctx, result); err != nil {
			logger.Warn("Failed to record check result", "checkID", result.ID, "error", err)
		}
	}

	return result, nil
}
