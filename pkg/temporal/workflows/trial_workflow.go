package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"dev/bravebird/trial-resetter/pkg/models"
)

const (
	defaultIntervalSeconds    = 5
	defaultTimeoutSeconds     = 120
	defaultContinueAsNewAfter = 500
)

// TrialResetWorkflow checks the trial countdown on a fixed interval and
// resets it when it expires. Failed checks are logged and the loop goes on.
// The workflow continues as new every ContinueAsNewAfter checks to keep its
// history bounded; with Iterations > 0 it stops after that many checks.
func TrialResetWorkflow(ctx workflow.Context, input models.ResetWorkflowInput) (models.ResetWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)

	if input.IntervalSeconds <= 0 {
		input.IntervalSeconds = defaultIntervalSeconds
	}
	if input.TimeoutSeconds <= 0 {
		input.TimeoutSeconds = defaultTimeoutSeconds
	}
	if input.ContinueAsNewAfter <= 0 {
		input.ContinueAsNewAfter = defaultContinueAsNewAfter
	}
	interval := time.Duration(input.IntervalSeconds) * time.Second

	logger.Info("Starting trial reset workflow", "interval", interval, "completed", input.Completed)

	// A check is never retried; the next interval is the retry.
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Duration(input.TimeoutSeconds) * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	checks := 0
	for {
		var check models.CheckResult
		err := workflow.ExecuteActivity(ctx, "CheckTrialActivity").Get(ctx, &check)

		checks++
		input.Completed++

		switch {
		case err != nil:
			input.Failed++
			logger.Error("Trial check failed", "error", err.Error())
		case check.Outcome == models.OutcomeFailed:
			input.Failed++
			logger.Error("Trial check failed", "checkID", check.ID, "error", check.ErrorMessage)
		case check.Outcome == models.OutcomeReset:
			input.Resets++
			logger.Info("Trial reset", "checkID", check.ID, "secondsRemaining", check.SecondsAfterReset)
		default:
			logger.Info("Time remaining", "checkID", check.ID, "secondsRemaining", check.SecondsRemaining)
		}

		if input.Iterations > 0 && input.Completed >= input.Iterations {
			logger.Info("Trial reset workflow completed", "checks", input.Completed)
			return totals(input), nil
		}

		if err := workflow.Sleep(ctx, interval); err != nil {
			return totals(input), err
		}

		if checks >= input.ContinueAsNewAfter {
			return totals(input), workflow.NewContinueAsNewError(ctx, TrialResetWorkflow, input)
		}
	}
}

func totals(input models.ResetWorkflowInput) models.ResetWorkflowResult {
	return models.ResetWorkflowResult{
		Checks: input.Completed,
		Resets: input.Resets,
		Failed: input.Failed,
	}
}
