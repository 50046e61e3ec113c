package execution

import (
	"context"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/domain/step"
)

// Runner executes the steps of a Plan against the host, one at a time,
// in dependency order. A failed step does not abort the run: independent
// steps still execute, but steps that depend on a failed step are skipped
// as blocked and never attempted.
type Runner struct {
	dryRun bool
}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// WithDryRun returns a Runner that simulates execution without applying.
func (r *Runner) WithDryRun(dryRun bool) *Runner {
	return &Runner{dryRun: dryRun}
}

// Run executes all steps in the plan in order and returns the Report.
// Cancellation stops the run before the next step; results recorded so
// far are kept in the report.
func (r *Runner) Run(ctx context.Context, plan *Plan) Report {
	report := NewReport()
	failed := make(map[string]bool)

	runCtx := step.NewRunContext(ctx).WithDryRun(r.dryRun)

	for _, entry := range plan.Entries() {
		select {
		case <-ctx.Done():
			report.MarkInterrupted()
			return report.Finish()
		default:
		}

		result := r.runEntry(entry, runCtx, failed).
			WithBestEffort(step.IsBestEffort(entry.Step()))
		report.Append(result)

		// Best-effort failures are recorded but never block dependents.
		// A blocked step never ran, so it blocks its own dependents too.
		if result.Failed() && !step.IsBestEffort(entry.Step()) {
			failed[entry.Step().ID().String()] = true
		}
		if result.Blocked() {
			failed[entry.Step().ID().String()] = true
		}
	}

	return report.Finish()
}

// runEntry executes a single plan entry.
func (r *Runner) runEntry(entry PlanEntry, ctx step.RunContext, failed map[string]bool) StepResult {
	s := entry.Step()
	stepID := s.ID()

	// Any failed dependency blocks this step outright.
	for _, depID := range s.DependsOn() {
		if failed[depID.String()] {
			return NewStepResult(stepID, OutcomeSkipped, nil).
				WithSkipReason(ReasonBlockedByDependency)
		}
	}

	// Precondition already satisfied: the idempotence guard.
	if entry.Status() == step.StatusSatisfied {
		return NewStepResult(stepID, OutcomeSkipped, nil).
			WithSkipReason(ReasonAlreadySatisfied)
	}

	if ctx.DryRun() {
		return NewStepResult(stepID, OutcomeSkipped, nil)
	}

	start := time.Now()
	err := s.Apply(ctx)
	duration := time.Since(start)

	if err != nil {
		return NewStepResult(stepID, OutcomeFailed, err).WithDuration(duration)
	}

	return NewStepResult(stepID, OutcomeSucceeded, nil).WithDuration(duration)
}
