// Package execution handles step orchestration and runtime execution.
package execution

import (
	"time"

	"github.com/felixgeelhaar/hostprep/internal/domain/step"
)

// Outcome is the final disposition of a step within one run.
type Outcome string

const (
	// OutcomeSucceeded indicates the step applied its changes.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeSkipped indicates the step was never applied.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed indicates the step's apply returned an error.
	OutcomeFailed Outcome = "failed"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// SkipReason explains why a step was skipped.
type SkipReason string

const (
	// ReasonAlreadySatisfied indicates the precondition held: the step's
	// effect was already present on the host.
	ReasonAlreadySatisfied SkipReason = "already-satisfied"
	// ReasonBlockedByDependency indicates a prerequisite step failed, so
	// this step was never attempted.
	ReasonBlockedByDependency SkipReason = "blocked-by-dependency"
)

// StepResult captures the outcome of executing a single step.
// Results are immutable once created.
type StepResult struct {
	stepID     step.StepID
	outcome    Outcome
	skipReason SkipReason
	err        error
	duration   time.Duration
	timestamp  time.Time
	bestEffort bool
}

// NewStepResult creates a new StepResult stamped with the current time.
func NewStepResult(stepID step.StepID, outcome Outcome, err error) StepResult {
	return StepResult{
		stepID:    stepID,
		outcome:   outcome,
		err:       err,
		timestamp: time.Now(),
	}
}

// StepID returns the ID of the step that was executed.
func (r StepResult) StepID() step.StepID {
	return r.stepID
}

// Outcome returns the final disposition of the step.
func (r StepResult) Outcome() Outcome {
	return r.outcome
}

// SkipReason returns why the step was skipped, if it was.
func (r StepResult) SkipReason() SkipReason {
	return r.skipReason
}

// Error returns any error that occurred during execution.
func (r StepResult) Error() error {
	return r.err
}

// Duration returns how long the step took to execute.
func (r StepResult) Duration() time.Duration {
	return r.duration
}

// Timestamp returns when the result was recorded.
func (r StepResult) Timestamp() time.Time {
	return r.timestamp
}

// Succeeded returns true if the step applied its changes.
func (r StepResult) Succeeded() bool {
	return r.outcome == OutcomeSucceeded
}

// Skipped returns true if the step was skipped.
func (r StepResult) Skipped() bool {
	return r.outcome == OutcomeSkipped
}

// Failed returns true if the step failed.
func (r StepResult) Failed() bool {
	return r.outcome == OutcomeFailed
}

// Blocked returns true if the step was skipped because a prerequisite failed.
func (r StepResult) Blocked() bool {
	return r.outcome == OutcomeSkipped && r.skipReason == ReasonBlockedByDependency
}

// BestEffort returns true if the step's failure is tolerated.
func (r StepResult) BestEffort() bool {
	return r.bestEffort
}

// WithBestEffort returns a new StepResult with the tolerated-failure flag set.
func (r StepResult) WithBestEffort(b bool) StepResult {
	r.bestEffort = b
	return r
}

// WithSkipReason returns a new StepResult with the skip reason set.
func (r StepResult) WithSkipReason(reason SkipReason) StepResult {
	r.skipReason = reason
	return r
}

// WithDuration returns a new StepResult with duration set.
func (r StepResult) WithDuration(d time.Duration) StepResult {
	r.duration = d
	return r
}
