// Package step defines the idempotent unit of host provisioning and the
// registry that orders units by their declared dependencies.
package step

// Step represents a named, idempotent unit of host configuration.
// Each step can check whether its effect is already present and apply it
// when it is not.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() StepID

	// DependsOn returns the IDs of steps that must complete before this one.
	DependsOn() []StepID

	// Check evaluates the step's precondition against the host.
	// Returns StatusSatisfied if the effect is already present,
	// StatusNeedsApply if the step must run.
	Check(ctx RunContext) (CheckStatus, error)

	// Apply executes the step's changes.
	// This should be idempotent - running multiple times produces the
	// same host state.
	Apply(ctx RunContext) error

	// Explain returns human-readable context for this step.
	Explain() Explanation
}

// BestEffortStep marks a step whose failure is tolerated: it is still
// recorded as failed with its error, but it does not block dependents and
// does not fail the overall run. Used for operations like volume growth
// where "nothing to grow" and "cannot grow" are indistinguishable.
type BestEffortStep interface {
	Step

	// BestEffort returns true if failures of this step are tolerated.
	BestEffort() bool
}

// IsBestEffort checks if a step opts into tolerated-failure semantics.
func IsBestEffort(s Step) bool {
	b, ok := s.(BestEffortStep)
	return ok && b.BestEffort()
}
