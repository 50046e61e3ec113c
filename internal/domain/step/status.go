package step

// CheckStatus is the result of evaluating a step's precondition.
type CheckStatus string

const (
	// StatusSatisfied indicates the step's effect is already present.
	StatusSatisfied CheckStatus = "satisfied"
	// StatusNeedsApply indicates the step must run.
	StatusNeedsApply CheckStatus = "needs-apply"
	// StatusUnknown indicates the precondition could not be evaluated.
	StatusUnknown CheckStatus = "unknown"
)

// String returns the string representation of the status.
func (s CheckStatus) String() string {
	return string(s)
}

// NeedsAction returns true if the step requires execution or attention.
func (s CheckStatus) NeedsAction() bool {
	return s == StatusNeedsApply || s == StatusUnknown
}
