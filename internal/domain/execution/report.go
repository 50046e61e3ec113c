package execution

import (
	"time"

	"github.com/google/uuid"
)

// Report is the append-only result log of one run.
type Report struct {
	runID       string
	startedAt   time.Time
	finishedAt  time.Time
	results     []StepResult
	interrupted bool
}

// NewReport creates an empty Report with a fresh run ID.
func NewReport() Report {
	return Report{
		runID:     uuid.NewString(),
		startedAt: time.Now(),
		results:   make([]StepResult, 0),
	}
}

// RunID returns the unique identifier of this run.
func (r Report) RunID() string {
	return r.runID
}

// StartedAt returns when the run began.
func (r Report) StartedAt() time.Time {
	return r.startedAt
}

// FinishedAt returns when the run completed.
func (r Report) FinishedAt() time.Time {
	return r.finishedAt
}

// Results returns all recorded step results in execution order.
func (r Report) Results() []StepResult {
	return r.results
}

// Append records a step result.
func (r *Report) Append(result StepResult) {
	r.results = append(r.results, result)
}

// MarkInterrupted records that the run stopped before attempting every
// step.
func (r *Report) MarkInterrupted() {
	r.interrupted = true
}

// Interrupted reports whether the run was cancelled mid-way.
func (r Report) Interrupted() bool {
	return r.interrupted
}

// Finish stamps the completion time and returns the report.
func (r Report) Finish() Report {
	r.finishedAt = time.Now()
	return r
}

// Success returns true iff every step was attempted and none failed.
// Best-effort steps are exempt: their failures are recorded but
// tolerated. An interrupted run is never a success.
func (r Report) Success() bool {
	if r.interrupted {
		return false
	}
	for _, res := range r.results {
		if res.Failed() && !res.BestEffort() {
			return false
		}
	}
	return true
}

// FailedCount returns the number of failed steps, tolerated ones included.
func (r Report) FailedCount() int {
	n := 0
	for _, res := range r.results {
		if res.Failed() {
			n++
		}
	}
	return n
}

// BlockedCount returns the number of steps skipped because a prerequisite
// failed.
func (r Report) BlockedCount() int {
	n := 0
	for _, res := range r.results {
		if res.Blocked() {
			n++
		}
	}
	return n
}

// SucceededCount returns the number of steps that applied changes.
func (r Report) SucceededCount() int {
	n := 0
	for _, res := range r.results {
		if res.Succeeded() {
			n++
		}
	}
	return n
}

// SkippedCount returns the number of skipped steps.
func (r Report) SkippedCount() int {
	n := 0
	for _, res := range r.results {
		if res.Skipped() {
			n++
		}
	}
	return n
}
