package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/hostprep/internal/domain/step"
)

type configurableStep struct {
	id         step.StepID
	deps       []step.StepID
	bestEffort bool
	checkFn    func(step.RunContext) (step.CheckStatus, error)
	applyFn    func(step.RunContext) error
}

func newConfigurableStep(id string, deps ...string) *configurableStep {
	depIDs := make([]step.StepID, len(deps))
	for i, d := range deps {
		depIDs[i] = step.MustNewStepID(d)
	}
	return &configurableStep{
		id:   step.MustNewStepID(id),
		deps: depIDs,
		checkFn: func(_ step.RunContext) (step.CheckStatus, error) {
			return step.StatusNeedsApply, nil
		},
		applyFn: func(_ step.RunContext) error { return nil },
	}
}

func (s *configurableStep) ID() step.StepID          { return s.id }
func (s *configurableStep) DependsOn() []step.StepID { return s.deps }
func (s *configurableStep) Check(ctx step.RunContext) (step.CheckStatus, error) {
	return s.checkFn(ctx)
}
func (s *configurableStep) Apply(ctx step.RunContext) error { return s.applyFn(ctx) }
func (s *configurableStep) Explain() step.Explanation {
	return step.NewExplanation("test step", "")
}
func (s *configurableStep) BestEffort() bool { return s.bestEffort }

func planOf(entries ...PlanEntry) *Plan {
	plan := NewPlan()
	for _, e := range entries {
		plan.Add(e)
	}
	return plan
}

func TestRunner_EmptyPlan(t *testing.T) {
	report := NewRunner().Run(context.Background(), NewPlan())

	if len(report.Results()) != 0 {
		t.Errorf("results len = %d, want 0", len(report.Results()))
	}
	if !report.Success() {
		t.Error("empty run should be a success")
	}
}

func TestRunner_AppliesNeededSteps(t *testing.T) {
	applied := []string{}
	a := newConfigurableStep("pkg:install:curl")
	a.applyFn = func(_ step.RunContext) error {
		applied = append(applied, "a")
		return nil
	}
	b := newConfigurableStep("script:run:deploy", "pkg:install:curl")
	b.applyFn = func(_ step.RunContext) error {
		applied = append(applied, "b")
		return nil
	}

	report := NewRunner().Run(context.Background(), planOf(
		NewPlanEntry(a, step.StatusNeedsApply),
		NewPlanEntry(b, step.StatusNeedsApply),
	))

	if len(applied) != 2 || applied[0] != "a" || applied[1] != "b" {
		t.Errorf("applied = %v, want [a b]", applied)
	}
	if !report.Success() {
		t.Error("run should succeed")
	}
	if report.SucceededCount() != 2 {
		t.Errorf("SucceededCount() = %d, want 2", report.SucceededCount())
	}
}

func TestRunner_SecondRunAllSkipped(t *testing.T) {
	// Scenario: after a successful run every precondition holds, so a
	// second run must apply nothing.
	a := newConfigurableStep("pkg:install:curl")
	b := newConfigurableStep("script:run:deploy", "pkg:install:curl")
	applied := false
	a.applyFn = func(_ step.RunContext) error { applied = true; return nil }
	b.applyFn = func(_ step.RunContext) error { applied = true; return nil }

	report := NewRunner().Run(context.Background(), planOf(
		NewPlanEntry(a, step.StatusSatisfied),
		NewPlanEntry(b, step.StatusSatisfied),
	))

	if applied {
		t.Error("satisfied steps must not be applied")
	}
	if report.SkippedCount() != 2 {
		t.Errorf("SkippedCount() = %d, want 2", report.SkippedCount())
	}
	for _, res := range report.Results() {
		if res.SkipReason() != ReasonAlreadySatisfied {
			t.Errorf("SkipReason() = %q, want %q", res.SkipReason(), ReasonAlreadySatisfied)
		}
	}
	if !report.Success() {
		t.Error("all-skipped run should succeed")
	}
}

func TestRunner_FailureBlocksDependents(t *testing.T) {
	a := newConfigurableStep("pkg:install:curl")
	a.applyFn = func(_ step.RunContext) error {
		return errors.New("apt-get exited with code 100")
	}
	b := newConfigurableStep("script:run:deploy", "pkg:install:curl")
	bApplied := false
	b.applyFn = func(_ step.RunContext) error { bApplied = true; return nil }
	c := newConfigurableStep("sshd:config")
	cApplied := false
	c.applyFn = func(_ step.RunContext) error { cApplied = true; return nil }

	report := NewRunner().Run(context.Background(), planOf(
		NewPlanEntry(a, step.StatusNeedsApply),
		NewPlanEntry(b, step.StatusNeedsApply),
		NewPlanEntry(c, step.StatusNeedsApply),
	))

	if bApplied {
		t.Error("dependent of failed step must never be attempted")
	}
	if !cApplied {
		t.Error("step unrelated to the failure must still run")
	}

	results := report.Results()
	if !results[0].Failed() {
		t.Error("first result should be failed")
	}
	if !results[1].Blocked() {
		t.Error("second result should be blocked")
	}
	if results[1].SkipReason() != ReasonBlockedByDependency {
		t.Errorf("SkipReason() = %q, want %q", results[1].SkipReason(), ReasonBlockedByDependency)
	}
	if report.Success() {
		t.Error("run with a failed step must not succeed")
	}
	if report.BlockedCount() != 1 {
		t.Errorf("BlockedCount() = %d, want 1", report.BlockedCount())
	}
}

func TestRunner_TransitiveBlock(t *testing.T) {
	a := newConfigurableStep("a")
	a.applyFn = func(_ step.RunContext) error { return errors.New("boom") }
	b := newConfigurableStep("b", "a")
	c := newConfigurableStep("c", "b")
	cApplied := false
	c.applyFn = func(_ step.RunContext) error { cApplied = true; return nil }

	report := NewRunner().Run(context.Background(), planOf(
		NewPlanEntry(a, step.StatusNeedsApply),
		NewPlanEntry(b, step.StatusNeedsApply),
		NewPlanEntry(c, step.StatusNeedsApply),
	))

	if report.BlockedCount() != 2 {
		t.Errorf("BlockedCount() = %d, want 2 (block must propagate)", report.BlockedCount())
	}
	if cApplied {
		t.Error("c was applied even though its prerequisite b never ran")
	}
	for _, res := range report.Results() {
		if res.StepID().String() == "c" && !res.Blocked() {
			t.Errorf("c outcome = %v, want blocked skip", res.Outcome())
		}
	}
}

func TestRunner_BestEffortFailureDoesNotBlock(t *testing.T) {
	grow := newConfigurableStep("disk:lvextend:data")
	grow.bestEffort = true
	grow.applyFn = func(_ step.RunContext) error {
		return errors.New("insufficient free extents")
	}
	resize := newConfigurableStep("disk:resize2fs:data", "disk:lvextend:data")
	resized := false
	resize.applyFn = func(_ step.RunContext) error { resized = true; return nil }

	report := NewRunner().Run(context.Background(), planOf(
		NewPlanEntry(grow, step.StatusNeedsApply),
		NewPlanEntry(resize, step.StatusNeedsApply),
	))

	if !resized {
		t.Error("dependent of best-effort failure must still run")
	}
	if !report.Success() {
		t.Error("best-effort failure must not fail the run")
	}
	if report.FailedCount() != 1 {
		t.Errorf("FailedCount() = %d, want 1 (failure is still recorded)", report.FailedCount())
	}
	if !report.Results()[0].BestEffort() {
		t.Error("result should carry the best-effort flag")
	}
}

func TestRunner_DryRun(t *testing.T) {
	a := newConfigurableStep("pkg:install:curl")
	applied := false
	a.applyFn = func(_ step.RunContext) error { applied = true; return nil }

	report := NewRunner().WithDryRun(true).Run(context.Background(), planOf(
		NewPlanEntry(a, step.StatusNeedsApply),
	))

	if applied {
		t.Error("dry run must not apply")
	}
	if report.SkippedCount() != 1 {
		t.Errorf("SkippedCount() = %d, want 1", report.SkippedCount())
	}
}

func TestRunner_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	a := newConfigurableStep("a")
	a.applyFn = func(_ step.RunContext) error {
		cancel()
		return nil
	}
	b := newConfigurableStep("b")
	bApplied := false
	b.applyFn = func(_ step.RunContext) error { bApplied = true; return nil }

	report := NewRunner().Run(ctx, planOf(
		NewPlanEntry(a, step.StatusNeedsApply),
		NewPlanEntry(b, step.StatusNeedsApply),
	))

	if bApplied {
		t.Error("no step should start after cancellation")
	}
	if len(report.Results()) != 1 {
		t.Errorf("results len = %d, want 1 (completed results are kept)", len(report.Results()))
	}
	if !report.Interrupted() {
		t.Error("report should be marked interrupted")
	}
	if report.Success() {
		t.Error("an interrupted run must not count as a success")
	}
}

func TestRunner_ReportHasRunID(t *testing.T) {
	report := NewRunner().Run(context.Background(), NewPlan())
	if report.RunID() == "" {
		t.Error("report should carry a run ID")
	}
	if report.FinishedAt().IsZero() {
		t.Error("finished report should have a completion time")
	}
}
