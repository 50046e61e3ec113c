package execution

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/hostprep/internal/domain/step"
)

// Planner generates a Plan from a step registry.
// It resolves dependency order and evaluates each step's precondition.
type Planner struct{}

// NewPlanner creates a new Planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan generates a Plan by checking each step's precondition.
// Steps appear in resolved dependency order.
func (p *Planner) Plan(ctx context.Context, registry *step.Registry) (*Plan, error) {
	if err := registry.Validate(); err != nil {
		return nil, err
	}

	steps, err := registry.ResolveOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve step order: %w", err)
	}

	plan := NewPlan()
	runCtx := step.NewRunContext(ctx)

	for _, s := range steps {
		status, err := s.Check(runCtx)
		if err != nil {
			// A failed precondition check is not fatal to planning; the
			// step is marked unknown and the runner attempts it.
			status = step.StatusUnknown
		}
		plan.Add(NewPlanEntry(s, status))
	}

	return plan, nil
}
