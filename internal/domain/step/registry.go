package step

import (
	"errors"
	"fmt"
	"sort"
)

// Errors for Registry operations.
var (
	ErrDuplicateStep    = errors.New("step with this ID already exists")
	ErrCyclicDependency = errors.New("cyclic dependency detected")
	ErrMissingDep       = errors.New("step depends on nonexistent step")
)

// Registry is an ordered collection of steps with declared dependencies.
// It validates the dependency graph and resolves a deterministic
// execution order: dependencies strictly before dependents, ties among
// independent steps broken by registration order. Determinism matters
// because partial-failure resumption relies on re-runs attempting steps
// in the same order.
type Registry struct {
	steps      map[string]Step
	order      []string            // step IDs in registration order
	dependsOn  map[string][]string // step ID -> dependency IDs
	dependedBy map[string][]string // step ID -> dependent IDs
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		steps:      make(map[string]Step),
		dependsOn:  make(map[string][]string),
		dependedBy: make(map[string][]string),
	}
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}

// Register adds a step to the registry.
// Returns ErrDuplicateStep if a step with the same ID already exists.
func (r *Registry) Register(s Step) error {
	id := s.ID().String()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateStep, id)
	}

	r.steps[id] = s
	r.order = append(r.order, id)

	deps := s.DependsOn()
	depIDs := make([]string, len(deps))
	for i, dep := range deps {
		depID := dep.String()
		depIDs[i] = depID
		r.dependedBy[depID] = append(r.dependedBy[depID], id)
	}
	r.dependsOn[id] = depIDs

	return nil
}

// Get retrieves a step by ID.
func (r *Registry) Get(id StepID) (Step, bool) {
	s, ok := r.steps[id.String()]
	return s, ok
}

// Steps returns all steps in registration order.
func (r *Registry) Steps() []Step {
	steps := make([]Step, 0, len(r.order))
	for _, id := range r.order {
		steps = append(steps, r.steps[id])
	}
	return steps
}

// Validate checks that all declared dependencies exist.
func (r *Registry) Validate() error {
	for _, id := range r.order {
		for _, depID := range r.dependsOn[id] {
			if _, exists := r.steps[depID]; !exists {
				return fmt.Errorf("%w: step %q depends on %q", ErrMissingDep, id, depID)
			}
		}
	}
	return nil
}

// ResolveOrder returns steps in dependency order: every dependency of a
// step appears strictly before it. Ties among ready steps are broken by
// registration order, so the result is stable across runs.
// Returns ErrCyclicDependency if the graph contains a cycle.
func (r *Registry) ResolveOrder() ([]Step, error) {
	// Kahn's algorithm with a ready set ordered by registration index.
	index := make(map[string]int, len(r.order))
	for i, id := range r.order {
		index[id] = i
	}

	inDegree := make(map[string]int, len(r.steps))
	for id := range r.steps {
		inDegree[id] = 0
	}
	for id := range r.steps {
		for _, depID := range r.dependsOn[id] {
			if _, exists := r.steps[depID]; exists {
				inDegree[id]++
			}
		}
	}

	ready := make([]string, 0, len(r.steps))
	for _, id := range r.order {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]Step, 0, len(r.steps))

	for len(ready) > 0 {
		// Pop the earliest-registered ready step.
		id := ready[0]
		ready = ready[1:]

		sorted = append(sorted, r.steps[id])

		released := make([]string, 0)
		for _, dependentID := range r.dependedBy[id] {
			if _, exists := r.steps[dependentID]; !exists {
				continue
			}
			inDegree[dependentID]--
			if inDegree[dependentID] == 0 {
				released = append(released, dependentID)
			}
		}

		ready = append(ready, released...)
		sort.Slice(ready, func(a, b int) bool {
			return index[ready[a]] < index[ready[b]]
		})
	}

	if len(sorted) != len(r.steps) {
		return nil, fmt.Errorf("%w: %s", ErrCyclicDependency, r.describeCycle(inDegree))
	}

	return sorted, nil
}

// describeCycle names the steps left with unresolved dependencies.
func (r *Registry) describeCycle(inDegree map[string]int) string {
	remaining := make([]string, 0)
	for _, id := range r.order {
		if inDegree[id] > 0 {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		return "unresolvable dependency chain"
	}
	out := remaining[0]
	for _, id := range remaining[1:] {
		out += ", " + id
	}
	return out
}
