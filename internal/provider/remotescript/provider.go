// Package remotescript compiles manifest script entries into remote
// script actions.
package remotescript

import (
	"fmt"

	"github.com/felixgeelhaar/hostprep/internal/domain/script"
	"github.com/felixgeelhaar/hostprep/internal/domain/step"
	"github.com/felixgeelhaar/hostprep/internal/ports"
	"github.com/felixgeelhaar/hostprep/internal/provider"
)

// Provider compiles the scripts section into executable steps.
type Provider struct {
	fetcher ports.ScriptFetcher
	exec    ports.ScriptExecutor
	fs      ports.FileSystem
}

// NewProvider creates a new remotescript Provider.
func NewProvider(fetcher ports.ScriptFetcher, exec ports.ScriptExecutor, fs ports.FileSystem) *Provider {
	return &Provider{fetcher: fetcher, exec: exec, fs: fs}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "script"
}

// Compile transforms script declarations into remote script actions.
// Each action borrows the run's credential for its download.
func (p *Provider) Compile(ctx provider.CompileContext) ([]step.Step, error) {
	scripts := ctx.Manifest().Scripts
	steps := make([]step.Step, 0, len(scripts))

	for _, sc := range scripts {
		deps := make([]step.StepID, 0, len(sc.DependsOn))
		for _, dep := range sc.DependsOn {
			id, err := step.NewStepID(dep)
			if err != nil {
				return nil, fmt.Errorf("script %q: dependency %q: %w", sc.Name, dep, err)
			}
			deps = append(deps, id)
		}

		cfg := script.Config{
			Name:     sc.Name,
			URL:      sc.URL,
			Checksum: sc.Checksum,
			Creates:  sc.Creates,
			Deps:     deps,
			Timeout:  sc.EffectiveTimeout(ctx.ScriptTimeout()),
		}
		steps = append(steps, script.NewAction(cfg, ctx.Credential(), p.fetcher, p.exec, p.fs))
	}

	return steps, nil
}

// Ensure Provider implements provider.Provider.
var _ provider.Provider = (*Provider)(nil)
