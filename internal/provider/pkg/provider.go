// Package pkg installs OS packages through apt.
package pkg

import (
	"github.com/felixgeelhaar/hostprep/internal/domain/step"
	"github.com/felixgeelhaar/hostprep/internal/ports"
	"github.com/felixgeelhaar/hostprep/internal/provider"
)

// Provider compiles the packages section into installation steps.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a new pkg Provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "pkg"
}

// Compile transforms package declarations into executable steps.
func (p *Provider) Compile(ctx provider.CompileContext) ([]step.Step, error) {
	pkgs := ctx.Manifest().Packages
	steps := make([]step.Step, 0, len(pkgs))

	for _, pkg := range pkgs {
		install, err := NewInstallStep(pkg, p.runner)
		if err != nil {
			return nil, err
		}
		steps = append(steps, install)
	}

	return steps, nil
}

// Ensure Provider implements provider.Provider.
var _ provider.Provider = (*Provider)(nil)
