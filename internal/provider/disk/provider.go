// Package disk grows LVM logical volumes and their filesystems to use
// the volume group's remaining capacity. Both operations are tolerated
// failures: on hosts without LVM, or with nothing left to grow, the run
// continues.
package disk

import (
	"github.com/felixgeelhaar/hostprep/internal/domain/step"
	"github.com/felixgeelhaar/hostprep/internal/ports"
	"github.com/felixgeelhaar/hostprep/internal/provider"
)

// Provider compiles the disk section into volume growth steps.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a new disk Provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "disk"
}

// Compile transforms volume declarations into executable steps.
// Each volume yields an extend step and a dependent filesystem resize.
func (p *Provider) Compile(ctx provider.CompileContext) ([]step.Step, error) {
	volumes := ctx.Manifest().Disk.Volumes
	steps := make([]step.Step, 0, len(volumes)*2)

	for _, vol := range volumes {
		extend, err := NewExtendStep(vol, p.runner)
		if err != nil {
			return nil, err
		}
		resize, err := NewResizeStep(vol, extend.ID(), p.runner)
		if err != nil {
			return nil, err
		}
		steps = append(steps, extend, resize)
	}

	return steps, nil
}

// Ensure Provider implements provider.Provider.
var _ provider.Provider = (*Provider)(nil)
