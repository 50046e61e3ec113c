package disk

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/hostprep/internal/domain/manifest"
	"github.com/felixgeelhaar/hostprep/internal/domain/step"
	"github.com/felixgeelhaar/hostprep/internal/ports"
	"github.com/felixgeelhaar/hostprep/internal/validation"
)

// One LVM extent; free space below this cannot be allocated.
const minFreeBytes = 4 * 1024 * 1024

// ExtendStep grows a logical volume to use the group's free capacity.
type ExtendStep struct {
	vol    manifest.Volume
	id     step.StepID
	runner ports.CommandRunner
}

// NewExtendStep creates a new ExtendStep. Volume names become privileged
// command arguments, so invalid names are rejected up front.
func NewExtendStep(vol manifest.Volume, runner ports.CommandRunner) (*ExtendStep, error) {
	if err := validateVolume(vol); err != nil {
		return nil, err
	}
	id, err := step.NewStepID("disk:lvextend:" + sanitizeDevice(vol.LogicalVolume))
	if err != nil {
		return nil, fmt.Errorf("volume %q: %w", vol.LogicalVolume, err)
	}
	return &ExtendStep{
		vol:    vol,
		id:     id,
		runner: runner,
	}, nil
}

// ID returns the step identifier.
func (s *ExtendStep) ID() step.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *ExtendStep) DependsOn() []step.StepID {
	return nil
}

// BestEffort marks extend failures as tolerated.
func (s *ExtendStep) BestEffort() bool {
	return true
}

// Check reports satisfied once the volume group has no allocatable space
// left.
func (s *ExtendStep) Check(ctx step.RunContext) (step.CheckStatus, error) {
	return checkFreeSpace(ctx.Context(), s.runner, s.vol.VolumeGroup)
}

// Apply extends the logical volume over all free extents.
func (s *ExtendStep) Apply(ctx step.RunContext) error {
	if err := validation.ValidateDeviceName(s.vol.LogicalVolume); err != nil {
		return fmt.Errorf("invalid logical volume: %w", err)
	}

	result, err := s.runner.Run(ctx.Context(), "lvextend", "-l", "+100%FREE", s.vol.LogicalVolume)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("lvextend %s failed: %s", s.vol.LogicalVolume, result.Stderr)
	}
	return nil
}

// Explain provides a human-readable explanation.
func (s *ExtendStep) Explain() step.Explanation {
	return step.NewExplanation(
		"Grow logical volume",
		fmt.Sprintf("Extends %s over the free extents of volume group %s.", s.vol.LogicalVolume, s.vol.VolumeGroup),
	)
}

// ResizeStep grows the filesystem to match its extended volume.
type ResizeStep struct {
	vol    manifest.Volume
	id     step.StepID
	deps   []step.StepID
	runner ports.CommandRunner
}

// NewResizeStep creates a ResizeStep that runs after the given extend step.
func NewResizeStep(vol manifest.Volume, extendID step.StepID, runner ports.CommandRunner) (*ResizeStep, error) {
	if err := validateVolume(vol); err != nil {
		return nil, err
	}
	id, err := step.NewStepID("disk:resize2fs:" + sanitizeDevice(vol.LogicalVolume))
	if err != nil {
		return nil, fmt.Errorf("volume %q: %w", vol.LogicalVolume, err)
	}
	return &ResizeStep{
		vol:    vol,
		id:     id,
		deps:   []step.StepID{extendID},
		runner: runner,
	}, nil
}

// ID returns the step identifier.
func (s *ResizeStep) ID() step.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *ResizeStep) DependsOn() []step.StepID {
	return s.deps
}

// BestEffort marks resize failures as tolerated.
func (s *ResizeStep) BestEffort() bool {
	return true
}

// Check mirrors the extend step's precondition: if the group had no free
// space, nothing was extended and the filesystem is already current.
func (s *ResizeStep) Check(ctx step.RunContext) (step.CheckStatus, error) {
	return checkFreeSpace(ctx.Context(), s.runner, s.vol.VolumeGroup)
}

// Apply grows the filesystem to the volume's new size.
func (s *ResizeStep) Apply(ctx step.RunContext) error {
	if err := validation.ValidateDeviceName(s.vol.LogicalVolume); err != nil {
		return fmt.Errorf("invalid logical volume: %w", err)
	}

	result, err := s.runner.Run(ctx.Context(), "resize2fs", s.vol.LogicalVolume)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("resize2fs %s failed: %s", s.vol.LogicalVolume, result.Stderr)
	}
	return nil
}

// Explain provides a human-readable explanation.
func (s *ResizeStep) Explain() step.Explanation {
	return step.NewExplanation(
		"Grow filesystem",
		fmt.Sprintf("Resizes the filesystem on %s to fill the extended volume.", s.vol.LogicalVolume),
	)
}

// checkFreeSpace queries the volume group's free bytes.
func checkFreeSpace(ctx context.Context, runner ports.CommandRunner, group string) (step.CheckStatus, error) {
	if err := validation.ValidateDeviceName(group); err != nil {
		return step.StatusUnknown, fmt.Errorf("invalid volume group: %w", err)
	}

	result, err := runner.Run(ctx, "vgs", "--noheadings", "--nosuffix", "--units", "b", "-o", "vg_free", group)
	if err != nil {
		return step.StatusUnknown, err
	}
	if !result.Success() {
		return step.StatusUnknown, fmt.Errorf("vgs %s failed: %s", group, result.Stderr)
	}

	free, err := strconv.ParseFloat(strings.TrimSpace(result.Stdout), 64)
	if err != nil {
		return step.StatusUnknown, fmt.Errorf("parse vgs output %q: %w", result.Stdout, err)
	}

	if free < minFreeBytes {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// validateVolume rejects volume declarations whose names could smuggle
// arguments into lvextend or resize2fs.
func validateVolume(vol manifest.Volume) error {
	if err := validation.ValidateDeviceName(vol.LogicalVolume); err != nil {
		return fmt.Errorf("logical volume %q: %w", vol.LogicalVolume, err)
	}
	if err := validation.ValidateDeviceName(vol.VolumeGroup); err != nil {
		return fmt.Errorf("volume group %q: %w", vol.VolumeGroup, err)
	}
	return nil
}

// sanitizeDevice turns a device path into a step ID segment.
func sanitizeDevice(device string) string {
	return strings.ReplaceAll(strings.TrimPrefix(device, "/"), "/", "-")
}

// Ensure both steps implement the tolerated-failure contract.
var (
	_ step.BestEffortStep = (*ExtendStep)(nil)
	_ step.BestEffortStep = (*ResizeStep)(nil)
)
