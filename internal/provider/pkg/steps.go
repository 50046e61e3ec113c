package pkg

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/hostprep/internal/domain/manifest"
	"github.com/felixgeelhaar/hostprep/internal/domain/step"
	"github.com/felixgeelhaar/hostprep/internal/ports"
	"github.com/felixgeelhaar/hostprep/internal/validation"
)

// InstallStep installs one apt package.
type InstallStep struct {
	pkg    manifest.Package
	id     step.StepID
	runner ports.CommandRunner
}

// NewInstallStep creates a new InstallStep. The package name becomes a
// privileged command argument and a step ID segment, so an invalid name
// is rejected here rather than surfacing mid-run.
func NewInstallStep(pkg manifest.Package, runner ports.CommandRunner) (*InstallStep, error) {
	if err := validation.ValidatePackageName(pkg.Name); err != nil {
		return nil, fmt.Errorf("package %q: %w", pkg.Name, err)
	}
	id, err := step.NewStepID("pkg:install:" + pkg.Name)
	if err != nil {
		return nil, fmt.Errorf("package %q: %w", pkg.Name, err)
	}
	return &InstallStep{
		pkg:    pkg,
		id:     id,
		runner: runner,
	}, nil
}

// ID returns the step identifier.
func (s *InstallStep) ID() step.StepID {
	return s.id
}

// DependsOn returns the step dependencies.
func (s *InstallStep) DependsOn() []step.StepID {
	return nil
}

// Check determines if the package is already installed, and recent
// enough when a minimum version is declared.
func (s *InstallStep) Check(ctx step.RunContext) (step.CheckStatus, error) {
	result, err := s.runner.Run(ctx.Context(), "dpkg-query", "-W", "-f=${Package}\t${Version}\t${db:Status-Status}\n", s.pkg.Name)
	if err != nil {
		return step.StatusUnknown, err
	}

	// dpkg-query exits 1 when the package is unknown.
	if !result.Success() {
		return step.StatusNeedsApply, nil
	}

	fields := strings.Split(strings.TrimSpace(result.Stdout), "\t")
	if len(fields) < 3 || fields[2] != "installed" {
		return step.StatusNeedsApply, nil
	}

	if s.pkg.MinVersion != "" && !versionAtLeast(fields[1], s.pkg.MinVersion) {
		return step.StatusNeedsApply, nil
	}

	return step.StatusSatisfied, nil
}

// Apply installs the package.
func (s *InstallStep) Apply(ctx step.RunContext) error {
	if err := validation.ValidatePackageName(s.pkg.Name); err != nil {
		return fmt.Errorf("invalid package name: %w", err)
	}

	result, err := s.runner.Run(ctx.Context(), "apt-get", "install", "-y", s.pkg.Name)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("apt-get install %s failed: %s", s.pkg.Name, result.Stderr)
	}
	return nil
}

// Explain provides a human-readable explanation.
func (s *InstallStep) Explain() step.Explanation {
	detail := fmt.Sprintf("Installs the %s package with apt.", s.pkg.Name)
	if s.pkg.MinVersion != "" {
		detail = fmt.Sprintf("Installs the %s package with apt, requiring at least version %s.", s.pkg.Name, s.pkg.MinVersion)
	}
	return step.NewExplanation("Install package", detail)
}

// versionAtLeast compares a dpkg version against a required minimum.
// Distro version strings are only loosely semver; when either side fails
// to canonicalize the installed package is accepted as-is rather than
// reinstalled on every run.
func versionAtLeast(installed, minimum string) bool {
	iv := canonicalVersion(installed)
	mv := canonicalVersion(minimum)
	if !semver.IsValid(iv) || !semver.IsValid(mv) {
		return true
	}
	return semver.Compare(iv, mv) >= 0
}

// canonicalVersion strips the dpkg epoch and revision, leaving the
// upstream version for semver comparison.
func canonicalVersion(v string) string {
	if i := strings.Index(v, ":"); i >= 0 {
		v = v[i+1:]
	}
	if i := strings.Index(v, "-"); i >= 0 {
		v = v[:i]
	}
	return "v" + v
}

// Ensure InstallStep implements step.Step.
var _ step.Step = (*InstallStep)(nil)
