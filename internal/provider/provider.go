// Package provider compiles manifest sections into executable steps.
// Each provider handles one kind of host resource (packages, volumes,
// sshd configuration, remote scripts).
package provider

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/domain/credential"
	"github.com/felixgeelhaar/hostprep/internal/domain/manifest"
	"github.com/felixgeelhaar/hostprep/internal/domain/step"
)

// Provider compiles a section of the manifest into executable steps.
type Provider interface {
	// Name returns the provider's identifier (e.g., "pkg", "disk").
	Name() string

	// Compile transforms manifest data into a list of steps.
	// Cross-provider dependencies are expressed through Step.DependsOn().
	Compile(ctx CompileContext) ([]step.Step, error)
}

// CompileContext provides manifest data and shared collaborators to
// providers during compilation.
type CompileContext struct {
	manifest      *manifest.Manifest
	cred          credential.Credential
	scriptTimeout time.Duration
}

// NewCompileContext creates a CompileContext for the given manifest.
func NewCompileContext(m *manifest.Manifest) CompileContext {
	return CompileContext{
		manifest:      m,
		scriptTimeout: m.ScriptTimeout(),
	}
}

// Manifest returns the loaded manifest.
func (c CompileContext) Manifest() *manifest.Manifest {
	return c.manifest
}

// Credential returns the provisioning token. Borrowed: providers attach
// it to steps that need it but never persist or rotate it.
func (c CompileContext) Credential() credential.Credential {
	return c.cred
}

// WithCredential returns a new CompileContext with the credential set.
func (c CompileContext) WithCredential(cred credential.Credential) CompileContext {
	c.cred = cred
	return c
}

// ScriptTimeout returns the run-wide script timeout.
func (c CompileContext) ScriptTimeout() time.Duration {
	return c.scriptTimeout
}

// WithScriptTimeout returns a new CompileContext with the timeout set.
// A zero duration keeps the manifest's value.
func (c CompileContext) WithScriptTimeout(d time.Duration) CompileContext {
	if d > 0 {
		c.scriptTimeout = d
	}
	return c
}

// Build runs every provider and registers the resulting steps, in
// provider order then step order, so re-runs resolve the same execution
// order. Registration errors (duplicates) and graph defects surface here,
// before any step runs.
func Build(registry *step.Registry, providers []Provider, ctx CompileContext) error {
	for _, p := range providers {
		steps, err := p.Compile(ctx)
		if err != nil {
			return fmt.Errorf("provider %q: %w", p.Name(), err)
		}

		for _, s := range steps {
			if err := registry.Register(s); err != nil {
				return fmt.Errorf("provider %q, step %q: %w", p.Name(), s.ID().String(), err)
			}
		}
	}

	if err := registry.Validate(); err != nil {
		return err
	}

	// Surfaces cycles now rather than at run time.
	if _, err := registry.ResolveOrder(); err != nil {
		return err
	}

	return nil
}
