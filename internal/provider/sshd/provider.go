// Package sshd enforces sshd_config directives and reloads the daemon
// when they change.
package sshd

import (
	"github.com/felixgeelhaar/hostprep/internal/domain/step"
	"github.com/felixgeelhaar/hostprep/internal/ports"
	"github.com/felixgeelhaar/hostprep/internal/provider"
)

// DefaultConfigPath is the sshd configuration file edited by this provider.
const DefaultConfigPath = "/etc/ssh/sshd_config"

// DefaultService is the systemd unit reloaded after configuration changes.
const DefaultService = "ssh"

// Provider compiles the ssh section into configuration steps.
type Provider struct {
	fs     ports.FileSystem
	runner ports.CommandRunner
}

// NewProvider creates a new sshd Provider.
func NewProvider(fs ports.FileSystem, runner ports.CommandRunner) *Provider {
	return &Provider{fs: fs, runner: runner}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "sshd"
}

// Compile transforms sshd directives into a config edit step and a
// dependent reload step.
func (p *Provider) Compile(ctx provider.CompileContext) ([]step.Step, error) {
	cfg := ctx.Manifest().SSH
	if len(cfg.Directives) == 0 {
		return nil, nil
	}

	path := cfg.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}
	service := cfg.ReloadService
	if service == "" {
		service = DefaultService
	}

	config := NewConfigStep(path, cfg.Directives, p.fs)
	reload := NewReloadStep(service, path, cfg.Directives, config.ID(), p.fs, p.runner)

	return []step.Step{config, reload}, nil
}

// Ensure Provider implements provider.Provider.
var _ provider.Provider = (*Provider)(nil)
