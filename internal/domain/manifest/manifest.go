// Package manifest defines the declarative registry file: the operator's
// description of what a provisioned host looks like.
package manifest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/validation"
)

// DefaultCredentialPath is where the provisioning token lives unless the
// manifest says otherwise.
const DefaultCredentialPath = "/etc/hostprep/token"

// DefaultScriptTimeout bounds remote script execution when the manifest
// and the CLI give no limit.
const DefaultScriptTimeout = 15 * time.Minute

// Manifest is the typed model of a registry file.
type Manifest struct {
	Credential CredentialConfig `yaml:"credential" toml:"credential"`
	Defaults   Defaults         `yaml:"defaults" toml:"defaults"`
	Packages   []Package        `yaml:"packages" toml:"packages"`
	Disk       DiskConfig       `yaml:"disk" toml:"disk"`
	SSH        SSHConfig        `yaml:"ssh" toml:"ssh"`
	Scripts    []Script         `yaml:"scripts" toml:"scripts"`
}

// CredentialConfig locates the stored provisioning token.
type CredentialConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Defaults holds run-wide settings.
type Defaults struct {
	// ScriptTimeout is a duration string ("10m", "300s") bounding each
	// remote script execution.
	ScriptTimeout string `yaml:"script_timeout" toml:"script_timeout"`
}

// Package declares an OS package that must be installed.
type Package struct {
	Name string `yaml:"name" toml:"name"`
	// MinVersion, when set, requires at least this version (semver
	// comparison, best effort for distro version strings).
	MinVersion string `yaml:"min_version" toml:"min_version"`
}

// DiskConfig declares logical volumes to grow to their group's capacity.
type DiskConfig struct {
	Volumes []Volume `yaml:"volumes" toml:"volumes"`
}

// Volume is one LVM logical volume plus the filesystem living on it.
type Volume struct {
	LogicalVolume string `yaml:"logical_volume" toml:"logical_volume"`
	VolumeGroup   string `yaml:"volume_group" toml:"volume_group"`
}

// SSHConfig declares sshd configuration directives to enforce.
type SSHConfig struct {
	ConfigPath    string            `yaml:"config_path" toml:"config_path"`
	Directives    map[string]string `yaml:"directives" toml:"directives"`
	ReloadService string            `yaml:"reload_service" toml:"reload_service"`
}

// Script declares a remote installer to fetch and run.
type Script struct {
	Name      string   `yaml:"name" toml:"name"`
	URL       string   `yaml:"url" toml:"url"`
	Checksum  string   `yaml:"checksum" toml:"checksum"`
	Creates   string   `yaml:"creates" toml:"creates"`
	Timeout   string   `yaml:"timeout" toml:"timeout"`
	DependsOn []string `yaml:"depends_on" toml:"depends_on"`
}

// scriptNamePattern keeps script names usable as step ID segments.
var scriptNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// checksumPattern matches a hex-encoded SHA-256 digest.
var checksumPattern = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)

// CredentialPath returns the configured token path or the default.
func (m *Manifest) CredentialPath() string {
	if m.Credential.Path != "" {
		return m.Credential.Path
	}
	return DefaultCredentialPath
}

// ScriptTimeout returns the run-wide script timeout.
func (m *Manifest) ScriptTimeout() time.Duration {
	if m.Defaults.ScriptTimeout == "" {
		return DefaultScriptTimeout
	}
	d, err := time.ParseDuration(m.Defaults.ScriptTimeout)
	if err != nil {
		return DefaultScriptTimeout
	}
	return d
}

// EffectiveTimeout returns the script's own timeout, falling back to the
// run-wide default.
func (s Script) EffectiveTimeout(fallback time.Duration) time.Duration {
	if s.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return fallback
	}
	return d
}

// Validate checks the manifest for defects that would only surface
// mid-run otherwise.
func (m *Manifest) Validate() error {
	if m.Defaults.ScriptTimeout != "" {
		if _, err := time.ParseDuration(m.Defaults.ScriptTimeout); err != nil {
			return fmt.Errorf("defaults.script_timeout: %w", err)
		}
	}

	for i, pkg := range m.Packages {
		if strings.TrimSpace(pkg.Name) == "" {
			return fmt.Errorf("packages[%d]: name is required", i)
		}
		if err := validation.ValidatePackageName(pkg.Name); err != nil {
			return fmt.Errorf("packages[%d]: %w", i, err)
		}
	}

	for i, vol := range m.Disk.Volumes {
		if strings.TrimSpace(vol.LogicalVolume) == "" {
			return fmt.Errorf("disk.volumes[%d]: logical_volume is required", i)
		}
		if strings.TrimSpace(vol.VolumeGroup) == "" {
			return fmt.Errorf("disk.volumes[%d]: volume_group is required", i)
		}
		if err := validation.ValidateDeviceName(vol.LogicalVolume); err != nil {
			return fmt.Errorf("disk.volumes[%d]: %w", i, err)
		}
		if err := validation.ValidateDeviceName(vol.VolumeGroup); err != nil {
			return fmt.Errorf("disk.volumes[%d]: %w", i, err)
		}
	}

	seen := make(map[string]bool)
	for i, s := range m.Scripts {
		if !scriptNamePattern.MatchString(s.Name) {
			return fmt.Errorf("scripts[%d]: invalid name %q", i, s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("scripts[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true

		if !strings.HasPrefix(s.URL, "https://") {
			return fmt.Errorf("scripts[%d] %q: url must be https", i, s.Name)
		}
		if s.Checksum != "" && !checksumPattern.MatchString(s.Checksum) {
			return fmt.Errorf("scripts[%d] %q: checksum must be hex-encoded SHA-256", i, s.Name)
		}
		if s.Timeout != "" {
			if _, err := time.ParseDuration(s.Timeout); err != nil {
				return fmt.Errorf("scripts[%d] %q: timeout: %w", i, s.Name, err)
			}
		}
	}

	return nil
}
