package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// Loader reads registry files from disk.
type Loader struct {
	fs ports.FileSystem
}

// NewLoader creates a new Loader.
func NewLoader(fs ports.FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load parses and validates the manifest at path. The format is chosen
// by extension: .toml is TOML, everything else is YAML.
func (l *Loader) Load(path string) (*Manifest, error) {
	if !l.fs.Exists(path) {
		return nil, fmt.Errorf("registry file not found: %s", path)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file %s: %w", path, err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse registry file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse registry file %s: %w", path, err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid registry file %s: %w", path, err)
	}

	return &m, nil
}
