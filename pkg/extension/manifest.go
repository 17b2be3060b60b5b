package extension

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest file name of a directory extension.
const ManifestFile = "extension.yaml"

// Manifest describes a directory extension.
type Manifest struct {
	Name        string                 `yaml:"name"`
	Version     string                 `yaml:"version,omitempty"`
	Description string                 `yaml:"description,omitempty"`
	Author      string                 `yaml:"author,omitempty"`
	Main        string                 `yaml:"main"`
	Settings    map[string]interface{} `yaml:"settings,omitempty"`
}

// ParseManifest decodes and validates a manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if strings.TrimSpace(m.Main) == "" {
		return nil, fmt.Errorf("%w: main entry is required", ErrInvalidManifest)
	}
	if filepath.IsAbs(m.Main) || strings.HasPrefix(filepath.Clean(m.Main), "..") {
		return nil, fmt.Errorf("%w: main entry %q must stay inside the extension directory", ErrInvalidManifest, m.Main)
	}
	return &m, nil
}
