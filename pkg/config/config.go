package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lerenn/release-manager/pkg/deploy"
	"github.com/lerenn/release-manager/pkg/notify"
	"github.com/lerenn/release-manager/pkg/packages"
	"github.com/lerenn/release-manager/pkg/release"
)

// Config represents the application configuration.
type Config struct {
	RootDir           string                 `yaml:"root_dir"`
	ExtensionDirs     []string               `yaml:"extension_dirs,omitempty"`
	ExtensionSettings map[string]interface{} `yaml:"extension_settings,omitempty"`
	CommandTimeout    time.Duration          `yaml:"command_timeout,omitempty"`
	Packages          []packages.Spec        `yaml:"packages,omitempty"`
	Publish           release.Config         `yaml:"publish"`
	Deploy            deploy.Config          `yaml:"deploy"`
	Notify            notify.Config          `yaml:"notify"`
	Metrics           MetricsConfig          `yaml:"metrics"`
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	// Textfile is written in Prometheus text format after each command when set.
	Textfile string `yaml:"textfile,omitempty"`
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.RootDir == "" {
		return ErrRootDirEmpty
	}
	if c.CommandTimeout < 0 {
		return ErrInvalidTimeout
	}
	return validatePackages(c.Packages)
}

// validatePackages rejects empty keys, duplicate keys and dependencies on undeclared packages.
// Cycles are reported when an order is computed.
func validatePackages(specs []packages.Spec) error {
	seen := make(map[string]bool, len(specs))
	for i, s := range specs {
		if s.Key == "" {
			return fmt.Errorf("%w: packages[%d]: %w", ErrInvalidPackages, i, packages.ErrEmptyKey)
		}
		if seen[s.Key] {
			return fmt.Errorf("%w: %w: %s", ErrInvalidPackages, packages.ErrDuplicateKey, s.Key)
		}
		seen[s.Key] = true
	}
	for _, s := range specs {
		for _, dep := range s.Dependencies {
			if !seen[dep] {
				return fmt.Errorf("%w: %w: %s depends on %s", ErrInvalidPackages, packages.ErrUnknownDependency, s.Key, dep)
			}
		}
	}
	return nil
}

// ResolvePath resolves p against RootDir unless it is absolute.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.RootDir, p)
}

// ResolvedExtensionDirs returns the extension directories resolved against RootDir.
func (c *Config) ResolvedExtensionDirs() []string {
	dirs := make([]string, 0, len(c.ExtensionDirs))
	for _, d := range c.ExtensionDirs {
		dirs = append(dirs, c.ResolvePath(d))
	}
	return dirs
}

// expandTildes expands ~ in path fields and makes RootDir absolute.
func (c *Config) expandTildes() error {
	var err error
	if c.RootDir, err = expandTilde(c.RootDir); err != nil {
		return err
	}
	if c.RootDir != "" {
		if c.RootDir, err = filepath.Abs(c.RootDir); err != nil {
			return err
		}
	}
	for i, d := range c.ExtensionDirs {
		if c.ExtensionDirs[i], err = expandTilde(d); err != nil {
			return err
		}
	}
	c.Metrics.Textfile, err = expandTilde(c.Metrics.Textfile)
	return err
}

func expandTilde(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
