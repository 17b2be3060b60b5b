// Package cli provides shared flags and engine construction for the relm CLI.
package cli

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/lerenn/release-manager/pkg/config"
	"github.com/lerenn/release-manager/pkg/dependencies"
	"github.com/lerenn/release-manager/pkg/logger"
	releasemanager "github.com/lerenn/release-manager/pkg/release-manager"
)

var (
	// Quiet suppresses all output except errors.
	Quiet bool
	// Verbose enables verbose output.
	Verbose bool
	// ConfigPath specifies a custom config file path.
	ConfigPath string
	// EnvFile is loaded into the environment before the engine starts.
	EnvFile = ".env"
)

// LoadEnv loads EnvFile when it exists. Variables already set are kept.
func LoadEnv() error {
	if EnvFile == "" {
		return nil
	}
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// GetConfigPath returns the config file path selected by the flags.
func GetConfigPath() string {
	if ConfigPath != "" {
		return ConfigPath
	}
	return config.DefaultConfigPath()
}

// NewConfigManager creates a config manager for the selected path.
func NewConfigManager() config.Manager {
	return config.NewManager(GetConfigPath())
}

// NewLogger returns the logger selected by the verbosity flags.
func NewLogger() logger.Logger {
	switch {
	case Quiet:
		return logger.NewNoopLogger()
	case Verbose:
		return logger.NewDefaultLogger()
	default:
		return logger.NewQuietLogger()
	}
}

// NewReleaseManager creates the engine for the selected configuration.
func NewReleaseManager() (releasemanager.ReleaseManager, error) {
	if err := LoadEnv(); err != nil {
		return nil, err
	}
	return releasemanager.NewReleaseManager(releasemanager.NewReleaseManagerParams{
		Dependencies: dependencies.New().
			WithConfig(NewConfigManager()).
			WithLogger(NewLogger()),
	})
}

// Run creates the engine, runs fn and shuts the engine down.
func Run(fn func(rm releasemanager.ReleaseManager) error) error {
	rm, err := NewReleaseManager()
	if err != nil {
		return err
	}
	err = fn(rm)
	return errors.Join(err, rm.Shutdown())
}
