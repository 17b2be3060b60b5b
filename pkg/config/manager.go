// Package config provides configuration management functionality for relm.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lerenn/release-manager/configs"
	"github.com/lerenn/release-manager/pkg/fs"
	"gopkg.in/yaml.v3"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=manager.go -destination=mocks/manager.gen.go -package=mocks

// DefaultConfigPath returns ~/.relm/config.yaml.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".relm", "config.yaml")
}

// Manager interface provides configuration management functionality with an embedded config path.
type Manager interface {
	GetConfig() (Config, error)
	GetConfigWithFallback() (Config, error)
	SaveConfig(config Config) error
	InitConfig(force bool) error
	CreateConfigDirectory() error
	GetConfigPath() string
	SetConfigPath(configPath string)
	DefaultConfig() Config
}

// realManager manages configuration with an embedded config path.
type realManager struct {
	configPath string
	fs         fs.FS
}

// NewManager creates a new Manager instance with the specified config path.
func NewManager(configPath string) Manager {
	return &realManager{
		configPath: configPath,
		fs:         fs.NewFS(),
	}
}

// GetConfig loads configuration from the embedded config path.
func (c *realManager) GetConfig() (Config, error) {
	exists, err := c.fs.Exists(c.configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to check config file: %w", err)
	}
	if !exists {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigNotInitialized, c.configPath)
	}

	data, err := c.fs.ReadFile(c.configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := parse(data)
	if err != nil {
		return Config{}, err
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// GetConfigWithFallback loads the configuration from the embedded config path, falling back to
// default if the file does not exist. A file that exists but is invalid is still an error.
func (c *realManager) GetConfigWithFallback() (Config, error) {
	config, err := c.GetConfig()
	if err == nil {
		return config, nil
	}
	if exists, _ := c.fs.Exists(c.configPath); exists {
		return Config{}, err
	}
	return c.DefaultConfig(), nil
}

// SaveConfig saves configuration to the embedded config path.
func (c *realManager) SaveConfig(config Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := c.CreateConfigDirectory(); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := c.fs.WriteFileAtomic(c.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}

// InitConfig writes the commented default configuration. An existing file is kept unless force is set.
func (c *realManager) InitConfig(force bool) error {
	exists, err := c.fs.Exists(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}
	if exists && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, c.configPath)
	}

	if err := c.CreateConfigDirectory(); err != nil {
		return err
	}
	if err := c.fs.WriteFileAtomic(c.configPath, configs.DefaultConfigYAML, 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}

// CreateConfigDirectory creates the configuration directory structure.
func (c *realManager) CreateConfigDirectory() error {
	configDir := filepath.Dir(c.configPath)
	if err := c.fs.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// GetConfigPath returns the embedded config path.
func (c *realManager) GetConfigPath() string {
	return c.configPath
}

// SetConfigPath updates the embedded config path.
func (c *realManager) SetConfigPath(configPath string) {
	c.configPath = configPath
}

// DefaultConfig returns the embedded default configuration.
func (c *realManager) DefaultConfig() Config {
	config, err := parse(configs.DefaultConfigYAML)
	if err != nil {
		// The embedded file is covered by tests; this only guards a broken build.
		return Config{RootDir: ".", ExtensionDirs: []string{filepath.Join(".relm", "extensions")}}
	}
	return config
}

func parse(data []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigFileParse, err)
	}

	if err := config.expandTildes(); err != nil {
		return Config{}, fmt.Errorf("failed to expand tildes in configuration: %w", err)
	}
	return config, nil
}
