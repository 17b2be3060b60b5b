package config

import "errors"

// Error definitions for config package.
var (
	// Configuration file errors.
	ErrConfigFileParse = errors.New("failed to parse config file")
	// Configuration validation errors.
	ErrRootDirEmpty    = errors.New("root_dir cannot be empty")
	ErrInvalidTimeout  = errors.New("command_timeout cannot be negative")
	ErrInvalidPackages = errors.New("invalid package configuration")
	// Configuration initialization errors.
	ErrConfigNotInitialized = errors.New("relm configuration not found. Run 'relm init' to initialize")
	ErrConfigExists         = errors.New("configuration file already exists")
)
