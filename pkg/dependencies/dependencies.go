// Package dependencies provides a centralized dependency container for relm.
// Related collaborators are grouped together and configured through a fluent API.
package dependencies

import (
	"errors"

	"github.com/lerenn/release-manager/pkg/command"
	"github.com/lerenn/release-manager/pkg/config"
	"github.com/lerenn/release-manager/pkg/forge"
	"github.com/lerenn/release-manager/pkg/fs"
	"github.com/lerenn/release-manager/pkg/git"
	"github.com/lerenn/release-manager/pkg/hooks"
	"github.com/lerenn/release-manager/pkg/logger"
	"github.com/lerenn/release-manager/pkg/metrics"
	"github.com/lerenn/release-manager/pkg/notify"
)

// Validation errors for missing dependencies.
var (
	ErrFSMissing      = errors.New("fs dependency is required but not set")
	ErrGitMissing     = errors.New("git dependency is required but not set")
	ErrRunnerMissing  = errors.New("command runner dependency is required but not set")
	ErrConfigMissing  = errors.New("config dependency is required but not set")
	ErrLoggerMissing  = errors.New("logger dependency is required but not set")
	ErrHooksMissing   = errors.New("hook bus dependency is required but not set")
	ErrMetricsMissing = errors.New("metrics recorder dependency is required but not set")
)

// Dependencies holds shared dependencies across the application.
type Dependencies struct {
	FS      fs.FS
	Git     git.Git
	Runner  command.Runner
	Config  config.Manager
	Logger  logger.Logger
	Hooks   hooks.BusInterface
	Metrics metrics.Recorder
	// Forge backs the github-release strategy. When nil, a GitHub client is created on demand.
	Forge forge.Forge
	// NotifyDialer connects the NATS notifier. When nil, notify.DialNATS is used.
	NotifyDialer notify.Dialer
}

// New creates a new Dependencies instance with sensible defaults.
func New() *Dependencies {
	return &Dependencies{
		FS:      fs.NewFS(),
		Git:     git.NewGit(),
		Logger:  logger.NewNoopLogger(),
		Hooks:   hooks.NewBus(),
		Metrics: metrics.NoopRecorder{},
		// Config, Runner, Forge and NotifyDialer are left nil: they depend on the loaded configuration.
	}
}

// WithFS sets the filesystem and returns the instance for chaining.
func (d *Dependencies) WithFS(fs fs.FS) *Dependencies {
	d.FS = fs
	return d
}

// WithGit sets the git instance and returns the instance for chaining.
func (d *Dependencies) WithGit(git git.Git) *Dependencies {
	d.Git = git
	return d
}

// WithRunner sets the command runner and returns the instance for chaining.
func (d *Dependencies) WithRunner(runner command.Runner) *Dependencies {
	d.Runner = runner
	return d
}

// WithConfig sets the config manager and returns the instance for chaining.
func (d *Dependencies) WithConfig(cfg config.Manager) *Dependencies {
	d.Config = cfg
	return d
}

// WithLogger sets the logger and returns the instance for chaining.
func (d *Dependencies) WithLogger(logger logger.Logger) *Dependencies {
	d.Logger = logger
	return d
}

// WithHooks sets the hook bus and returns the instance for chaining.
func (d *Dependencies) WithHooks(bus hooks.BusInterface) *Dependencies {
	d.Hooks = bus
	return d
}

// WithMetrics sets the metrics recorder and returns the instance for chaining.
func (d *Dependencies) WithMetrics(recorder metrics.Recorder) *Dependencies {
	d.Metrics = recorder
	return d
}

// WithForge sets the forge and returns the instance for chaining.
func (d *Dependencies) WithForge(f forge.Forge) *Dependencies {
	d.Forge = f
	return d
}

// WithNotifyDialer sets the notifier dialer and returns the instance for chaining.
func (d *Dependencies) WithNotifyDialer(dial notify.Dialer) *Dependencies {
	d.NotifyDialer = dial
	return d
}

// dependencyCheck represents a dependency validation check.
type dependencyCheck struct {
	dep interface{}
	err error
}

// Validate checks that all required dependencies are set and returns an error if any are missing.
func (d *Dependencies) Validate() error {
	checks := []dependencyCheck{
		{d.FS, ErrFSMissing},
		{d.Git, ErrGitMissing},
		{d.Config, ErrConfigMissing},
		{d.Logger, ErrLoggerMissing},
		{d.Hooks, ErrHooksMissing},
		{d.Metrics, ErrMetricsMissing},
		{d.Runner, ErrRunnerMissing},
	}

	for _, check := range checks {
		if check.dep == nil {
			return check.err
		}
	}
	return nil
}
