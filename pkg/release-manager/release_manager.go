// Package releasemanager is the orchestration engine: it owns the hook bus, the extension loader,
// the strategy registry and the publish pipeline for one configuration.
package releasemanager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lerenn/release-manager/pkg/command"
	"github.com/lerenn/release-manager/pkg/config"
	"github.com/lerenn/release-manager/pkg/dependencies"
	"github.com/lerenn/release-manager/pkg/deploy"
	"github.com/lerenn/release-manager/pkg/extension"
	"github.com/lerenn/release-manager/pkg/forge"
	"github.com/lerenn/release-manager/pkg/hooks"
	"github.com/lerenn/release-manager/pkg/metrics"
	"github.com/lerenn/release-manager/pkg/notify"
	"github.com/lerenn/release-manager/pkg/packages"
	"github.com/lerenn/release-manager/pkg/release"
)

// ReleaseManager is the engine API used by the CLI.
type ReleaseManager interface {
	// Publish resolves the selected packages into dependency order and publishes them.
	Publish(params PublishParams) (release.BatchResult, error)
	// Order returns the selected packages in publish order.
	Order(keys []string) ([]string, error)
	// ListPackages describes the configured packages in declaration order.
	ListPackages() ([]PackageInfo, error)
	// Deploy runs a deployment strategy.
	Deploy(params DeployParams) (deploy.Result, error)
	// ListStrategies lists the registered strategies in registration order.
	ListStrategies() []deploy.Info
	// ListExtensions describes the loaded extensions.
	ListExtensions() []extension.Descriptor
	// ExtensionStats summarizes the extension table.
	ExtensionStats() extension.Stats
	// LoadReport returns what happened when extensions were discovered at startup.
	LoadReport() extension.Report
	// ReloadExtension tears down and loads the named extension again from its source.
	ReloadExtension(name string) (extension.Descriptor, error)
	// UnloadExtension tears down the named extension.
	UnloadExtension(name string) error
	// WatchExtensions reloads extensions on source changes until params.Context is done.
	WatchExtensions(params WatchParams) error
	// Shutdown destroys every extension and exports metrics. The instance is unusable afterwards.
	Shutdown() error
}

// NewReleaseManagerParams contains parameters for creating a new ReleaseManager instance.
type NewReleaseManagerParams struct {
	Dependencies *dependencies.Dependencies
}

type realReleaseManager struct {
	deps     *dependencies.Dependencies
	cfg      config.Config
	catalog  *packages.Catalog
	store    packages.Store
	registry *deploy.Registry
	pipeline *release.Pipeline
	loader   *extension.Loader
	report   extension.Report
	textfile textfileWriter
	shutdown bool
}

type textfileWriter interface {
	WriteTextfile(path string) error
}

// NewReleaseManager loads the configuration, builds the registries and loads extensions.
// Extensions that fail to load are skipped and listed in LoadReport.
func NewReleaseManager(params NewReleaseManagerParams) (ReleaseManager, error) {
	deps := params.Dependencies
	if deps == nil {
		deps = dependencies.New()
	}
	if deps.Config == nil {
		deps.Config = config.NewManager(config.DefaultConfigPath())
	}

	cfg, err := deps.Config.GetConfigWithFallback()
	if err != nil {
		return nil, err
	}

	if deps.Runner == nil {
		deps.Runner = command.NewRunner(command.NewRunnerParams{Timeout: cfg.CommandTimeout})
	}
	r := &realReleaseManager{deps: deps, cfg: cfg}
	r.setupMetrics()

	if err := deps.Validate(); err != nil {
		return nil, err
	}

	if err := r.build(); err != nil {
		return nil, err
	}
	return r, nil
}

// setupMetrics swaps the noop recorder for a Prometheus one when a textfile is configured.
func (r *realReleaseManager) setupMetrics() {
	if r.cfg.Metrics.Textfile == "" {
		return
	}
	if _, noop := r.deps.Metrics.(metrics.NoopRecorder); noop || r.deps.Metrics == nil {
		r.deps.Metrics = metrics.NewPrometheusRecorder(nil)
	}
	if w, ok := r.deps.Metrics.(textfileWriter); ok {
		r.textfile = w
	}
}

func (r *realReleaseManager) build() error {
	deps := r.deps

	if err := hooks.NewLoggingObserver(deps.Logger).Register(deps.Hooks); err != nil {
		return err
	}

	r.store = packages.NewStore(deps.FS)
	catalog, err := packages.NewCatalog(r.cfg.RootDir, r.store, r.cfg.Packages)
	if err != nil {
		return err
	}
	r.catalog = catalog

	r.pipeline = release.NewPipeline(release.NewPipelineParams{
		Catalog: catalog,
		Store:   r.store,
		Runner:  deps.Runner,
		Hooks:   deps.Hooks,
		Logger:  deps.Logger,
		Metrics: deps.Metrics,
		Config:  r.cfg.Publish,
	})

	r.registry = deploy.NewRegistry(deploy.NewRegistryParams{
		RootDir: r.cfg.RootDir,
		Runner:  deps.Runner,
		Git:     deps.Git,
		FS:      deps.FS,
		Hooks:   deps.Hooks,
		Logger:  deps.Logger,
		Metrics: deps.Metrics,
	})
	if err := deploy.RegisterDefaults(r.registry, r.cfg.Deploy); err != nil {
		return err
	}
	if err := r.registerGitHubRelease(); err != nil {
		return err
	}

	r.loader = extension.NewLoader(extension.NewLoaderParams{
		Dirs:       r.cfg.ResolvedExtensionDirs(),
		FS:         deps.FS,
		Hooks:      deps.Hooks,
		Strategies: r.registry,
		Logger:     deps.Logger,
		Settings:   r.cfg.ExtensionSettings,
	})

	if _, err := r.loader.Register(notify.New(r.cfg.Notify, deps.NotifyDialer), nil); err != nil {
		// A notifier that cannot connect is skipped.
		deps.Logger.Warnf("%v", err)
	}

	report, err := r.loader.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load extensions: %w", err)
	}
	r.report = report
	return nil
}

func (r *realReleaseManager) registerGitHubRelease() error {
	f := r.deps.Forge
	if f == nil {
		gh, err := forge.NewGitHub(forge.NewGitHubParams{
			Token:   os.Getenv("GITHUB_TOKEN"),
			BaseURL: os.Getenv("GITHUB_API_URL"),
			Git:     r.deps.Git,
		})
		if err != nil {
			return err
		}
		f = gh
	}
	s := deploy.NewGitHubReleaseStrategy(deploy.NewGitHubReleaseStrategyParams{
		Forge:   f,
		Catalog: r.catalog,
		Config:  r.cfg.Deploy.GitHubRelease,
	})
	return r.registry.RegisterStrategy(s.Info().Key, s)
}

// VerbosePrint logs a formatted message using the current logger.
func (r *realReleaseManager) VerbosePrint(msg string, args ...interface{}) {
	if r.deps.Logger != nil {
		r.deps.Logger.Logf(msg, args...)
	}
}

// execute runs operation, converting a panic into an error.
func (r *realReleaseManager) execute(operationName string, operation func() error) (err error) {
	if r.shutdown {
		return fmt.Errorf("%w: %s", ErrShutdown, operationName)
	}
	r.VerbosePrint("%s", operationName)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrOperationPanic, operationName, rec)
		}
	}()
	return operation()
}

// Shutdown destroys extensions in reverse load order and writes the metrics textfile.
func (r *realReleaseManager) Shutdown() error {
	if r.shutdown {
		return nil
	}
	r.VerbosePrint("Shutdown")
	r.loader.Close()
	r.shutdown = true

	if r.textfile == nil {
		return nil
	}
	path := r.cfg.ResolvePath(r.cfg.Metrics.Textfile)
	if err := r.deps.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Join(ErrMetricsExport, err)
	}
	if err := r.textfile.WriteTextfile(path); err != nil {
		return errors.Join(ErrMetricsExport, err)
	}
	return nil
}
