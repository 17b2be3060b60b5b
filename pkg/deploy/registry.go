package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/lerenn/release-manager/pkg/command"
	"github.com/lerenn/release-manager/pkg/fs"
	"github.com/lerenn/release-manager/pkg/git"
	"github.com/lerenn/release-manager/pkg/hooks"
	"github.com/lerenn/release-manager/pkg/logger"
	"github.com/lerenn/release-manager/pkg/metrics"
)

// RegistryInterface is the strategy registry API exposed to extensions and the CLI.
type RegistryInterface interface {
	RegisterStrategy(key string, strategy Strategy) error
	UnregisterStrategy(key string) bool
	HasStrategy(key string) bool
	ListStrategies() []Info
	PreDeployCheck(ctx context.Context, opts Options) (git.Status, error)
	Deploy(ctx context.Context, key string, opts Options) (Result, error)
}

// NewRegistryParams contains parameters for creating a new Registry.
type NewRegistryParams struct {
	RootDir string
	Runner  command.Runner
	Git     git.Git
	FS      fs.FS
	Hooks   hooks.BusInterface
	Logger  logger.Logger
	Metrics metrics.Recorder
}

// Registry maps strategy keys to strategies and runs deployments.
type Registry struct {
	rootDir string
	runner  command.Runner
	git     git.Git
	fs      fs.FS
	hooks   hooks.BusInterface
	logger  logger.Logger
	metrics metrics.Recorder

	keys       []string
	strategies map[string]Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry(params NewRegistryParams) *Registry {
	r := &Registry{
		rootDir:    params.RootDir,
		runner:     params.Runner,
		git:        params.Git,
		fs:         params.FS,
		hooks:      params.Hooks,
		logger:     params.Logger,
		metrics:    params.Metrics,
		strategies: make(map[string]Strategy),
	}
	if r.hooks == nil {
		r.hooks = hooks.NewBus()
	}
	if r.logger == nil {
		r.logger = logger.NewNoopLogger()
	}
	if r.metrics == nil {
		r.metrics = metrics.NoopRecorder{}
	}
	if r.fs == nil {
		r.fs = fs.NewFS()
	}
	return r
}

// RegisterStrategy adds a strategy, replacing any strategy already registered under key.
func (r *Registry) RegisterStrategy(key string, strategy Strategy) error {
	if key == "" {
		return ErrEmptyStrategyKey
	}
	if strategy == nil {
		return ErrNilStrategy
	}
	if _, exists := r.strategies[key]; exists {
		r.logger.Logf("replacing deployment strategy %s", key)
	} else {
		r.keys = append(r.keys, key)
	}
	r.strategies[key] = strategy
	return nil
}

// UnregisterStrategy removes a strategy and reports whether it was registered.
func (r *Registry) UnregisterStrategy(key string) bool {
	if _, exists := r.strategies[key]; !exists {
		return false
	}
	delete(r.strategies, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// HasStrategy reports whether key is registered.
func (r *Registry) HasStrategy(key string) bool {
	_, exists := r.strategies[key]
	return exists
}

// ListStrategies describes every strategy in registration order.
func (r *Registry) ListStrategies() []Info {
	infos := make([]Info, 0, len(r.keys))
	for _, key := range r.keys {
		info := r.strategies[key].Info()
		info.Key = key
		if info.DisplayName == "" {
			info.DisplayName = key
		}
		infos = append(infos, info)
	}
	return infos
}

// PreDeployCheck inspects the working tree. Pending changes fail the check unless
// AllowDirty or Force is set; Force only downgrades the failure to a warning.
func (r *Registry) PreDeployCheck(_ context.Context, opts Options) (git.Status, error) {
	status, err := r.git.Status(r.rootDir)
	if err != nil {
		return git.Status{}, fmt.Errorf("failed to inspect working tree: %w", err)
	}

	if !status.Clean {
		switch {
		case opts.AllowDirty:
			r.logger.Logf("deploying with %d uncommitted changes on %s", len(status.Changes), status.Branch)
		case opts.Force:
			r.logger.Warnf("forcing deployment with %d uncommitted changes on %s", len(status.Changes), status.Branch)
		default:
			return status, fmt.Errorf("%w: %d pending on %s", ErrDirtyWorkingTree, len(status.Changes), status.Branch)
		}
	}
	return status, nil
}

// Deploy runs the strategy registered under key.
//
// beforeDeploy completes before the pre-deploy check and the strategy body; afterDeploy runs
// only when the strategy succeeded. Any failure from beforeDeploy through afterDeploy is stored
// in the context, dispatched to onError and returned. Deployment hooks are fail-fast: an
// observer that rejects a deployment aborts it.
func (r *Registry) Deploy(ctx context.Context, key string, opts Options) (Result, error) {
	strategy, exists := r.strategies[key]
	if !exists {
		return Result{StrategyKey: key, DryRun: opts.DryRun}, fmt.Errorf("%w: %s", ErrUnknownStrategy, key)
	}

	session := newSession(key, opts, r)
	defer session.close()

	dctx := &Context{
		StrategyKey: key,
		SessionID:   session.ID,
		Options:     opts,
		StartTime:   session.StartTime,
	}
	res := Result{StrategyKey: key, SessionID: session.ID, DryRun: opts.DryRun}

	fail := func(stage Stage, err error) (Result, error) {
		dctx.EndTime = time.Now()
		dctx.Duration = dctx.EndTime.Sub(dctx.StartTime)
		dctx.Err = &Error{StrategyKey: key, Stage: stage, Err: err}

		res.Plan = session.Steps()
		res.Duration = dctx.Duration
		dctx.Result = &res
		r.metrics.ObserveDeployDuration(key, dctx.Duration, false)

		if _, hookErr := r.hooks.Dispatch(ctx, hooks.OnError, r.hookContext(hooks.OnError, dctx), hooks.FailFast); hookErr != nil {
			r.metrics.IncHookFailure(hooks.OnError)
			r.logger.Warnf("onError hook failed for %s: %v", key, hookErr)
		}
		return res, dctx.Err
	}

	if _, err := r.hooks.Dispatch(ctx, hooks.BeforeDeploy, r.hookContext(hooks.BeforeDeploy, dctx), hooks.FailFast); err != nil {
		return fail(StageBeforeDeploy, err)
	}

	status, err := r.PreDeployCheck(ctx, opts)
	if err != nil {
		return fail(StagePreflight, err)
	}
	dctx.GitStatus = &status
	session.GitStatus = status

	out, err := runStrategy(ctx, strategy, session)
	if err != nil {
		return fail(StageDeploy, err)
	}

	res.Success = true
	res.Details = out.Details
	res.Plan = session.Steps()
	dctx.EndTime = time.Now()
	dctx.Duration = dctx.EndTime.Sub(dctx.StartTime)
	res.Duration = dctx.Duration
	dctx.Result = &res

	if _, err := r.hooks.Dispatch(ctx, hooks.AfterDeploy, r.hookContext(hooks.AfterDeploy, dctx), hooks.FailFast); err != nil {
		res.Success = false
		return fail(StageAfterDeploy, err)
	}

	r.metrics.ObserveDeployDuration(key, dctx.Duration, true)
	return res, nil
}

func (r *Registry) hookContext(name string, dctx *Context) *hooks.Context {
	return &hooks.Context{Hook: name, Payload: dctx, Error: dctx.Err}
}

func runStrategy(ctx context.Context, strategy Strategy, s *Session) (res Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrStrategyPanic, rec)
		}
	}()
	return strategy.Deploy(ctx, s)
}
