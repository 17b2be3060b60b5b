package extension

import (
	"context"
	"fmt"

	"github.com/lerenn/release-manager/pkg/deploy"
	"github.com/lerenn/release-manager/pkg/hooks"
)

// StrategyInfo describes a registered deployment strategy.
type StrategyInfo struct {
	Key         string
	DisplayName string
	Description string
	Icon        string
}

// Handle is given to an extension's Initialize. Every hook and strategy registered through
// it is owned by the extension and removed when the extension is unloaded.
type Handle struct {
	owner      string
	loader     *Loader
	settings   map[string]interface{}
	strategies []string
}

// Name returns the name of the owning extension.
func (h *Handle) Name() string {
	return h.owner
}

// Setting returns one of the extension's merged settings, or nil.
func (h *Handle) Setting(key string) interface{} {
	return h.settings[key]
}

// Settings returns a copy of the extension's merged settings.
func (h *Handle) Settings() map[string]interface{} {
	out := make(map[string]interface{}, len(h.settings))
	for k, v := range h.settings {
		out[k] = v
	}
	return out
}

// Logf logs through the engine logger, prefixed with the extension name.
func (h *Handle) Logf(format string, args ...interface{}) {
	h.loader.logger.Logf("[%s] %s", h.owner, fmt.Sprintf(format, args...))
}

// RegisterHook subscribes fn to hookName. fn receives the flattened hook context.
func (h *Handle) RegisterHook(hookName string, fn func(fields map[string]interface{}) error) error {
	if fn == nil {
		return hooks.ErrNilCallback
	}
	return h.RegisterCallback(hookName, func(_ context.Context, hc *hooks.Context) error {
		return fn(hc.Fields())
	})
}

// RegisterCallback subscribes a native callback to hookName.
func (h *Handle) RegisterCallback(hookName string, cb hooks.Callback) error {
	return h.loader.hooks.Register(hookName, cb, h.owner)
}

// RegisterStrategy registers a deployment strategy backed by fn. fn receives the deployment
// options and returns details for the deployment result; it must honor "dryRun".
func (h *Handle) RegisterStrategy(key, displayName, description, icon string,
	fn func(options map[string]interface{}) (map[string]interface{}, error)) error {
	if fn == nil {
		return ErrNoStrategyHandler
	}
	info := deploy.Info{Key: key, DisplayName: displayName, Description: description, Icon: icon}
	owner := h.owner
	return h.RegisterDeployStrategy(key, deploy.NewStrategy(info, func(_ context.Context, s *deploy.Session) (deploy.Result, error) {
		options := map[string]interface{}{
			"strategyKey": s.StrategyKey,
			"sessionId":   s.ID,
			"rootDir":     s.RootDir,
			"branch":      s.CurrentBranch(),
			"dryRun":      s.Options.DryRun,
			"allowDirty":  s.Options.AllowDirty,
			"force":       s.Options.Force,
		}
		for k, v := range s.Options.Settings {
			options[k] = v
		}
		s.Plan("extension %s handles %s", owner, key)
		details, err := fn(options)
		if err != nil {
			return deploy.Result{}, err
		}
		return deploy.Result{Details: details}, nil
	}))
}

// RegisterDeployStrategy registers a native strategy under key.
func (h *Handle) RegisterDeployStrategy(key string, strategy deploy.Strategy) error {
	if h.loader.strategies == nil {
		return fmt.Errorf("%w: no strategy registry", ErrInvalidExtension)
	}
	if err := h.loader.strategies.RegisterStrategy(key, strategy); err != nil {
		return err
	}
	h.strategies = append(h.strategies, key)
	return nil
}

// ListStrategies describes every registered strategy.
func (h *Handle) ListStrategies() []StrategyInfo {
	if h.loader.strategies == nil {
		return nil
	}
	infos := h.loader.strategies.ListStrategies()
	out := make([]StrategyInfo, len(infos))
	for i, info := range infos {
		out[i] = StrategyInfo(info)
	}
	return out
}

// Extensions returns the names of the loaded extensions.
func (h *Handle) Extensions() []string {
	return append([]string(nil), h.loader.order...)
}
