// Package deploy holds the deployment strategy registry and the built-in strategies.
// Every deployment runs inside a Session and is wrapped by the beforeDeploy, afterDeploy
// and onError hooks.
package deploy

import (
	"context"
	"time"

	"github.com/lerenn/release-manager/pkg/git"
)

// Stage is one step of a deployment.
type Stage string

// Deployment stages, in execution order.
const (
	StageBeforeDeploy Stage = "beforeDeploy"
	StagePreflight    Stage = "preDeployCheck"
	StageDeploy       Stage = "deploy"
	StageAfterDeploy  Stage = "afterDeploy"
)

// Info describes a strategy for selection interfaces.
type Info struct {
	Key         string
	DisplayName string
	Description string
	Icon        string
}

// Options controls one deployment.
type Options struct {
	// DryRun reports the commands and actions without running them.
	DryRun bool
	// AllowDirty skips the clean working tree requirement.
	AllowDirty bool
	// Force proceeds on a dirty working tree with a warning.
	Force bool
	// Settings carries strategy specific values.
	Settings map[string]interface{}
}

// Result describes a finished (or planned) deployment.
type Result struct {
	StrategyKey string
	SessionID   string
	Success     bool
	DryRun      bool
	Plan        []string
	Details     map[string]interface{}
	Duration    time.Duration
}

// Strategy is a named deployment procedure.
type Strategy interface {
	Info() Info
	Deploy(ctx context.Context, s *Session) (Result, error)
}

// DeployFunc is the body of a function-backed strategy.
type DeployFunc func(ctx context.Context, s *Session) (Result, error)

type funcStrategy struct {
	info Info
	fn   DeployFunc
}

// NewStrategy wraps a function as a Strategy.
func NewStrategy(info Info, fn DeployFunc) Strategy {
	return &funcStrategy{info: info, fn: fn}
}

func (f *funcStrategy) Info() Info { return f.info }

func (f *funcStrategy) Deploy(ctx context.Context, s *Session) (Result, error) {
	return f.fn(ctx, s)
}

// Context is the state of one deployment as seen by hook observers.
type Context struct {
	StrategyKey string
	SessionID   string
	Options     Options
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	GitStatus   *git.Status
	Result      *Result
	Err         error
}

// Fields flattens the context for hook callbacks.
func (c *Context) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"strategyKey": c.StrategyKey,
		"sessionId":   c.SessionID,
		"dryRun":      c.Options.DryRun,
		"allowDirty":  c.Options.AllowDirty,
		"force":       c.Options.Force,
		"startTime":   c.StartTime.Format(time.RFC3339),
	}
	if !c.EndTime.IsZero() {
		fields["endTime"] = c.EndTime.Format(time.RFC3339)
		fields["durationMs"] = c.Duration.Milliseconds()
	}
	if c.GitStatus != nil {
		fields["branch"] = c.GitStatus.Branch
		fields["clean"] = c.GitStatus.Clean
	}
	if c.Result != nil {
		fields["success"] = c.Result.Success
		fields["plan"] = c.Result.Plan
	}
	if c.Err != nil {
		fields["error"] = c.Err.Error()
	}
	return fields
}
