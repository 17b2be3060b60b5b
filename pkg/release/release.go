// Package release runs the per-package publish pipeline: version validation, version write-back,
// build, publish manifest synthesis and publish.
package release

import (
	"fmt"
	"time"
)

// Stage is one step of the publish pipeline.
type Stage string

// Pipeline stages, in execution order.
const (
	StageValidate Stage = "validate"
	StageVersion  Stage = "version"
	StageBuild    Stage = "build"
	StageManifest Stage = "manifest"
	StagePublish  Stage = "publish"
)

// Default commands used when the configuration does not override them.
const (
	DefaultBuildCommand         = "npm run build"
	DefaultPublishCommand       = "npm publish --access public"
	DefaultPublishDryRunCommand = "npm pack --dry-run"
)

// Options controls one publish run.
type Options struct {
	// DryRun leaves the persisted version untouched and replaces the publish command with its pack variant.
	DryRun bool
}

// Step records one action of the pipeline, executed or planned.
type Step struct {
	Stage       Stage
	Description string
	Executed    bool
	// DryRunWrite marks a step that wrote into the build output during a dry run.
	// Package sources are never modified in a dry run.
	DryRunWrite bool
	Duration    time.Duration
}

// Result is the outcome of publishing one package.
type Result struct {
	PackageKey      string
	Success         bool
	Skipped         bool
	DryRun          bool
	Version         string
	PreviousVersion string
	Steps           []Step
	Err             error
	Duration        time.Duration
}

// Fields flattens the result for hook callbacks.
func (r Result) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"packageKey":      r.PackageKey,
		"success":         r.Success,
		"skipped":         r.Skipped,
		"dryRun":          r.DryRun,
		"version":         r.Version,
		"previousVersion": r.PreviousVersion,
		"durationMs":      r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		fields["error"] = r.Err.Error()
	}
	return fields
}

// BatchResult aggregates the results of one PublishAll run.
type BatchResult struct {
	RunID     string
	Results   []Result
	Succeeded int
	Failed    int
	Skipped   int
}

// OK reports whether no package failed.
func (b BatchResult) OK() bool {
	return b.Failed == 0
}

// Summary returns the aggregate counts as a single line.
func (b BatchResult) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d skipped", b.Succeeded, b.Failed, b.Skipped)
}

// publishEvent is the payload of beforePublish.
type publishEvent struct {
	RunID      string
	PackageKey string
	Version    string
	DryRun     bool
}

func (e publishEvent) Fields() map[string]interface{} {
	return map[string]interface{}{
		"runId":      e.RunID,
		"packageKey": e.PackageKey,
		"version":    e.Version,
		"dryRun":     e.DryRun,
	}
}
