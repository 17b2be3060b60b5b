package release

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lerenn/release-manager/pkg/command"
	"github.com/lerenn/release-manager/pkg/hooks"
	"github.com/lerenn/release-manager/pkg/logger"
	"github.com/lerenn/release-manager/pkg/metrics"
	"github.com/lerenn/release-manager/pkg/packages"
	"github.com/lerenn/release-manager/pkg/version"
)

// Config holds the publish settings.
type Config struct {
	Command         string `yaml:"command,omitempty"`
	DryRunCommand   string `yaml:"dry_run_command,omitempty"`
	BlockDependents bool   `yaml:"block_dependents,omitempty"`
}

// NewPipelineParams contains parameters for creating a new Pipeline.
type NewPipelineParams struct {
	Catalog *packages.Catalog
	Store   packages.Store
	Runner  command.Runner
	Hooks   hooks.BusInterface
	Logger  logger.Logger
	Metrics metrics.Recorder
	Config  Config
}

// Pipeline publishes packages one at a time in the order it is given.
type Pipeline struct {
	catalog *packages.Catalog
	store   packages.Store
	runner  command.Runner
	hooks   hooks.BusInterface
	logger  logger.Logger
	metrics metrics.Recorder
	config  Config
}

// NewPipeline creates a new Pipeline.
func NewPipeline(params NewPipelineParams) *Pipeline {
	p := &Pipeline{
		catalog: params.Catalog,
		store:   params.Store,
		runner:  params.Runner,
		hooks:   params.Hooks,
		logger:  params.Logger,
		metrics: params.Metrics,
		config:  params.Config,
	}
	if p.hooks == nil {
		p.hooks = hooks.NewBus()
	}
	if p.logger == nil {
		p.logger = logger.NewNoopLogger()
	}
	if p.metrics == nil {
		p.metrics = metrics.NoopRecorder{}
	}
	if p.config.Command == "" {
		p.config.Command = DefaultPublishCommand
	}
	if p.config.DryRunCommand == "" {
		p.config.DryRunCommand = DefaultPublishDryRunCommand
	}
	return p
}

// PublishPackage runs the pipeline for one package. Failures are reported in the result.
func (p *Pipeline) PublishPackage(ctx context.Context, key, next string, opts Options) Result {
	return p.publish(ctx, uuid.NewString(), key, next, opts)
}

// PublishAll publishes orderedKeys in sequence. A failing package never stops the batch.
// With BlockDependents set, packages depending on a failed package fail with ErrDependencyFailed
// without running any stage.
func (p *Pipeline) PublishAll(ctx context.Context, orderedKeys []string, versions map[string]string, opts Options) BatchResult {
	batch := BatchResult{RunID: uuid.NewString(), Results: make([]Result, 0, len(orderedKeys))}
	failed := make(map[string]bool)

	for _, key := range orderedKeys {
		var res Result
		if p.skipsPublish(key) {
			res = p.publish(ctx, batch.RunID, key, versions[key], opts)
		} else if dep, blocked := p.blockedBy(key, failed); blocked {
			res = Result{
				PackageKey: key,
				DryRun:     opts.DryRun,
				Version:    versions[key],
				Err:        &StageError{PackageKey: key, Stage: StageValidate, Err: fmt.Errorf("%w: %s", ErrDependencyFailed, dep)},
			}
			p.metrics.IncPublishResult(key, metrics.ResultFailed)
		} else if v, ok := versions[key]; !ok || v == "" {
			res = Result{
				PackageKey: key,
				DryRun:     opts.DryRun,
				Err:        &StageError{PackageKey: key, Stage: StageValidate, Err: ErrMissingVersion},
			}
			p.metrics.IncPublishResult(key, metrics.ResultFailed)
		} else {
			res = p.publish(ctx, batch.RunID, key, v, opts)
		}

		switch {
		case res.Skipped:
			batch.Skipped++
		case res.Success:
			batch.Succeeded++
		default:
			batch.Failed++
			failed[key] = true
		}
		batch.Results = append(batch.Results, res)
	}

	p.logger.Logf("publish run %s: %s", batch.RunID, batch.Summary())
	return batch
}

// skipsPublish reports whether key is a known package marked skip_publish. Such packages need no version.
func (p *Pipeline) skipsPublish(key string) bool {
	d, err := p.catalog.Get(key)
	return err == nil && d.SkipPublish
}

func (p *Pipeline) blockedBy(key string, failed map[string]bool) (string, bool) {
	if !p.config.BlockDependents || len(failed) == 0 {
		return "", false
	}
	d, err := p.catalog.Get(key)
	if err != nil {
		return "", false
	}
	for _, dep := range d.Dependencies {
		if failed[dep] {
			return dep, true
		}
	}
	return "", false
}

func (p *Pipeline) publish(ctx context.Context, runID, key, next string, opts Options) (res Result) {
	start := time.Now()
	res = Result{PackageKey: key, DryRun: opts.DryRun, Version: next}
	defer func() {
		res.Duration = time.Since(start)
		p.record(res)
	}()

	d, err := p.catalog.Get(key)
	if err != nil {
		res.Err = &StageError{PackageKey: key, Stage: StageValidate, Err: err}
		p.dispatch(ctx, hooks.OnPublishError, res, res.Err)
		return res
	}
	if d.SkipPublish {
		res.Skipped = true
		res.Success = true
		p.logger.Logf("package %s: %v", key, ErrPublishSkipped)
		return res
	}

	p.dispatch(ctx, hooks.BeforePublish, publishEvent{RunID: runID, PackageKey: key, Version: next, DryRun: opts.DryRun}, nil)

	stages := []struct {
		stage        Stage
		writesOutput bool
		run          func() (string, bool, error)
	}{
		{StageValidate, false, func() (string, bool, error) { return p.validate(d, next, &res) }},
		{StageVersion, false, func() (string, bool, error) { return p.writeVersion(d, next, opts) }},
		{StageBuild, false, func() (string, bool, error) { return p.build(ctx, d) }},
		{StageManifest, true, func() (string, bool, error) { return p.writeManifest(d, next, opts) }},
		{StagePublish, false, func() (string, bool, error) { return p.runPublish(ctx, d, opts) }},
	}

	for _, s := range stages {
		stepStart := time.Now()
		description, executed, err := runStage(s.run)
		step := Step{
			Stage:       s.stage,
			Description: description,
			Executed:    executed,
			DryRunWrite: opts.DryRun && executed && s.writesOutput,
			Duration:    time.Since(stepStart),
		}
		res.Steps = append(res.Steps, step)
		p.metrics.ObserveStageDuration(key, string(s.stage), step.Duration)
		if err != nil {
			res.Err = &StageError{PackageKey: key, Stage: s.stage, Err: err}
			p.logger.Warnf("%v", res.Err)
			p.dispatch(ctx, hooks.OnPublishError, res, res.Err)
			return res
		}
	}

	res.Success = true
	p.dispatch(ctx, hooks.AfterPublish, res, nil)
	return res
}

// runStage converts a panicking stage into ErrStagePanic.
func runStage(run func() (string, bool, error)) (description string, executed bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStagePanic, r)
		}
	}()
	return run()
}

func (p *Pipeline) validate(d packages.Descriptor, next string, res *Result) (string, bool, error) {
	current, err := d.Version()
	if err != nil {
		return "read current version", true, err
	}
	res.PreviousVersion = current
	if _, err := version.ValidateNext(next, current); err != nil {
		return fmt.Sprintf("validate %s > %s", next, current), true, err
	}
	return fmt.Sprintf("validate %s > %s", next, current), true, nil
}

func (p *Pipeline) writeVersion(d packages.Descriptor, next string, opts Options) (string, bool, error) {
	description := fmt.Sprintf("write version %s to %s", next, packages.MetadataFile)
	if opts.DryRun {
		return description, false, nil
	}
	return description, true, d.SetVersion(next)
}

func (p *Pipeline) build(ctx context.Context, d packages.Descriptor) (string, bool, error) {
	line := d.BuildCommand
	if line == "" {
		line = DefaultBuildCommand
	}
	cmd, err := command.Parse(line)
	if err != nil {
		return line, false, err
	}
	cmd.Dir = d.Dir()
	cmd.Capture = true

	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return cmd.String(), true, err
	}
	return cmd.String(), true, nil
}

func (p *Pipeline) writeManifest(d packages.Descriptor, next string, opts Options) (string, bool, error) {
	meta, err := d.Metadata()
	if err != nil {
		return "read metadata", true, err
	}
	if meta.Name == "" {
		meta.Name = d.Name
	}
	out := d.OutputPath()
	description := fmt.Sprintf("write publish manifest to %s", out)
	if opts.DryRun {
		description += " (dry run, build output only)"
	}
	return description, true, p.store.WriteManifest(out, packages.NewManifest(meta, next))
}

func (p *Pipeline) runPublish(ctx context.Context, d packages.Descriptor, opts Options) (string, bool, error) {
	line := p.config.Command
	if opts.DryRun {
		line = p.config.DryRunCommand
	}
	cmd, err := command.Parse(line)
	if err != nil {
		return line, false, err
	}
	cmd.Dir = d.OutputPath()
	cmd.Capture = true

	if _, err := p.runner.Run(ctx, cmd); err != nil {
		return cmd.String(), true, err
	}
	return cmd.String(), true, nil
}

// dispatch runs publish hooks in aggregate-all mode. Observer failures are logged and never abort the pipeline.
func (p *Pipeline) dispatch(ctx context.Context, name string, payload interface{}, cause error) {
	results, err := p.hooks.Dispatch(ctx, name, &hooks.Context{Hook: name, Payload: payload, Error: cause}, hooks.AggregateAll)
	if err != nil {
		p.logger.Warnf("hook %s: %v", name, err)
	}
	for _, r := range hooks.Failures(results) {
		p.metrics.IncHookFailure(name)
		p.logger.Warnf("hook %s (%s): %v", name, r.OwnerName, r.Err)
	}
}

func (p *Pipeline) record(res Result) {
	switch {
	case res.Skipped:
		p.metrics.IncPublishResult(res.PackageKey, metrics.ResultSkipped)
	case res.Success && res.DryRun:
		p.metrics.IncPublishResult(res.PackageKey, metrics.ResultDryRun)
	case res.Success:
		p.metrics.IncPublishResult(res.PackageKey, metrics.ResultSuccess)
	default:
		p.metrics.IncPublishResult(res.PackageKey, metrics.ResultFailed)
	}
}

// IsStage reports whether err is a StageError raised at stage.
func IsStage(err error, stage Stage) bool {
	var stageErr *StageError
	return errors.As(err, &stageErr) && stageErr.Stage == stage
}
