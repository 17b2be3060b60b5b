// Package metrics records release and deployment outcomes.
package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

// Result labels.
const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultSkipped ResultLabel = "skipped"
	ResultDryRun  ResultLabel = "dry_run"
)

// Recorder receives release pipeline and deployment observations.
// NoopRecorder is used when metrics are not configured.
type Recorder interface {
	ObserveStageDuration(pkg, stage string, d time.Duration)
	IncPublishResult(pkg string, result ResultLabel)
	ObserveDeployDuration(strategy string, d time.Duration, success bool)
	IncHookFailure(hook string)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, string, time.Duration)  {}
func (NoopRecorder) IncPublishResult(string, ResultLabel)               {}
func (NoopRecorder) ObserveDeployDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncHookFailure(string)                              {}
