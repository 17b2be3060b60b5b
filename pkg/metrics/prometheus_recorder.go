package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "relm"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry       *prom.Registry
	stageDuration  *prom.HistogramVec
	publishResults *prom.CounterVec
	deployDuration *prom.HistogramVec
	hookFailures   *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_stage_duration_seconds",
			Help:      "Duration of individual publish stages",
			Buckets:   prom.DefBuckets,
		}, []string{"package", "stage"}),
		publishResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "publish_results_total",
			Help:      "Package publish outcomes",
		}, []string{"package", "result"}),
		deployDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "deploy_duration_seconds",
			Help:      "Duration of deployments by strategy",
			Buckets:   prom.DefBuckets,
		}, []string{"strategy", "result"}),
		hookFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "hook_failures_total",
			Help:      "Failed hook callbacks by hook name",
		}, []string{"hook"}),
	}
	reg.MustRegister(pr.stageDuration, pr.publishResults, pr.deployDuration, pr.hookFailures)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

func (p *PrometheusRecorder) ObserveStageDuration(pkg, stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(pkg, stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPublishResult(pkg string, result ResultLabel) {
	if p == nil {
		return
	}
	p.publishResults.WithLabelValues(pkg, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveDeployDuration(strategy string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	p.deployDuration.WithLabelValues(strategy, resultOf(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncHookFailure(hook string) {
	if p == nil {
		return
	}
	p.hookFailures.WithLabelValues(hook).Inc()
}

// WriteTextfile writes the current metric values in the node exporter textfile format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func resultOf(success bool) string {
	if success {
		return string(ResultSuccess)
	}
	return string(ResultFailed)
}
