//go:build unit

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration("utils", "build", 150*time.Millisecond)
	pr.IncPublishResult("utils", ResultSuccess)
	pr.IncPublishResult("main", ResultFailed)
	pr.ObserveDeployDuration("docs", time.Second, true)
	pr.IncHookFailure("onError")
	pr.IncHookFailure("onError")

	assert.Equal(t, 1.0, testutil.ToFloat64(pr.publishResults.WithLabelValues("utils", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pr.hookFailures.WithLabelValues("onError")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 4)
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncPublishResult("utils", ResultDryRun)

	path := filepath.Join(t.TempDir(), "relm.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `relm_publish_results_total{package="utils",result="dry_run"} 1`)
}

func TestNilPrometheusRecorder(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncHookFailure("x")
		pr.ObserveStageDuration("a", "b", time.Second)
	})
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.IncPublishResult("x", ResultSkipped)
		r.ObserveDeployDuration("x", time.Second, false)
	})
}
