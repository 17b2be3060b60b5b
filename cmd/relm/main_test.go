//go:build unit

package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lerenn/release-manager/cmd/relm/internal/cli"
	"github.com/lerenn/release-manager/pkg/deploy"
	"github.com/lerenn/release-manager/pkg/release"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"init", "publish", "order", "packages", "deploy", "strategies", "extensions"} {
		assert.Contains(t, names, want)
	}
}

func TestInitCmd(t *testing.T) {
	original := cli.ConfigPath
	defer func() { cli.ConfigPath = original }()

	path := filepath.Join(t.TempDir(), "relm.yaml")
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"init", "-c", path})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), path)
}

func TestDisplayBatch(t *testing.T) {
	out := &bytes.Buffer{}
	displayBatch(out, release.BatchResult{
		Results: []release.Result{
			{PackageKey: "core", Success: true, PreviousVersion: "1.0.0", Version: "1.1.0"},
			{PackageKey: "ui", Err: errors.New("package ui: build: exit status 1")},
			{PackageKey: "docs", Success: true, Skipped: true},
		},
		Succeeded: 1,
		Failed:    1,
		Skipped:   1,
	})

	assert.Contains(t, out.String(), "✓ core 1.0.0 -> 1.1.0")
	assert.Contains(t, out.String(), "✗ ui: package ui: build: exit status 1")
	assert.Contains(t, out.String(), "- docs skipped")
	assert.Contains(t, out.String(), "1 succeeded, 1 failed, 1 skipped")
}

func TestDisplayBatch_VerboseDryRunSteps(t *testing.T) {
	original := cli.Verbose
	cli.Verbose = true
	defer func() { cli.Verbose = original }()

	out := &bytes.Buffer{}
	displayBatch(out, release.BatchResult{
		Results: []release.Result{{
			PackageKey: "core", Success: true, DryRun: true, PreviousVersion: "1.0.0", Version: "1.0.1",
			Steps: []release.Step{
				{Stage: release.StageVersion, Description: "write version 1.0.1 to package.json"},
				{Stage: release.StageManifest, Description: "write publish manifest to dist", Executed: true, DryRunWrite: true, Duration: time.Millisecond},
			},
		}},
		Succeeded: 1,
	})

	assert.Contains(t, out.String(), "write version 1.0.1 to package.json [planned]")
	assert.Contains(t, out.String(), "write publish manifest to dist [dry-run write, 1ms]")
}

func TestDisplayDeployment(t *testing.T) {
	out := &bytes.Buffer{}
	displayDeployment(out, deploy.Result{
		StrategyKey: "static",
		Success:     true,
		Plan:        []string{"would upload 3 entries from dist"},
		Details:     map[string]interface{}{"entries": 3, "sourceDir": "dist"},
		Duration:    time.Second,
	})

	assert.Equal(t, "  would upload 3 entries from dist\n  entries: 3\n  sourceDir: dist\nDeployed with static in 1s\n", out.String())
}
