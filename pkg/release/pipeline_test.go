//go:build unit

package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lerenn/release-manager/pkg/command"
	commandMocks "github.com/lerenn/release-manager/pkg/command/mocks"
	"github.com/lerenn/release-manager/pkg/fs"
	"github.com/lerenn/release-manager/pkg/hooks"
	hooksMocks "github.com/lerenn/release-manager/pkg/hooks/mocks"
	"github.com/lerenn/release-manager/pkg/packages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	root     string
	runner   *commandMocks.MockRunner
	bus      *hooks.Bus
	pipeline *Pipeline
}

func newFixture(t *testing.T, cfg Config, specs ...packages.Spec) *fixture {
	t.Helper()
	root := t.TempDir()
	for _, spec := range specs {
		dir := filepath.Join(root, spec.Path)
		require.NoError(t, os.MkdirAll(dir, 0755))
		doc := fmt.Sprintf(`{
  "name": %q,
  "version": "1.0.0",
  "license": "MIT",
  "scripts": {"build": "vite build"},
  "devDependencies": {"vite": "^5.0.0"}
}
`, spec.Name)
		require.NoError(t, os.WriteFile(filepath.Join(dir, packages.MetadataFile), []byte(doc), 0644))
	}

	store := packages.NewStore(fs.NewFS())
	catalog, err := packages.NewCatalog(root, store, specs)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	f := &fixture{root: root, runner: commandMocks.NewMockRunner(ctrl), bus: hooks.NewBus()}
	f.pipeline = NewPipeline(NewPipelineParams{
		Catalog: catalog,
		Store:   store,
		Runner:  f.runner,
		Hooks:   f.bus,
		Config:  cfg,
	})
	return f
}

func (f *fixture) version(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.root, path, packages.MetadataFile))
	require.NoError(t, err)
	var doc struct {
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc.Version
}

var threePackages = []packages.Spec{
	{Key: "utils", Name: "@acme/utils", Path: "packages/utils"},
	{Key: "hooks", Name: "@acme/hooks", Path: "packages/hooks"},
	{Key: "main", Name: "@acme/main", Path: "packages/main", Dependencies: []string{"utils", "hooks"}},
}

func TestPublishPackage_Success(t *testing.T) {
	f := newFixture(t, Config{}, threePackages[0])
	dir := filepath.Join(f.root, "packages/utils")

	gomock.InOrder(
		f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd command.Command) (command.Result, error) {
			assert.Equal(t, "npm run build", cmd.String())
			assert.Equal(t, dir, cmd.Dir)
			return command.Result{}, nil
		}),
		f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd command.Command) (command.Result, error) {
			assert.Equal(t, "npm publish --access public", cmd.String())
			assert.Equal(t, filepath.Join(dir, "dist"), cmd.Dir)
			return command.Result{}, nil
		}),
	)

	res := f.pipeline.PublishPackage(context.Background(), "utils", "1.1.0", Options{})
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.Equal(t, "1.1.0", res.Version)
	assert.Equal(t, "1.0.0", res.PreviousVersion)
	require.Len(t, res.Steps, 5)
	assert.False(t, res.Steps[3].DryRunWrite)
	assert.Equal(t, "1.1.0", f.version(t, "packages/utils"))

	data, err := os.ReadFile(filepath.Join(dir, "dist", packages.MetadataFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "1.1.0"`)
	assert.NotContains(t, string(data), "scripts")
	assert.NotContains(t, string(data), "devDependencies")
}

func TestPublishPackage_DryRun(t *testing.T) {
	f := newFixture(t, Config{}, threePackages[0])

	var commands []string
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(func(_ context.Context, cmd command.Command) (command.Result, error) {
		commands = append(commands, cmd.String())
		return command.Result{}, nil
	})

	res := f.pipeline.PublishPackage(context.Background(), "utils", "1.0.1", Options{DryRun: true})
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.True(t, res.DryRun)
	assert.Equal(t, []string{"npm run build", "npm pack --dry-run"}, commands)
	assert.Equal(t, "1.0.0", f.version(t, "packages/utils"))

	require.Len(t, res.Steps, 5)
	assert.Equal(t, StageVersion, res.Steps[1].Stage)
	assert.False(t, res.Steps[1].Executed)
	assert.Contains(t, res.Steps[1].Description, "1.0.1")

	manifest := res.Steps[3]
	assert.Equal(t, StageManifest, manifest.Stage)
	assert.True(t, manifest.Executed)
	assert.True(t, manifest.DryRunWrite)
	assert.Contains(t, manifest.Description, "dry run")
	assert.FileExists(t, filepath.Join(f.root, "packages/utils", "dist", packages.MetadataFile))
	for _, step := range res.Steps {
		if step.Stage != StageManifest {
			assert.False(t, step.DryRunWrite, step.Stage)
		}
	}
}

func TestPublishPackage_InvalidVersion(t *testing.T) {
	for _, candidate := range []string{"1.0.0", "0.9.9", "1.2", "v1.2.3", "1.2.3-beta"} {
		t.Run(candidate, func(t *testing.T) {
			f := newFixture(t, Config{}, threePackages[0])

			res := f.pipeline.PublishPackage(context.Background(), "utils", candidate, Options{})
			require.Error(t, res.Err)
			assert.False(t, res.Success)
			assert.True(t, IsStage(res.Err, StageValidate))
			assert.Equal(t, "1.0.0", f.version(t, "packages/utils"))
		})
	}
}

func TestPublishPackage_UnknownPackage(t *testing.T) {
	f := newFixture(t, Config{}, threePackages[0])

	res := f.pipeline.PublishPackage(context.Background(), "ghost", "1.0.1", Options{})
	assert.ErrorIs(t, res.Err, packages.ErrUnknownPackage)
}

func TestPublishPackage_SkipPublish(t *testing.T) {
	spec := packages.Spec{Key: "docs", Name: "docs", Path: "docs", SkipPublish: true}
	f := newFixture(t, Config{}, spec)

	res := f.pipeline.PublishPackage(context.Background(), "docs", "1.0.1", Options{})
	assert.True(t, res.Skipped)
	assert.True(t, res.Success)
	assert.Equal(t, "1.0.0", f.version(t, "docs"))
}

func TestPublishAll_SkipPublishNeedsNoVersion(t *testing.T) {
	docs := packages.Spec{Key: "docs", Name: "docs", Path: "docs", SkipPublish: true}
	f := newFixture(t, Config{BlockDependents: true}, threePackages[0], docs)
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(2).Return(command.Result{}, nil)

	batch := f.pipeline.PublishAll(context.Background(), []string{"utils", "docs"}, map[string]string{"utils": "1.0.1"}, Options{})
	assert.True(t, batch.OK())
	assert.Equal(t, 1, batch.Succeeded)
	assert.Equal(t, 1, batch.Skipped)
	assert.Equal(t, 0, batch.Failed)

	require.Len(t, batch.Results, 2)
	assert.True(t, batch.Results[1].Skipped)
	assert.NoError(t, batch.Results[1].Err)
	assert.Empty(t, batch.Results[1].Steps)
	assert.Equal(t, "1.0.0", f.version(t, "docs"))
}

func TestPublishPackage_CustomCommands(t *testing.T) {
	spec := threePackages[0]
	spec.BuildCommand = `pnpm run "build lib"`
	spec.OutputDir = "lib"
	f := newFixture(t, Config{DryRunCommand: "pnpm pack --dry-run"}, spec)

	var commands []command.Command
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(func(_ context.Context, cmd command.Command) (command.Result, error) {
		commands = append(commands, cmd)
		return command.Result{}, nil
	})

	res := f.pipeline.PublishPackage(context.Background(), "utils", "2.0.0", Options{DryRun: true})
	require.NoError(t, res.Err)
	require.Len(t, commands, 2)
	assert.Equal(t, []string{"run", "build lib"}, commands[0].Args)
	assert.Equal(t, "pnpm", commands[1].Name)
	assert.Equal(t, filepath.Join(f.root, "packages/utils", "lib"), commands[1].Dir)
}

func TestPublishAll_FailureDoesNotStopBatch(t *testing.T) {
	f := newFixture(t, Config{}, threePackages...)
	buildErr := fmt.Errorf("%w: exit status 1", command.ErrNonZeroExit)
	hooksDir := filepath.Join(f.root, "packages/hooks")

	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(func(_ context.Context, cmd command.Command) (command.Result, error) {
		if cmd.Dir == hooksDir {
			return command.Result{ExitCode: 1}, buildErr
		}
		return command.Result{}, nil
	})

	batch := f.pipeline.PublishAll(context.Background(),
		[]string{"utils", "hooks", "main"},
		map[string]string{"utils": "1.0.1", "hooks": "1.0.1", "main": "1.0.1"},
		Options{})

	require.Len(t, batch.Results, 3)
	assert.NotEmpty(t, batch.RunID)
	assert.Equal(t, 2, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)
	assert.False(t, batch.OK())

	assert.True(t, batch.Results[0].Success)
	assert.False(t, batch.Results[1].Success)
	assert.ErrorIs(t, batch.Results[1].Err, command.ErrNonZeroExit)
	assert.True(t, IsStage(batch.Results[1].Err, StageBuild))
	assert.Contains(t, batch.Results[1].Err.Error(), "package hooks: build")
	assert.True(t, batch.Results[2].Success)
}

func TestPublishAll_BlockDependents(t *testing.T) {
	f := newFixture(t, Config{BlockDependents: true}, threePackages...)
	hooksDir := filepath.Join(f.root, "packages/hooks")
	mainDir := filepath.Join(f.root, "packages/main")

	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(func(_ context.Context, cmd command.Command) (command.Result, error) {
		assert.NotEqual(t, mainDir, cmd.Dir)
		if cmd.Dir == hooksDir {
			return command.Result{}, command.ErrNonZeroExit
		}
		return command.Result{}, nil
	})

	batch := f.pipeline.PublishAll(context.Background(),
		[]string{"utils", "hooks", "main"},
		map[string]string{"utils": "1.0.1", "hooks": "1.0.1", "main": "1.0.1"},
		Options{})

	require.Len(t, batch.Results, 3)
	assert.Equal(t, 1, batch.Succeeded)
	assert.Equal(t, 2, batch.Failed)
	assert.ErrorIs(t, batch.Results[2].Err, ErrDependencyFailed)
	assert.Equal(t, "1.0.0", f.version(t, "packages/main"))
}

func TestPublishAll_MissingVersion(t *testing.T) {
	f := newFixture(t, Config{}, threePackages[0])

	batch := f.pipeline.PublishAll(context.Background(), []string{"utils"}, nil, Options{})
	require.Len(t, batch.Results, 1)
	assert.ErrorIs(t, batch.Results[0].Err, ErrMissingVersion)
}

func TestPublish_HooksAreAggregated(t *testing.T) {
	f := newFixture(t, Config{}, threePackages[0])
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).AnyTimes().Return(command.Result{}, nil)

	var seen []string
	failing := func(_ context.Context, hc *hooks.Context) error {
		seen = append(seen, hc.Hook+":failing")
		return errors.New("observer down")
	}
	recording := func(_ context.Context, hc *hooks.Context) error {
		seen = append(seen, fmt.Sprintf("%s:%v", hc.Hook, hc.Fields()["packageKey"]))
		return nil
	}
	require.NoError(t, f.bus.Register(hooks.BeforePublish, failing, "flaky"))
	require.NoError(t, f.bus.Register(hooks.BeforePublish, recording, "recorder"))
	require.NoError(t, f.bus.Register(hooks.AfterPublish, recording, "recorder"))
	require.NoError(t, f.bus.Register(hooks.OnPublishError, recording, "recorder"))

	res := f.pipeline.PublishPackage(context.Background(), "utils", "1.0.1", Options{})
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"beforePublish:failing", "beforePublish:utils", "afterPublish:utils"}, seen)
}

func TestPublish_ErrorHookReceivesError(t *testing.T) {
	f := newFixture(t, Config{}, threePackages[0])

	var got error
	require.NoError(t, f.bus.Register(hooks.OnPublishError, func(_ context.Context, hc *hooks.Context) error {
		got = hc.Error
		return nil
	}, "recorder"))

	res := f.pipeline.PublishPackage(context.Background(), "utils", "0.0.1", Options{})
	require.Error(t, res.Err)
	assert.Equal(t, res.Err, got)
}

func TestPublish_DispatchErrorIsNotFatal(t *testing.T) {
	f := newFixture(t, Config{}, threePackages[0])
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(2).Return(command.Result{}, nil)

	bus := hooksMocks.NewMockBusInterface(gomock.NewController(t))
	gomock.InOrder(
		bus.EXPECT().Dispatch(gomock.Any(), hooks.BeforePublish, gomock.Any(), hooks.AggregateAll).
			Return(nil, errors.New("bus unavailable")),
		bus.EXPECT().Dispatch(gomock.Any(), hooks.AfterPublish, gomock.Any(), hooks.AggregateAll).
			DoAndReturn(func(_ context.Context, _ string, hc *hooks.Context, _ hooks.Mode) ([]hooks.Result, error) {
				assert.Equal(t, "1.0.1", hc.Fields()["version"])
				return nil, nil
			}),
	)
	f.pipeline.hooks = bus

	res := f.pipeline.PublishPackage(context.Background(), "utils", "1.0.1", Options{})
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
}
