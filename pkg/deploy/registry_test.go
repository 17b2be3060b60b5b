//go:build unit

package deploy

import (
	"context"
	"errors"
	"testing"

	commandMocks "github.com/lerenn/release-manager/pkg/command/mocks"
	"github.com/lerenn/release-manager/pkg/git"
	gitMocks "github.com/lerenn/release-manager/pkg/git/mocks"
	"github.com/lerenn/release-manager/pkg/hooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type registryFixture struct {
	root     string
	git      *gitMocks.MockGit
	runner   *commandMocks.MockRunner
	bus      *hooks.Bus
	registry *Registry
}

func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &registryFixture{
		root:   t.TempDir(),
		git:    gitMocks.NewMockGit(ctrl),
		runner: commandMocks.NewMockRunner(ctrl),
		bus:    hooks.NewBus(),
	}
	f.registry = NewRegistry(NewRegistryParams{
		RootDir: f.root,
		Runner:  f.runner,
		Git:     f.git,
		Hooks:   f.bus,
	})
	return f
}

func (f *registryFixture) record(t *testing.T, calls *[]string, names ...string) {
	t.Helper()
	for _, name := range names {
		name := name
		require.NoError(t, f.bus.Register(name, func(_ context.Context, hc *hooks.Context) error {
			*calls = append(*calls, name)
			return nil
		}, "test"))
	}
}

func cleanStatus() git.Status {
	return git.Status{Branch: "main", Clean: true}
}

func TestRegistry_RegisterAndList(t *testing.T) {
	f := newRegistryFixture(t)
	noop := func(context.Context, *Session) (Result, error) { return Result{}, nil }

	require.NoError(t, f.registry.RegisterStrategy("a", NewStrategy(Info{DisplayName: "A", Icon: "x"}, noop)))
	require.NoError(t, f.registry.RegisterStrategy("b", NewStrategy(Info{}, noop)))
	require.NoError(t, f.registry.RegisterStrategy("a", NewStrategy(Info{DisplayName: "A2", Description: "replaced"}, noop)))

	infos := f.registry.ListStrategies()
	require.Len(t, infos, 2)
	assert.Equal(t, Info{Key: "a", DisplayName: "A2", Description: "replaced"}, infos[0])
	assert.Equal(t, Info{Key: "b", DisplayName: "b"}, infos[1])

	assert.ErrorIs(t, f.registry.RegisterStrategy("", NewStrategy(Info{}, noop)), ErrEmptyStrategyKey)
	assert.ErrorIs(t, f.registry.RegisterStrategy("c", nil), ErrNilStrategy)

	assert.True(t, f.registry.UnregisterStrategy("a"))
	assert.False(t, f.registry.UnregisterStrategy("a"))
	assert.False(t, f.registry.HasStrategy("a"))
	assert.Len(t, f.registry.ListStrategies(), 1)
}

func TestRegistry_DeployUnknownStrategy(t *testing.T) {
	f := newRegistryFixture(t)
	var calls []string
	f.record(t, &calls, hooks.BeforeDeploy, hooks.OnError)

	_, err := f.registry.Deploy(context.Background(), "nope", Options{})
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Empty(t, calls)
}

func TestRegistry_PreDeployCheck(t *testing.T) {
	dirty := git.Status{Branch: "feature", Changes: []string{"a.go"}}

	tests := []struct {
		name     string
		opts     Options
		expected error
	}{
		{name: "dirty tree fails", opts: Options{}, expected: ErrDirtyWorkingTree},
		{name: "allow dirty", opts: Options{AllowDirty: true}},
		{name: "force", opts: Options{Force: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRegistryFixture(t)
			f.git.EXPECT().Status(f.root).Return(dirty, nil)

			status, err := f.registry.PreDeployCheck(context.Background(), tt.opts)
			if tt.expected != nil {
				assert.ErrorIs(t, err, tt.expected)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, "feature", status.Branch)
		})
	}
}

func TestRegistry_DirtyTreeStopsBeforeStrategy(t *testing.T) {
	f := newRegistryFixture(t)
	f.git.EXPECT().Status(f.root).Return(git.Status{Branch: "main", Changes: []string{"x"}}, nil)

	ran := false
	require.NoError(t, f.registry.RegisterStrategy("s", NewStrategy(Info{}, func(context.Context, *Session) (Result, error) {
		ran = true
		return Result{}, nil
	})))

	var calls []string
	f.record(t, &calls, hooks.BeforeDeploy, hooks.AfterDeploy, hooks.OnError)

	_, err := f.registry.Deploy(context.Background(), "s", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDirtyWorkingTree)
	assert.False(t, ran)
	assert.Equal(t, []string{hooks.BeforeDeploy, hooks.OnError}, calls)

	var deployErr *Error
	require.ErrorAs(t, err, &deployErr)
	assert.Equal(t, StagePreflight, deployErr.Stage)
	assert.Equal(t, "s", deployErr.StrategyKey)
}

func TestRegistry_StrategyFailureRunsOnError(t *testing.T) {
	f := newRegistryFixture(t)
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil)

	boom := errors.New("upload interrupted")
	require.NoError(t, f.registry.RegisterStrategy("s", NewStrategy(Info{}, func(context.Context, *Session) (Result, error) {
		return Result{}, boom
	})))

	var calls []string
	var seen error
	var seenFields map[string]interface{}
	f.record(t, &calls, hooks.BeforeDeploy, hooks.AfterDeploy)
	require.NoError(t, f.bus.Register(hooks.OnError, func(_ context.Context, hc *hooks.Context) error {
		calls = append(calls, hooks.OnError)
		seen = hc.Payload.(*Context).Err
		seenFields = hc.Fields()
		return errors.New("observer failure is not propagated")
	}, "test"))

	_, err := f.registry.Deploy(context.Background(), "s", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, seen, boom)
	assert.Equal(t, "main", seenFields["branch"])
	assert.Contains(t, seenFields["error"], "upload interrupted")
	assert.Equal(t, []string{hooks.BeforeDeploy, hooks.OnError}, calls)
}

func TestRegistry_StrategyPanic(t *testing.T) {
	f := newRegistryFixture(t)
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil)
	require.NoError(t, f.registry.RegisterStrategy("s", NewStrategy(Info{}, func(context.Context, *Session) (Result, error) {
		panic("bad strategy")
	})))

	_, err := f.registry.Deploy(context.Background(), "s", Options{})
	assert.ErrorIs(t, err, ErrStrategyPanic)
	assert.True(t, f.registry.HasStrategy("s"))
}

func TestRegistry_BeforeDeployFailureAborts(t *testing.T) {
	f := newRegistryFixture(t)
	veto := errors.New("freeze window")
	require.NoError(t, f.bus.Register(hooks.BeforeDeploy, func(context.Context, *hooks.Context) error {
		return veto
	}, "guard"))
	require.NoError(t, f.registry.RegisterStrategy("s", NewStrategy(Info{}, func(context.Context, *Session) (Result, error) {
		t.Fatal("strategy must not run")
		return Result{}, nil
	})))

	_, err := f.registry.Deploy(context.Background(), "s", Options{})
	assert.ErrorIs(t, err, veto)

	var deployErr *Error
	require.ErrorAs(t, err, &deployErr)
	assert.Equal(t, StageBeforeDeploy, deployErr.Stage)
}

func TestRegistry_DeploySuccess(t *testing.T) {
	f := newRegistryFixture(t)
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil)

	require.NoError(t, f.registry.RegisterStrategy("s", NewStrategy(Info{}, func(_ context.Context, s *Session) (Result, error) {
		assert.Equal(t, "main", s.CurrentBranch())
		assert.Equal(t, "s", s.StrategyKey)
		s.Plan("did the thing")
		return Result{Details: map[string]interface{}{"k": "v"}}, nil
	})))

	var calls []string
	var after *Context
	f.record(t, &calls, hooks.BeforeDeploy, hooks.OnError)
	require.NoError(t, f.bus.Register(hooks.AfterDeploy, func(_ context.Context, hc *hooks.Context) error {
		calls = append(calls, hooks.AfterDeploy)
		after = hc.Payload.(*Context)
		return nil
	}, "test"))

	res, err := f.registry.Deploy(context.Background(), "s", Options{})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, []string{"did the thing"}, res.Plan)
	assert.Equal(t, "v", res.Details["k"])
	assert.Equal(t, []string{hooks.BeforeDeploy, hooks.AfterDeploy}, calls)

	require.NotNil(t, after)
	require.NotNil(t, after.Result)
	assert.True(t, after.Result.Success)
	assert.False(t, after.EndTime.Before(after.StartTime))
}

func TestRegistry_SessionClosedAfterDeploy(t *testing.T) {
	f := newRegistryFixture(t)
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil)

	var kept *Session
	require.NoError(t, f.registry.RegisterStrategy("s", NewStrategy(Info{}, func(_ context.Context, s *Session) (Result, error) {
		kept = s
		return Result{}, nil
	})))

	_, err := f.registry.Deploy(context.Background(), "s", Options{})
	require.NoError(t, err)

	_, err = kept.Run(context.Background(), mustParse(t, "echo late"))
	assert.ErrorIs(t, err, ErrSessionClosed)
}
