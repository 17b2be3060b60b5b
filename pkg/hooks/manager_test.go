//go:build unit

package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lerenn/release-manager/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingCallback(calls *[]string, name string, err error) Callback {
	return func(_ context.Context, _ *Context) error {
		*calls = append(*calls, name)
		return err
	}
}

func TestBus_Register_Validation(t *testing.T) {
	bus := NewBus()

	err := bus.Register("", recordingCallback(&[]string{}, "a", nil), "owner")
	assert.ErrorIs(t, err, ErrEmptyHookName)

	err = bus.Register(AfterDeploy, nil, "owner")
	assert.ErrorIs(t, err, ErrNilCallback)

	assert.Equal(t, 0, bus.Count())
}

func TestBus_Dispatch_UnknownHookIsEmpty(t *testing.T) {
	bus := NewBus()

	results, err := bus.Dispatch(context.Background(), "neverRegistered", nil, FailFast)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBus_Dispatch_FailFast_StopsAtFirstFailure(t *testing.T) {
	bus := NewBus()
	var calls []string
	boom := errors.New("boom")

	require.NoError(t, bus.Register(BeforeDeploy, recordingCallback(&calls, "first", nil), "a"))
	require.NoError(t, bus.Register(BeforeDeploy, recordingCallback(&calls, "second", boom), "b"))
	require.NoError(t, bus.Register(BeforeDeploy, recordingCallback(&calls, "third", nil), "c"))

	results, err := bus.Dispatch(context.Background(), BeforeDeploy, &Context{}, FailFast)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var cbErr *CallbackError
	require.ErrorAs(t, err, &cbErr)
	assert.Equal(t, "b", cbErr.OwnerName)
	assert.Equal(t, BeforeDeploy, cbErr.HookName)

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Len(t, results, 2)
}

func TestBus_Dispatch_AggregateAll_RunsEveryCallbackInOrder(t *testing.T) {
	bus := NewBus()
	var calls []string
	outcomes := []error{nil, errors.New("first failure"), nil, errors.New("second failure"), nil}

	for i, outcome := range outcomes {
		name := fmt.Sprintf("cb%d", i)
		require.NoError(t, bus.Register("custom", recordingCallback(&calls, name, outcome), name))
	}

	results, err := bus.Dispatch(context.Background(), "custom", nil, AggregateAll)
	require.NoError(t, err)
	require.Len(t, results, len(outcomes))
	assert.Equal(t, []string{"cb0", "cb1", "cb2", "cb3", "cb4"}, calls)

	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("cb%d", i), res.OwnerName)
		assert.Equal(t, outcomes[i] == nil, res.Success)
		assert.Equal(t, outcomes[i], res.Err)
	}
	assert.Len(t, Failures(results), 2)
}

func TestBus_Dispatch_RecoversPanics(t *testing.T) {
	bus := NewBus()
	var calls []string

	require.NoError(t, bus.Register(AfterPublish, func(context.Context, *Context) error {
		panic("extension bug")
	}, "broken"))
	require.NoError(t, bus.Register(AfterPublish, recordingCallback(&calls, "healthy", nil), "healthy"))

	results, err := bus.Dispatch(context.Background(), AfterPublish, nil, AggregateAll)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, ErrCallbackPanic)
	assert.True(t, results[1].Success)
	assert.Equal(t, 2, bus.Count(), "a panicking callback must not corrupt the registry")

	_, err = bus.Dispatch(context.Background(), AfterPublish, nil, FailFast)
	assert.ErrorIs(t, err, ErrCallbackPanic)
}

func TestBus_Dispatch_SetsHookNameAndShares(t *testing.T) {
	bus := NewBus()
	require.NoError(t, bus.Register(AfterDeploy, func(_ context.Context, hc *Context) error {
		hc.Metadata["seen"] = true
		return nil
	}, "a"))
	require.NoError(t, bus.Register(AfterDeploy, func(_ context.Context, hc *Context) error {
		if hc.Metadata["seen"] != true {
			return errors.New("metadata not shared")
		}
		if hc.Hook != AfterDeploy {
			return errors.New("hook name not set")
		}
		return nil
	}, "b"))

	_, err := bus.Dispatch(context.Background(), AfterDeploy, nil, FailFast)
	assert.NoError(t, err)
}

func TestBus_Dispatch_CallbackMayRegister(t *testing.T) {
	bus := NewBus()
	require.NoError(t, bus.Register("setup", func(context.Context, *Context) error {
		return bus.Register("setup", func(context.Context, *Context) error { return nil }, "late")
	}, "early"))

	results, err := bus.Dispatch(context.Background(), "setup", nil, FailFast)
	require.NoError(t, err)
	assert.Len(t, results, 1, "registrations made during dispatch apply to the next dispatch")
	assert.Equal(t, 2, bus.Count())
}

func TestBus_UnregisterAndCounts(t *testing.T) {
	bus := NewBus()
	noop := func(context.Context, *Context) error { return nil }

	require.NoError(t, bus.Register(BeforeDeploy, noop, "notify"))
	require.NoError(t, bus.Register(AfterDeploy, noop, "notify"))
	require.NoError(t, bus.Register(AfterDeploy, noop, "audit"))

	assert.Equal(t, 3, bus.Count())
	assert.Equal(t, 2, bus.CountByOwner("notify"))

	assert.Equal(t, 2, bus.Unregister("notify"))
	assert.Equal(t, 0, bus.Unregister("notify"))
	assert.Equal(t, 1, bus.Count())
	assert.Empty(t, bus.Registrations(BeforeDeploy))

	regs := bus.Registrations(AfterDeploy)
	require.Len(t, regs, 1)
	assert.Equal(t, "audit", regs[0].OwnerName)
	assert.False(t, regs[0].RegisteredAt.IsZero())
}

type deployPayload struct{ key string }

func (p deployPayload) Fields() map[string]interface{} {
	return map[string]interface{}{"strategyKey": p.key, "hook": "overridden"}
}

func TestContext_Fields(t *testing.T) {
	hc := &Context{
		Hook:     OnError,
		Payload:  deployPayload{key: "docs"},
		Error:    errors.New("build failed"),
		Metadata: map[string]interface{}{"attempt": 1},
	}

	fields := hc.Fields()
	assert.Equal(t, "docs", fields["strategyKey"])
	assert.Equal(t, OnError, fields["hook"])
	assert.Equal(t, "build failed", fields["error"])
	assert.Equal(t, 1, fields["attempt"])
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus()
	require.NoError(t, NewLoggingObserver(logger.NewWriterLogger(&buf, true)).Register(bus))

	assert.Equal(t, 6, bus.CountByOwner(LoggingOwner))

	_, err := bus.Dispatch(context.Background(), OnError, &Context{Error: errors.New("boom")}, FailFast)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "hook onError: boom")
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "fail-fast", FailFast.String())
	assert.Equal(t, "aggregate-all", AggregateAll.String())
}
