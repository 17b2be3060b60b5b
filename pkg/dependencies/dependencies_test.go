//go:build unit

package dependencies

import (
	"testing"

	"github.com/lerenn/release-manager/pkg/command"
	"github.com/lerenn/release-manager/pkg/config"
	"github.com/lerenn/release-manager/pkg/hooks"
	"github.com/lerenn/release-manager/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDependencies_New_Defaults tests that New() creates a Dependencies instance with proper defaults
func TestDependencies_New_Defaults(t *testing.T) {
	deps := New()

	assert.NotNil(t, deps.FS)
	assert.NotNil(t, deps.Git)
	assert.NotNil(t, deps.Logger)
	assert.NotNil(t, deps.Hooks)
	assert.NotNil(t, deps.Metrics)

	assert.Nil(t, deps.Config)
	assert.Nil(t, deps.Runner)
	assert.Nil(t, deps.Forge)
	assert.Nil(t, deps.NotifyDialer)

	// Validation fails until a config manager is set
	err := deps.Validate()
	assert.ErrorIs(t, err, ErrConfigMissing)

	deps.WithConfig(config.NewManager("config.yaml"))
	assert.ErrorIs(t, deps.Validate(), ErrRunnerMissing)

	deps.WithRunner(command.NewRunner(command.NewRunnerParams{}))
	assert.NoError(t, deps.Validate())
}

// TestDependencies_ErrorTypes tests that each missing dependency is reported
func TestDependencies_ErrorTypes(t *testing.T) {
	testCases := []struct {
		name     string
		clear    func(d *Dependencies)
		expected error
	}{
		{"FS missing", func(d *Dependencies) { d.FS = nil }, ErrFSMissing},
		{"Git missing", func(d *Dependencies) { d.Git = nil }, ErrGitMissing},
		{"Runner missing", func(d *Dependencies) { d.Runner = nil }, ErrRunnerMissing},
		{"Logger missing", func(d *Dependencies) { d.Logger = nil }, ErrLoggerMissing},
		{"Hooks missing", func(d *Dependencies) { d.Hooks = nil }, ErrHooksMissing},
		{"Metrics missing", func(d *Dependencies) { d.Metrics = nil }, ErrMetricsMissing},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			deps := New().
				WithConfig(config.NewManager("config.yaml")).
				WithRunner(command.NewRunner(command.NewRunnerParams{}))
			tc.clear(deps)
			err := deps.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

// TestDependencies_ValidationOrder tests that validation stops at the first missing dependency
func TestDependencies_ValidationOrder(t *testing.T) {
	deps := &Dependencies{}

	err := deps.Validate()
	assert.ErrorIs(t, err, ErrFSMissing)
	assert.NotErrorIs(t, err, ErrConfigMissing)
}

// TestDependencies_With tests the fluent setters
func TestDependencies_With(t *testing.T) {
	bus := hooks.NewBus()
	log := logger.NewQuietLogger()

	deps := New().WithHooks(bus).WithLogger(log)

	assert.Same(t, bus, deps.Hooks)
	assert.Equal(t, log, deps.Logger)
}
