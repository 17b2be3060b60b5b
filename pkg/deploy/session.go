package deploy

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lerenn/release-manager/pkg/command"
	"github.com/lerenn/release-manager/pkg/fs"
	"github.com/lerenn/release-manager/pkg/git"
	"github.com/lerenn/release-manager/pkg/logger"
)

// Session owns the state of a single deployment. It is created by Registry.Deploy,
// handed to the strategy and closed when the deployment ends.
type Session struct {
	ID          string
	StrategyKey string
	Options     Options
	RootDir     string
	StartTime   time.Time
	GitStatus   git.Status

	runner command.Runner
	git    git.Git
	fs     fs.FS
	logger logger.Logger
	plan   []string
	closed bool
}

func newSession(key string, opts Options, r *Registry) *Session {
	return &Session{
		ID:          uuid.NewString(),
		StrategyKey: key,
		Options:     opts,
		RootDir:     r.rootDir,
		StartTime:   time.Now(),
		runner:      r.runner,
		git:         r.git,
		fs:          r.fs,
		logger:      r.logger,
	}
}

// DryRun reports whether the session must not perform destructive actions.
func (s *Session) DryRun() bool {
	return s.Options.DryRun
}

// Path resolves rel against the repository root. Absolute paths are returned unchanged.
func (s *Session) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(s.RootDir, rel)
}

// CurrentBranch returns the branch inspected by the pre-deploy check.
func (s *Session) CurrentBranch() string {
	return s.GitStatus.Branch
}

// Setting returns a strategy specific option.
func (s *Session) Setting(key string) (interface{}, bool) {
	v, ok := s.Options.Settings[key]
	return v, ok
}

// Plan records an action taken or, in dry-run, an action that would be taken.
func (s *Session) Plan(format string, args ...interface{}) {
	entry := fmt.Sprintf(format, args...)
	s.plan = append(s.plan, entry)
	s.logger.Logf("[%s] %s", s.StrategyKey, entry)
}

// Steps returns the recorded plan.
func (s *Session) Steps() []string {
	return append([]string(nil), s.plan...)
}

// Run executes cmd from the repository root unless cmd.Dir is set.
// In dry-run the command is only recorded.
func (s *Session) Run(ctx context.Context, cmd command.Command) (command.Result, error) {
	if s.closed {
		return command.Result{}, ErrSessionClosed
	}
	if cmd.Dir == "" {
		cmd.Dir = s.RootDir
	}
	if s.DryRun() {
		s.Plan("would run: %s (in %s)", cmd, cmd.Dir)
		return command.Result{}, nil
	}
	s.Plan("run: %s (in %s)", cmd, cmd.Dir)
	return s.runner.Run(ctx, cmd)
}

// RequireDir fails with sentinel when path is not an existing directory.
func (s *Session) RequireDir(path string, sentinel error) error {
	ok, err := s.fs.IsDir(path)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", sentinel, path)
	}
	return nil
}

// FS returns the filesystem helper.
func (s *Session) FS() fs.FS { return s.fs }

// Git returns the version-control helper.
func (s *Session) Git() git.Git { return s.git }

// Logger returns the session logger.
func (s *Session) Logger() logger.Logger { return s.logger }

func (s *Session) close() {
	s.closed = true
}
