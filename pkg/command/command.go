// Package command runs external processes (build, publish and deploy tools) for the release manager.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=command.go -destination=mocks/command.gen.go -package=mocks

// Command describes one external process invocation.
type Command struct {
	// Name is the executable, resolved through PATH.
	Name string
	// Args are passed verbatim.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is appended to the current process environment.
	Env []string
	// Capture collects stdout/stderr into the Result instead of streaming them.
	Capture bool
	// IgnoreExitCode swallows a non-zero exit and reports it through Result.ExitCode.
	IgnoreExitCode bool
}

// String renders the command line as it would be typed in a shell.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			arg = fmt.Sprintf("%q", arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// Parse splits a whitespace-separated command line (as written in configuration) into a Command.
// Double-quoted segments are kept together.
func Parse(line string) (Command, error) {
	var fields []string
	var current strings.Builder
	inQuotes := false
	hasField := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			hasField = true
		case (r == ' ' || r == '\t') && !inQuotes:
			if hasField {
				fields = append(fields, current.String())
				current.Reset()
				hasField = false
			}
		default:
			current.WriteRune(r)
			hasField = true
		}
	}
	if inQuotes {
		return Command{}, fmt.Errorf("%w: unterminated quote in %q", ErrInvalidCommand, line)
	}
	if hasField {
		fields = append(fields, current.String())
	}
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", ErrInvalidCommand)
	}
	return Command{Name: fields[0], Args: fields[1:]}, nil
}

// Result holds the outcome of a command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner executes commands.
type Runner interface {
	// Run executes the command and waits for it to finish.
	Run(ctx context.Context, cmd Command) (Result, error)
}

// NewRunnerParams contains parameters for NewRunner.
type NewRunnerParams struct {
	// Timeout bounds every command. Zero means no timeout: a hung command blocks its caller.
	Timeout time.Duration
	// Stdout and Stderr receive streamed output for non-capturing commands. Default to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

type realRunner struct {
	timeout time.Duration
	stdout  io.Writer
	stderr  io.Writer
}

// NewRunner creates a new Runner instance.
func NewRunner(params NewRunnerParams) Runner {
	r := &realRunner{
		timeout: params.Timeout,
		stdout:  params.Stdout,
		stderr:  params.Stderr,
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	return r
}

// Run executes the command and waits for it to finish.
func (r *realRunner) Run(ctx context.Context, c Command) (Result, error) {
	if c.Name == "" {
		return Result{}, fmt.Errorf("%w: empty command", ErrInvalidCommand)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	setProcGroup(cmd)
	cmd.Cancel = func() error {
		return killProcGroup(cmd)
	}

	var stdout, stderr bytes.Buffer
	if c.Capture {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = r.stdout
		cmd.Stderr = io.MultiWriter(r.stderr, &stderr)
	}

	start := time.Now()
	runErr := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runErr == nil {
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%w after %v: %s", ErrTimeout, r.timeout, c)
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("%s: %w", c, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if c.IgnoreExitCode {
			return res, nil
		}
		return res, fmt.Errorf("%w: %s exited with code %d%s", ErrNonZeroExit, c, res.ExitCode, tail(res.Stderr))
	}
	return res, fmt.Errorf("%w: %s: %w", ErrStartFailed, c, runErr)
}

// tail returns the last stderr line formatted for an error message.
func tail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	lines := strings.Split(stderr, "\n")
	return ": " + strings.TrimSpace(lines[len(lines)-1])
}
