package deploy

import (
	"errors"
	"fmt"
)

// Error definitions for deploy package.
var (
	ErrUnknownStrategy  = errors.New("unknown deployment strategy")
	ErrEmptyStrategyKey = errors.New("strategy key cannot be empty")
	ErrNilStrategy      = errors.New("strategy cannot be nil")
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")
	ErrOutputMissing    = errors.New("expected output directory does not exist")
	ErrSourceMissing    = errors.New("source directory does not exist")
	ErrSessionClosed    = errors.New("deployment session is closed")
	ErrStrategyPanic    = errors.New("strategy panicked")
)

// Error reports the strategy and deployment stage where a deployment failed.
type Error struct {
	StrategyKey string
	Stage       Stage
	Err         error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("deploy %s: %s: %v", e.StrategyKey, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
