package release

import (
	"errors"
	"fmt"
)

// Error definitions for release package.
var (
	ErrMissingVersion   = errors.New("no version supplied for package")
	ErrDependencyFailed = errors.New("a dependency failed to publish")
	ErrPublishSkipped   = errors.New("package is configured to skip publishing")
	ErrStagePanic       = errors.New("stage panicked")
)

// StageError reports the package and pipeline stage where publishing failed.
type StageError struct {
	PackageKey string
	Stage      Stage
	Err        error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("package %s: %s: %v", e.PackageKey, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}
