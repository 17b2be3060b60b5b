package hooks

import (
	"errors"
	"fmt"
)

// Error definitions for hooks package.
var (
	ErrEmptyHookName = errors.New("hook name cannot be empty")
	ErrNilCallback   = errors.New("hook callback cannot be nil")
	ErrCallbackPanic = errors.New("hook callback panicked")
)

// CallbackError is returned by a fail-fast dispatch when a callback fails.
type CallbackError struct {
	HookName  string
	OwnerName string
	Err       error
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s hook from %s failed: %v", e.HookName, e.OwnerName, e.Err)
}

// Unwrap returns the callback error.
func (e *CallbackError) Unwrap() error {
	return e.Err
}
