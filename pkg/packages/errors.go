package packages

import (
	"errors"
	"fmt"
	"strings"
)

// Error definitions for packages package.
var (
	ErrEmptyKey          = errors.New("package key cannot be empty")
	ErrDuplicateKey      = errors.New("duplicate package key")
	ErrUnknownPackage    = errors.New("unknown package")
	ErrUnknownDependency = errors.New("unknown package dependency")
	ErrDependencyCycle   = errors.New("package dependency cycle")
	ErrMetadataNotFound  = errors.New("package metadata not found")
	ErrMetadataParse     = errors.New("failed to parse package metadata")
)

// CycleError names the packages of a dependency cycle.
type CycleError struct {
	Keys []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDependencyCycle, strings.Join(e.Keys, " -> "))
}

// Unwrap returns ErrDependencyCycle.
func (e *CycleError) Unwrap() error {
	return ErrDependencyCycle
}
