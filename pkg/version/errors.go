package version

import "errors"

// Error definitions for version package.
var (
	ErrInvalidFormat = errors.New("invalid version")
	ErrNotIncreasing = errors.New("version must be greater than the current version")
	ErrUnknownBump   = errors.New("unknown bump kind")
)
