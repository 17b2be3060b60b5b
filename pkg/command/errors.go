package command

import "errors"

// Error definitions for command package.
var (
	ErrInvalidCommand = errors.New("invalid command")
	ErrNonZeroExit    = errors.New("command failed")
	ErrTimeout        = errors.New("command timed out")
	ErrStartFailed    = errors.New("command could not be started")
)
