package cli

import "errors"

// Error definitions for the CLI.
var (
	ErrInvalidAssignment = errors.New("expected key=value")
	ErrPublishFailed     = errors.New("one or more packages failed to publish")
)
