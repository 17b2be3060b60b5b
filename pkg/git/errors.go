package git

import "errors"

// Git-specific error types.
var (
	ErrNotARepository = errors.New("not a git repository")
	ErrDetachedHead   = errors.New("HEAD is detached")
	ErrRemoteNotFound = errors.New("remote not found")
)
