package fs

import "errors"

// Error definitions for fs package.
var (
	// ErrAtomicWrite wraps failures of WriteFileAtomic.
	ErrAtomicWrite = errors.New("atomic write failed")
)
