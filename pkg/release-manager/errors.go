package releasemanager

import "errors"

// Error definitions for the release manager.
var (
	ErrOperationPanic = errors.New("operation panicked")
	ErrShutdown       = errors.New("release manager is shut down")
	ErrNoPackages     = errors.New("no packages selected")
	ErrVersionMissing = errors.New("no version or bump given")
	ErrMetricsExport  = errors.New("failed to export metrics")
)
