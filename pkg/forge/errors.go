package forge

import "errors"

// Forge-specific errors
var (
	ErrUnsupportedForge  = errors.New("unsupported forge")
	ErrInvalidRemoteURL  = errors.New("invalid remote URL")
	ErrReleaseExists     = errors.New("release already exists")
	ErrRepositoryMissing = errors.New("repository not found on forge")
	ErrRateLimited       = errors.New("rate limited by forge API")
	ErrUnauthorized      = errors.New("unauthorized access to forge API")
)
