package extension

import "errors"

// Error definitions for extension package.
var (
	ErrNotFound          = errors.New("extension not found")
	ErrInvalidManifest   = errors.New("invalid extension manifest")
	ErrMainNotFound      = errors.New("extension main entry not found")
	ErrInvalidExtension  = errors.New("invalid extension")
	ErrNotACandidate     = errors.New("not an extension candidate")
	ErrEvaluation        = errors.New("failed to evaluate extension source")
	ErrConfigureFailed   = errors.New("extension configure failed")
	ErrInitializeFailed  = errors.New("extension initialize failed")
	ErrScriptPanic       = errors.New("extension script panicked")
	ErrBadSignature      = errors.New("extension function has an unexpected signature")
	ErrNoStrategyHandler = errors.New("strategy handler cannot be nil")
)
