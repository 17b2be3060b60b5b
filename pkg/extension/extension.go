// Package extension discovers, loads and manages extensions. An extension is either a Go value
// registered by the program or a Go source file interpreted at runtime, and it attaches behavior
// through hooks and deployment strategies.
package extension

import (
	"time"
)

// Extension is the minimal contract: an identity.
type Extension interface {
	Name() string
}

// Versioned is implemented by extensions that report a version.
type Versioned interface {
	Version() string
}

// Described is implemented by extensions that report a description.
type Described interface {
	Description() string
}

// Configurer is implemented by extensions that accept settings before initialization.
type Configurer interface {
	Configure(settings map[string]interface{}) error
}

// Initializer is implemented by extensions that register hooks or strategies.
type Initializer interface {
	Initialize(h *Handle) error
}

// Destroyer is implemented by extensions that release resources on unload.
type Destroyer interface {
	Destroy() error
}

// Descriptor identifies a loaded extension.
type Descriptor struct {
	Name        string
	Version     string
	Description string
	Author      string
	SourcePath  string
	LoadedAt    time.Time
	BuiltIn     bool
	Hooks       int
	Strategies  []string
	Config      map[string]interface{}
}

// Fields flattens the descriptor for hook callbacks.
func (d Descriptor) Fields() map[string]interface{} {
	return map[string]interface{}{
		"name":        d.Name,
		"version":     d.Version,
		"description": d.Description,
		"sourcePath":  d.SourcePath,
		"loadedAt":    d.LoadedAt.Format(time.RFC3339),
		"builtIn":     d.BuiltIn,
	}
}

// Stats summarizes the loader state.
type Stats struct {
	Extensions int
	Hooks      int
	Strategies int
	Cached     int
}

// Skip records a candidate that could not be loaded.
type Skip struct {
	Path string
	Err  error
}

// Report is the outcome of a load pass over the extension directories.
type Report struct {
	Loaded  []Descriptor
	Skipped []Skip
}
