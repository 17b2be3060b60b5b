// Package hooks provides the named-hook dispatch bus that decouples lifecycle events from their observers.
package hooks

import (
	"context"
	"time"
)

// Hook names dispatched by the release manager. Extensions may dispatch and observe any other name.
const (
	BeforeDeploy      = "beforeDeploy"
	AfterDeploy       = "afterDeploy"
	OnError           = "onError"
	BeforePublish     = "beforePublish"
	AfterPublish      = "afterPublish"
	OnPublishError    = "onPublishError"
	ExtensionLoaded   = "extensionLoaded"
	ExtensionUnloaded = "extensionUnloaded"
)

// Mode selects how Dispatch reacts to a failing callback.
type Mode int

const (
	// FailFast stops at the first failing callback and returns its error.
	FailFast Mode = iota
	// AggregateAll runs every callback and reports each outcome.
	AggregateAll
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case FailFast:
		return "fail-fast"
	case AggregateAll:
		return "aggregate-all"
	default:
		return "unknown"
	}
}

// Fielder is implemented by payloads that can be flattened for script callbacks.
type Fielder interface {
	Fields() map[string]interface{}
}

// Context is passed to every callback of one dispatch.
type Context struct {
	Hook     string
	Payload  interface{}
	Error    error
	Metadata map[string]interface{}
}

// Fields flattens the context into a map. Payload fields come first; hook, error and metadata override them.
func (c *Context) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if f, ok := c.Payload.(Fielder); ok {
		for k, v := range f.Fields() {
			fields[k] = v
		}
	}
	for k, v := range c.Metadata {
		fields[k] = v
	}
	fields["hook"] = c.Hook
	if c.Error != nil {
		fields["error"] = c.Error.Error()
	}
	return fields
}

// Callback is a side-effecting hook function. It may block; dispatch waits for it.
type Callback func(ctx context.Context, hc *Context) error

// Registration binds a callback to a hook name.
type Registration struct {
	HookName     string
	OwnerName    string
	Callback     Callback
	RegisteredAt time.Time
}

// Result is the outcome of one callback in a dispatch.
type Result struct {
	HookName  string
	OwnerName string
	Success   bool
	Err       error
	Duration  time.Duration
}
