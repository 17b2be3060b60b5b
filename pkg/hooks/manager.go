package hooks

import (
	"context"
	"fmt"
	"sync"
	"time"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=manager.go -destination=mocks/manager.gen.go -package=mocks

// BusInterface defines the interface for hook registration and dispatch.
type BusInterface interface {
	// Register appends a callback to the ordered list of hookName.
	Register(hookName string, callback Callback, ownerName string) error
	// Unregister removes every callback registered by ownerName and returns how many were removed.
	Unregister(ownerName string) int
	// Dispatch invokes the callbacks of hookName in registration order.
	Dispatch(ctx context.Context, hookName string, hc *Context, mode Mode) ([]Result, error)
	// Registrations returns a copy of the callbacks registered for hookName.
	Registrations(hookName string) []Registration
	// Count returns the total number of registrations.
	Count() int
	// CountByOwner returns the number of registrations of ownerName.
	CountByOwner(ownerName string) int
}

// Bus maps hook names to ordered callback lists.
type Bus struct {
	registrations map[string][]Registration
	now           func() time.Time
	mu            sync.RWMutex
}

// NewBus creates a new Bus instance.
func NewBus() *Bus {
	return &Bus{
		registrations: make(map[string][]Registration),
		now:           time.Now,
	}
}

// Register appends a callback to the ordered list of hookName.
// Unknown hook names start with an empty list.
func (b *Bus) Register(hookName string, callback Callback, ownerName string) error {
	if hookName == "" {
		return ErrEmptyHookName
	}
	if callback == nil {
		return fmt.Errorf("%w: %s", ErrNilCallback, hookName)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.registrations[hookName] = append(b.registrations[hookName], Registration{
		HookName:     hookName,
		OwnerName:    ownerName,
		Callback:     callback,
		RegisteredAt: b.now(),
	})
	return nil
}

// Unregister removes every callback registered by ownerName and returns how many were removed.
func (b *Bus) Unregister(ownerName string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for hookName, regs := range b.registrations {
		kept := regs[:0:0]
		for _, reg := range regs {
			if reg.OwnerName == ownerName {
				removed++
				continue
			}
			kept = append(kept, reg)
		}
		if len(kept) == 0 {
			delete(b.registrations, hookName)
		} else {
			b.registrations[hookName] = kept
		}
	}
	return removed
}

// Registrations returns a copy of the callbacks registered for hookName.
func (b *Bus) Registrations(hookName string) []Registration {
	b.mu.RLock()
	defer b.mu.RUnlock()

	regs := make([]Registration, len(b.registrations[hookName]))
	copy(regs, b.registrations[hookName])
	return regs
}

// Count returns the total number of registrations.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := 0
	for _, regs := range b.registrations {
		total += len(regs)
	}
	return total
}

// CountByOwner returns the number of registrations of ownerName.
func (b *Bus) CountByOwner(ownerName string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := 0
	for _, regs := range b.registrations {
		for _, reg := range regs {
			if reg.OwnerName == ownerName {
				total++
			}
		}
	}
	return total
}

// Dispatch invokes the callbacks of hookName in registration order, waiting for each one.
//
// In FailFast mode the first failure is returned as a *CallbackError and the remaining
// callbacks are not invoked. In AggregateAll mode every callback runs, the returned error
// is always nil and each failure is reported in its Result.
//
// The callback list is snapshotted before invocation, so callbacks may register hooks.
func (b *Bus) Dispatch(ctx context.Context, hookName string, hc *Context, mode Mode) ([]Result, error) {
	if hc == nil {
		hc = &Context{}
	}
	hc.Hook = hookName
	if hc.Metadata == nil {
		hc.Metadata = make(map[string]interface{})
	}

	regs := b.Registrations(hookName)
	results := make([]Result, 0, len(regs))
	for _, reg := range regs {
		start := b.now()
		err := invoke(ctx, reg, hc)
		res := Result{
			HookName:  hookName,
			OwnerName: reg.OwnerName,
			Success:   err == nil,
			Err:       err,
			Duration:  b.now().Sub(start),
		}
		results = append(results, res)

		if err != nil && mode == FailFast {
			return results, &CallbackError{HookName: hookName, OwnerName: reg.OwnerName, Err: err}
		}
	}
	return results, nil
}

// invoke runs one callback and converts a panic into an error.
func invoke(ctx context.Context, reg Registration, hc *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
		}
	}()
	return reg.Callback(ctx, hc)
}

// Failures returns the failed entries of an aggregate dispatch.
func Failures(results []Result) []Result {
	var failed []Result
	for _, res := range results {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	return failed
}
