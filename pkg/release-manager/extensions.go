package releasemanager

import (
	"context"

	"github.com/lerenn/release-manager/pkg/extension"
	"github.com/lerenn/release-manager/pkg/release-manager/consts"
)

// WatchParams controls extension hot reload.
type WatchParams struct {
	Context context.Context
	// Changes receives every applied change when not nil.
	Changes chan<- extension.Change
}

// ListExtensions describes the loaded extensions in load order.
func (r *realReleaseManager) ListExtensions() []extension.Descriptor {
	var list []extension.Descriptor
	_ = r.execute(consts.ListExtensions, func() error {
		list = r.loader.List()
		return nil
	})
	return list
}

// ExtensionStats summarizes the extension table.
func (r *realReleaseManager) ExtensionStats() extension.Stats {
	return r.loader.Stats()
}

// LoadReport returns the startup discovery report.
func (r *realReleaseManager) LoadReport() extension.Report {
	return r.report
}

// ReloadExtension tears down and loads the named extension again.
func (r *realReleaseManager) ReloadExtension(name string) (extension.Descriptor, error) {
	var desc extension.Descriptor
	err := r.execute(consts.ReloadExtension, func() error {
		var err error
		desc, err = r.loader.Reload(name)
		return err
	})
	return desc, err
}

// UnloadExtension tears down the named extension. Unknown names return extension.ErrNotFound.
func (r *realReleaseManager) UnloadExtension(name string) error {
	return r.execute(consts.UnloadExtension, func() error {
		return r.loader.Unload(name)
	})
}

// WatchExtensions blocks until params.Context is done. No other operation may run meanwhile.
func (r *realReleaseManager) WatchExtensions(params WatchParams) error {
	return r.execute(consts.WatchExtensions, func() error {
		ctx := params.Context
		if ctx == nil {
			ctx = context.Background()
		}
		w := extension.NewWatcher(r.loader, extension.DefaultDebounce, r.deps.Logger)
		return w.Run(ctx, params.Changes)
	})
}
