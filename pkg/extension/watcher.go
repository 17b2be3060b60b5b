package extension

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lerenn/release-manager/pkg/logger"
)

// DefaultDebounce groups bursts of filesystem events (editors often write a file several times).
const DefaultDebounce = 300 * time.Millisecond

// Watch actions.
const (
	ActionLoaded   = "loaded"
	ActionReloaded = "reloaded"
	ActionUnloaded = "unloaded"
)

// Change reports what the watcher did for one changed path.
type Change struct {
	Path   string
	Name   string
	Action string
	Err    error
}

// Watcher reloads extensions when their sources change. All loader calls happen on the
// goroutine running Run.
type Watcher struct {
	loader   *Loader
	logger   logger.Logger
	debounce time.Duration
	roots    map[string]bool
}

// NewWatcher creates a watcher over the loader's directories.
func NewWatcher(loader *Loader, debounce time.Duration, log logger.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.NewNoopLogger()
	}
	roots := make(map[string]bool)
	for _, dir := range loader.Dirs() {
		roots[filepath.Clean(dir)] = true
	}
	return &Watcher{loader: loader, logger: log, debounce: debounce, roots: roots}
}

// Run watches until ctx is done. Every applied change is sent on changes when it is not nil.
func (w *Watcher) Run(ctx context.Context, changes chan<- Change) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	for root := range w.roots {
		if err := w.watchTree(fsw, root); err != nil {
			return err
		}
	}

	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) && w.roots[filepath.Dir(filepath.Clean(ev.Name))] {
				if isDir, _ := w.loader.fs.IsDir(ev.Name); isDir {
					if err := fsw.Add(ev.Name); err != nil {
						w.logger.Warnf("watch %s: %v", ev.Name, err)
					}
				}
			}
			pending[w.target(ev.Name)] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("extension watcher: %v", err)

		case <-fire:
			fire = nil
			for path := range pending {
				change := w.apply(path)
				delete(pending, path)
				if change.Action == "" {
					continue
				}
				if change.Err != nil {
					w.logger.Warnf("extension %s: %s: %v", change.Path, change.Action, change.Err)
				}
				if changes != nil {
					select {
					case changes <- change:
					case <-ctx.Done():
						return nil
					}
				}
			}
		}
	}
}

// watchTree watches root and its direct subdirectories, where directory extensions live.
func (w *Watcher) watchTree(fsw *fsnotify.Watcher, root string) error {
	if err := w.loader.fs.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("failed to create extension directory %s: %w", root, err)
	}
	if err := fsw.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	entries, err := w.loader.fs.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to read extension directory %s: %w", root, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := fsw.Add(filepath.Join(root, e.Name())); err != nil {
				return fmt.Errorf("watch %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}

// target maps an event path to the extension path: the file itself for single-file
// extensions and the enclosing directory for directory extensions.
func (w *Watcher) target(path string) string {
	clean := filepath.Clean(path)
	if w.roots[filepath.Dir(clean)] {
		return clean
	}
	return filepath.Dir(clean)
}

func (w *Watcher) apply(path string) Change {
	change := Change{Path: path}
	exists, err := w.loader.fs.Exists(path)
	if err != nil {
		change.Err = err
		return change
	}

	name, loaded := w.loader.Owner(path)
	switch {
	case loaded && !exists:
		change.Name, change.Action = name, ActionUnloaded
		change.Err = w.loader.Unload(name)
	case loaded:
		change.Name, change.Action = name, ActionReloaded
		_, change.Err = w.loader.Reload(name)
	case exists:
		desc, err := w.loader.Load(path, nil)
		if errors.Is(err, ErrNotACandidate) {
			return Change{Path: path}
		}
		change.Name, change.Action, change.Err = desc.Name, ActionLoaded, err
	}
	return change
}
