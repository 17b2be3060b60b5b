package extension

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lerenn/release-manager/pkg/deploy"
	"github.com/lerenn/release-manager/pkg/fs"
	"github.com/lerenn/release-manager/pkg/hooks"
	"github.com/lerenn/release-manager/pkg/logger"
)

// ScriptExt is the file extension of interpreted extension sources.
const ScriptExt = ".go"

// Candidate is a discovered extension source.
type Candidate struct {
	// Path is the file or directory the extension was discovered at.
	Path string
	// Source is the file evaluated for this candidate.
	Source string
	// Manifest is set for directory extensions.
	Manifest *Manifest
}

// NewLoaderParams contains parameters for creating a new Loader.
type NewLoaderParams struct {
	Dirs       []string
	FS         fs.FS
	Hooks      hooks.BusInterface
	Strategies deploy.RegistryInterface
	Logger     logger.Logger
	// Settings are shared with every extension and overridden by manifest and declared settings.
	Settings map[string]interface{}
}

type entry struct {
	ext       Extension
	desc      Descriptor
	handle    *Handle
	candidate Candidate
	declared  map[string]interface{}
}

// Loader owns the extension table. It is not safe for concurrent use.
type Loader struct {
	dirs       []string
	fs         fs.FS
	hooks      hooks.BusInterface
	strategies deploy.RegistryInterface
	logger     logger.Logger
	settings   map[string]interface{}

	cache   *moduleCache
	entries map[string]*entry
	order   []string
}

// NewLoader creates a new Loader.
func NewLoader(params NewLoaderParams) *Loader {
	l := &Loader{
		dirs:       params.Dirs,
		fs:         params.FS,
		hooks:      params.Hooks,
		strategies: params.Strategies,
		logger:     params.Logger,
		settings:   params.Settings,
		entries:    make(map[string]*entry),
	}
	if l.fs == nil {
		l.fs = fs.NewFS()
	}
	if l.hooks == nil {
		l.hooks = hooks.NewBus()
	}
	if l.logger == nil {
		l.logger = logger.NewNoopLogger()
	}
	l.cache = newModuleCache(l.fs)
	return l
}

// Dirs returns the configured extension directories.
func (l *Loader) Dirs() []string {
	return append([]string(nil), l.dirs...)
}

// Discover enumerates the extension candidates of dirs, creating missing directories.
// A subdirectory with a manifest is a directory extension; any other non-hidden .go file
// is a single-file extension. Broken candidates are reported as skips.
func (l *Loader) Discover(dirs []string) ([]Candidate, []Skip, error) {
	var candidates []Candidate
	var skipped []Skip

	for _, dir := range dirs {
		if err := l.fs.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create extension directory %s: %w", dir, err)
		}
		entries, err := l.fs.ReadDir(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read extension directory %s: %w", dir, err)
		}

		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() {
				hasManifest, err := l.fs.Exists(filepath.Join(path, ManifestFile))
				if err != nil || !hasManifest {
					continue
				}
			} else if !isScript(e.Name()) {
				continue
			}

			c, err := l.candidate(path)
			if err != nil {
				l.logger.Warnf("skipping extension %s: %v", path, err)
				skipped = append(skipped, Skip{Path: path, Err: err})
				continue
			}
			candidates = append(candidates, c)
		}
	}
	return candidates, skipped, nil
}

func isScript(name string) bool {
	return !strings.HasPrefix(name, ".") &&
		strings.HasSuffix(name, ScriptExt) &&
		!strings.HasSuffix(name, "_test"+ScriptExt)
}

// candidate resolves a file or manifest directory into a Candidate.
func (l *Loader) candidate(path string) (Candidate, error) {
	isDir, err := l.fs.IsDir(path)
	if err != nil {
		return Candidate{}, err
	}
	if !isDir {
		if !isScript(filepath.Base(path)) {
			return Candidate{}, fmt.Errorf("%w: %s", ErrNotACandidate, path)
		}
		return Candidate{Path: path, Source: path}, nil
	}

	data, err := l.fs.ReadFile(filepath.Join(path, ManifestFile))
	if err != nil {
		if l.fs.IsNotExist(err) {
			return Candidate{}, fmt.Errorf("%w: %s has no %s", ErrNotACandidate, path, ManifestFile)
		}
		return Candidate{}, err
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return Candidate{}, fmt.Errorf("%s: %w", path, err)
	}

	source := filepath.Join(path, manifest.Main)
	exists, err := l.fs.Exists(source)
	if err != nil {
		return Candidate{}, err
	}
	if !exists {
		return Candidate{}, fmt.Errorf("%w: %s", ErrMainNotFound, source)
	}
	return Candidate{Path: path, Source: source, Manifest: manifest}, nil
}

// LoadAll discovers and loads every candidate of the configured directories.
// A failing candidate is logged and skipped.
func (l *Loader) LoadAll() (Report, error) {
	candidates, skipped, err := l.Discover(l.dirs)
	if err != nil {
		return Report{}, err
	}

	report := Report{Skipped: skipped}
	for _, c := range candidates {
		desc, err := l.loadCandidate(c, nil)
		if err != nil {
			l.logger.Warnf("skipping extension %s: %v", c.Path, err)
			report.Skipped = append(report.Skipped, Skip{Path: c.Path, Err: err})
			continue
		}
		report.Loaded = append(report.Loaded, desc)
	}
	return report, nil
}

// Load evaluates the extension at path (a source file or a manifest directory) and registers it.
// An extension with the same name is unloaded first.
func (l *Loader) Load(path string, declared map[string]interface{}) (Descriptor, error) {
	c, err := l.candidate(path)
	if err != nil {
		return Descriptor{}, err
	}
	return l.loadCandidate(c, declared)
}

func (l *Loader) loadCandidate(c Candidate, declared map[string]interface{}) (Descriptor, error) {
	mod, err := l.cache.get(c.Source)
	if err != nil {
		return Descriptor{}, err
	}
	ext, err := newScriptExtension(mod, c.Manifest)
	if err != nil {
		l.cache.evict(c.Source)
		return Descriptor{}, err
	}

	desc := Descriptor{
		Name:        ext.Name(),
		Version:     ext.Version(),
		Description: ext.Description(),
		SourcePath:  c.Source,
	}
	if c.Manifest != nil {
		desc.Author = c.Manifest.Author
	}

	e := &entry{ext: ext, desc: desc, candidate: c, declared: declared}
	if err := l.install(e); err != nil {
		l.cache.evict(c.Source)
		return Descriptor{}, err
	}
	return l.describe(e), nil
}

// Register installs a native extension.
func (l *Loader) Register(ext Extension, declared map[string]interface{}) (Descriptor, error) {
	if ext == nil || ext.Name() == "" {
		return Descriptor{}, fmt.Errorf("%w: extension has no name", ErrInvalidExtension)
	}
	desc := Descriptor{Name: ext.Name(), BuiltIn: true}
	if v, ok := ext.(Versioned); ok {
		desc.Version = v.Version()
	}
	if d, ok := ext.(Described); ok {
		desc.Description = d.Description()
	}

	e := &entry{ext: ext, desc: desc, declared: declared}
	if err := l.install(e); err != nil {
		return Descriptor{}, err
	}
	return l.describe(e), nil
}

// install configures, registers and initializes e. On failure nothing of e stays registered.
func (l *Loader) install(e *entry) error {
	name := e.desc.Name
	settings := l.mergeSettings(e)

	if c, ok := e.ext.(Configurer); ok {
		if err := c.Configure(settings); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfigureFailed, name, err)
		}
	}

	if prev, exists := l.entries[name]; exists {
		l.logger.Logf("replacing extension %s", name)
		l.remove(prev, prev.desc.SourcePath != e.desc.SourcePath)
	}

	e.desc.LoadedAt = time.Now()
	e.desc.Config = settings
	e.desc.Config["name"] = name
	e.desc.Config["path"] = e.desc.SourcePath
	e.desc.Config["loadTime"] = e.desc.LoadedAt
	e.handle = &Handle{owner: name, loader: l, settings: settings}
	l.entries[name] = e
	l.order = append(l.order, name)

	if i, ok := e.ext.(Initializer); ok {
		if err := i.Initialize(e.handle); err != nil {
			l.remove(e, false)
			return fmt.Errorf("%w: %s: %w", ErrInitializeFailed, name, err)
		}
	}

	l.logger.Logf("loaded extension %s %s", name, e.desc.Version)
	l.dispatch(hooks.ExtensionLoaded, l.describe(e))
	return nil
}

// mergeSettings layers shared, manifest and declared settings.
func (l *Loader) mergeSettings(e *entry) map[string]interface{} {
	merged := make(map[string]interface{})
	for k, v := range l.settings {
		merged[k] = v
	}
	if e.candidate.Manifest != nil {
		for k, v := range e.candidate.Manifest.Settings {
			merged[k] = v
		}
	}
	for k, v := range e.declared {
		merged[k] = v
	}
	return merged
}

// remove tears down e: destroy, then drop its hooks, strategies and table entry.
// evict drops the cached module so the next load reads the source again.
func (l *Loader) remove(e *entry, evict bool) {
	name := e.desc.Name
	if d, ok := e.ext.(Destroyer); ok {
		if err := d.Destroy(); err != nil {
			l.logger.Warnf("extension %s: destroy: %v", name, err)
		}
	}
	if e.handle != nil {
		l.hooks.Unregister(name)
		if l.strategies != nil {
			for _, key := range e.handle.strategies {
				l.strategies.UnregisterStrategy(key)
			}
		}
	}
	if l.entries[name] == e {
		delete(l.entries, name)
		for i, n := range l.order {
			if n == name {
				l.order = append(l.order[:i], l.order[i+1:]...)
				break
			}
		}
	}
	if evict && e.desc.SourcePath != "" {
		l.cache.evict(e.desc.SourcePath)
	}
}

// Unload tears down the named extension and evicts its source from the module cache.
// Unloading an extension that is not loaded returns ErrNotFound and changes nothing.
func (l *Loader) Unload(name string) error {
	e, ok := l.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	desc := l.describe(e)
	l.remove(e, true)
	l.logger.Logf("unloaded extension %s", name)
	l.dispatch(hooks.ExtensionUnloaded, desc)
	return nil
}

// Reload unloads the named extension and loads it again from its original path and settings.
// The source and manifest are read again.
func (l *Loader) Reload(name string) (Descriptor, error) {
	e, ok := l.entries[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err := l.Unload(name); err != nil {
		return Descriptor{}, err
	}
	if e.desc.BuiltIn {
		return l.Register(e.ext, e.declared)
	}
	c, err := l.candidate(e.candidate.Path)
	if err != nil {
		return Descriptor{}, err
	}
	return l.loadCandidate(c, e.declared)
}

// Get returns the descriptor of the named extension.
func (l *Loader) Get(name string) (Descriptor, bool) {
	e, ok := l.entries[name]
	if !ok {
		return Descriptor{}, false
	}
	return l.describe(e), true
}

// Has reports whether the named extension is loaded.
func (l *Loader) Has(name string) bool {
	_, ok := l.entries[name]
	return ok
}

// List returns the loaded extensions in load order.
func (l *Loader) List() []Descriptor {
	out := make([]Descriptor, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.describe(l.entries[name]))
	}
	return out
}

// Stats reports table size, hook registrations owned by extensions and cached modules.
func (l *Loader) Stats() Stats {
	s := Stats{Extensions: len(l.entries), Cached: l.cache.len()}
	for _, e := range l.entries {
		s.Hooks += l.hooks.CountByOwner(e.desc.Name)
		if e.handle != nil {
			s.Strategies += len(e.handle.strategies)
		}
	}
	return s
}

// Close unloads every extension, most recent first.
func (l *Loader) Close() {
	for i := len(l.order) - 1; i >= 0; i-- {
		if err := l.Unload(l.order[i]); err != nil {
			l.logger.Warnf("%v", err)
		}
	}
}

// Owner returns the extension whose source is path, if any.
func (l *Loader) Owner(path string) (string, bool) {
	for _, name := range l.order {
		e := l.entries[name]
		if e.desc.SourcePath == path || (e.candidate.Manifest != nil && e.candidate.Path == path) {
			return name, true
		}
	}
	return "", false
}

func (l *Loader) describe(e *entry) Descriptor {
	d := e.desc
	d.Hooks = l.hooks.CountByOwner(d.Name)
	if e.handle != nil {
		d.Strategies = append([]string(nil), e.handle.strategies...)
	}
	return d
}

// dispatch notifies observers of lifecycle changes. Observer failures are logged.
func (l *Loader) dispatch(name string, desc Descriptor) {
	results, err := l.hooks.Dispatch(context.Background(), name, &hooks.Context{Hook: name, Payload: desc}, hooks.AggregateAll)
	if err != nil {
		l.logger.Warnf("hook %s: %v", name, err)
	}
	for _, r := range hooks.Failures(results) {
		l.logger.Warnf("hook %s (%s): %v", name, r.OwnerName, r.Err)
	}
}
