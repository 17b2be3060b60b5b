// Package packages describes the publishable units of the repository, reads and writes their
// metadata, and orders them by dependency.
package packages

import (
	"fmt"
	"path/filepath"
)

// DefaultOutputDir is the build output directory used when a package does not configure one.
const DefaultOutputDir = "dist"

// Spec is the static configuration of one publishable package.
type Spec struct {
	Key          string   `yaml:"key"`
	Name         string   `yaml:"name"`
	DisplayName  string   `yaml:"display_name,omitempty"`
	Path         string   `yaml:"path"`
	BuildCommand string   `yaml:"build_command,omitempty"`
	OutputDir    string   `yaml:"output_dir,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	SkipPublish  bool     `yaml:"skip_publish,omitempty"`
}

// Output returns the build output directory relative to the package root.
func (s Spec) Output() string {
	if s.OutputDir == "" {
		return DefaultOutputDir
	}
	return s.OutputDir
}

// Label returns the display name, falling back to the key.
func (s Spec) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Key
}

// Descriptor is a view of a package over the metadata store. Fields that live in the
// metadata file are read on every call, so an update is visible to the next read.
type Descriptor struct {
	Spec
	root  string
	store Store
}

// Dir returns the absolute package root.
func (d Descriptor) Dir() string {
	return filepath.Join(d.root, d.Path)
}

// OutputPath returns the absolute build output directory.
func (d Descriptor) OutputPath() string {
	return filepath.Join(d.Dir(), d.Output())
}

// Version reads the current persisted version.
func (d Descriptor) Version() (string, error) {
	meta, err := d.store.Read(d.Dir())
	if err != nil {
		return "", err
	}
	return meta.Version, nil
}

// Metadata reads the full persisted metadata.
func (d Descriptor) Metadata() (Metadata, error) {
	return d.store.Read(d.Dir())
}

// SetVersion persists a new version.
func (d Descriptor) SetVersion(version string) error {
	return d.store.WriteVersion(d.Dir(), version)
}

// Catalog holds the configured packages in declaration order.
type Catalog struct {
	root  string
	store Store
	specs []Spec
	index map[string]int
}

// NewCatalog creates a catalog. Keys must be unique and non-empty.
func NewCatalog(root string, store Store, specs []Spec) (*Catalog, error) {
	c := &Catalog{
		root:  root,
		store: store,
		specs: make([]Spec, 0, len(specs)),
		index: make(map[string]int, len(specs)),
	}
	for _, spec := range specs {
		if spec.Key == "" {
			return nil, ErrEmptyKey
		}
		if _, exists := c.index[spec.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, spec.Key)
		}
		c.index[spec.Key] = len(c.specs)
		c.specs = append(c.specs, spec)
	}
	return c, nil
}

// Keys returns the package keys in declaration order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.specs))
	for i, spec := range c.specs {
		keys[i] = spec.Key
	}
	return keys
}

// Get returns the descriptor of key.
func (c *Catalog) Get(key string) (Descriptor, error) {
	i, ok := c.index[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownPackage, key)
	}
	return Descriptor{Spec: c.specs[i], root: c.root, store: c.store}, nil
}

// Has reports whether key is configured.
func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Graph returns the dependency graph in declaration order.
func (c *Catalog) Graph() []Node {
	nodes := make([]Node, len(c.specs))
	for i, spec := range c.specs {
		nodes[i] = Node{Key: spec.Key, Dependencies: spec.Dependencies}
	}
	return nodes
}

// Order validates the whole graph and returns the selected keys in publish order.
// An empty selection selects every package.
func (c *Catalog) Order(selected []string) ([]string, error) {
	order, err := ResolveOrder(c.Graph())
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return order, nil
	}

	wanted := make(map[string]bool, len(selected))
	for _, key := range selected {
		if !c.Has(key) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPackage, key)
		}
		wanted[key] = true
	}
	filtered := make([]string, 0, len(selected))
	for _, key := range order {
		if wanted[key] {
			filtered = append(filtered, key)
		}
	}
	return filtered, nil
}

// Dependents returns the keys that depend on key, directly or transitively, in declaration order.
func (c *Catalog) Dependents(key string) []string {
	affected := map[string]bool{key: true}
	changed := true
	for changed {
		changed = false
		for _, spec := range c.specs {
			if affected[spec.Key] {
				continue
			}
			for _, dep := range spec.Dependencies {
				if affected[dep] {
					affected[spec.Key] = true
					changed = true
					break
				}
			}
		}
	}
	var out []string
	for _, spec := range c.specs {
		if spec.Key != key && affected[spec.Key] {
			out = append(out, spec.Key)
		}
	}
	return out
}
