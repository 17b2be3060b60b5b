package extension

import (
	"fmt"
	"strings"
	"time"

	"github.com/lerenn/release-manager/pkg/fs"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// module is one evaluated extension source.
type module struct {
	path        string
	interp      *interp.Interpreter
	evaluatedAt time.Time
}

// moduleCache owns the evaluated sources. A cached module is reused until it is evicted,
// after which the next load reads and evaluates the file again.
type moduleCache struct {
	fs      fs.FS
	modules map[string]*module
}

func newModuleCache(fsys fs.FS) *moduleCache {
	return &moduleCache{fs: fsys, modules: make(map[string]*module)}
}

func (c *moduleCache) get(path string) (*module, error) {
	if m, ok := c.modules[path]; ok {
		return m, nil
	}

	code, err := c.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrEvaluation, path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrEvaluation, path)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEvaluation, path, err)
	}
	if err := i.Use(Symbols); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEvaluation, path, err)
	}
	if _, err := i.Eval(string(code)); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEvaluation, path, err)
	}

	m := &module{path: path, interp: i, evaluatedAt: time.Now()}
	c.modules[path] = m
	return m, nil
}

func (c *moduleCache) evict(path string) bool {
	if _, ok := c.modules[path]; !ok {
		return false
	}
	delete(c.modules, path)
	return true
}

func (c *moduleCache) len() int {
	return len(c.modules)
}
