// Package forge talks to code-hosting forges to publish releases.
package forge

import (
	"context"
	"fmt"

	"github.com/lerenn/release-manager/pkg/logger"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=forge.go -destination=mocks/forge.gen.go -package=mocks

// Repository identifies a repository on a forge.
type Repository struct {
	Owner string
	Name  string
}

// String returns owner/name.
func (r Repository) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// ReleaseRequest describes a release to create.
type ReleaseRequest struct {
	Repository Repository
	Tag        string
	Name       string
	Body       string
	Target     string
	Draft      bool
	Prerelease bool
}

// ReleaseInfo is a release as reported by the forge.
type ReleaseInfo struct {
	ID  int64
	Tag string
	URL string
}

// Forge interface defines the methods that all forge implementations must provide.
type Forge interface {
	// Name returns the name of the forge
	Name() string

	// ParseRepository extracts the repository from a remote URL
	ParseRepository(remoteURL string) (Repository, error)

	// ValidateForgeRepository validates that repository has supported forge remote origin
	ValidateForgeRepository(repoPath string) error

	// CreateRelease creates a tagged release
	CreateRelease(ctx context.Context, req ReleaseRequest) (*ReleaseInfo, error)
}

// ManagerInterface defines the interface for forge management.
type ManagerInterface interface {
	// GetForge returns the forge implementation for the given name
	GetForge(name string) (Forge, error)
	// GetForgeForRepository returns the appropriate forge for the given repository
	GetForgeForRepository(repoPath string) (Forge, error)
}

// Manager manages forge implementations and provides a unified interface.
type Manager struct {
	forges map[string]Forge
	logger logger.Logger
}

// NewManager creates a new forge manager with the given forge implementations.
func NewManager(logger logger.Logger, forges ...Forge) *Manager {
	m := &Manager{
		forges: make(map[string]Forge),
		logger: logger,
	}
	for _, f := range forges {
		m.forges[f.Name()] = f
	}
	return m
}

// GetForge returns the forge implementation for the given name.
func (m *Manager) GetForge(name string) (Forge, error) {
	forge, exists := m.forges[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedForge, name)
	}
	return forge, nil
}

// GetForgeForRepository returns the appropriate forge for the given repository.
func (m *Manager) GetForgeForRepository(repoPath string) (Forge, error) {
	for _, forge := range m.forges {
		if err := forge.ValidateForgeRepository(repoPath); err == nil {
			return forge, nil
		}
		m.logger.Logf("forge %s does not match %s", forge.Name(), repoPath)
	}
	return nil, fmt.Errorf("%w: no supported forge found for repository", ErrUnsupportedForge)
}
