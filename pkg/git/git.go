// Package git provides the version-control inspection used by pre-deploy checks and metadata synthesis.
package git

import (
	"errors"
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=git.go -destination=mocks/git.gen.go -package=mocks

// Status is a snapshot of a working tree.
type Status struct {
	Branch  string
	Clean   bool
	Changes []string
}

// Git interface provides version-control inspection capabilities.
type Git interface {
	// Status reports the branch and pending changes of the working tree containing repoPath.
	Status(repoPath string) (Status, error)

	// IsClean reports whether the working tree has no staged, unstaged or untracked changes.
	IsClean(repoPath string) (bool, error)

	// GetCurrentBranch gets the current branch name.
	GetCurrentBranch(repoPath string) (string, error)

	// GetRemoteURL gets the first URL of a remote.
	GetRemoteURL(repoPath, remoteName string) (string, error)
}

type realGit struct{}

// NewGit creates a new Git instance.
func NewGit() Git {
	return &realGit{}
}

// open finds the repository containing path, walking up parent directories.
func (g *realGit) open(path string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
		}
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return repo, nil
}

// Status reports the branch and pending changes of the working tree containing repoPath.
func (g *realGit) Status(repoPath string) (Status, error) {
	repo, err := g.open(repoPath)
	if err != nil {
		return Status{}, err
	}

	branch, err := currentBranch(repo)
	if err != nil {
		return Status{}, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return Status{}, fmt.Errorf("failed to get worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return Status{}, fmt.Errorf("failed to get worktree status: %w", err)
	}

	changes := make([]string, 0, len(st))
	for file, fileStatus := range st {
		if fileStatus.Staging == gogit.Unmodified && fileStatus.Worktree == gogit.Unmodified {
			continue
		}
		changes = append(changes, file)
	}
	sort.Strings(changes)

	return Status{
		Branch:  branch,
		Clean:   len(changes) == 0,
		Changes: changes,
	}, nil
}

// IsClean reports whether the working tree has no staged, unstaged or untracked changes.
func (g *realGit) IsClean(repoPath string) (bool, error) {
	st, err := g.Status(repoPath)
	if err != nil {
		return false, err
	}
	return st.Clean, nil
}

// GetCurrentBranch gets the current branch name.
func (g *realGit) GetCurrentBranch(repoPath string) (string, error) {
	repo, err := g.open(repoPath)
	if err != nil {
		return "", err
	}
	return currentBranch(repo)
}

// GetRemoteURL gets the first URL of a remote.
func (g *realGit) GetRemoteURL(repoPath, remoteName string) (string, error) {
	repo, err := g.open(repoPath)
	if err != nil {
		return "", err
	}
	remote, err := repo.Remote(remoteName)
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return "", fmt.Errorf("%w: %s", ErrRemoteNotFound, remoteName)
		}
		return "", fmt.Errorf("failed to get remote %s: %w", remoteName, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: %s has no URL", ErrRemoteNotFound, remoteName)
	}
	return urls[0], nil
}

// currentBranch resolves HEAD without requiring a commit, so unborn branches still report a name.
func currentBranch(repo *gogit.Repository) (string, error) {
	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Type() == plumbing.SymbolicReference {
		target := head.Target()
		if target.IsBranch() {
			return target.Short(), nil
		}
	}
	return "", ErrDetachedHead
}
