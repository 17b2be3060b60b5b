package deploy

import (
	"context"
	"fmt"

	"github.com/lerenn/release-manager/pkg/forge"
	"github.com/lerenn/release-manager/pkg/packages"
)

// GitHubReleaseConfig configures the GitHub release strategy. Owner and Repo default to
// the origin remote of the repository.
type GitHubReleaseConfig struct {
	Owner   string `yaml:"owner,omitempty"`
	Repo    string `yaml:"repo,omitempty"`
	Package string `yaml:"package,omitempty"`
	Draft   bool   `yaml:"draft,omitempty"`
}

// NewGitHubReleaseStrategyParams contains parameters for creating the GitHub release strategy.
type NewGitHubReleaseStrategyParams struct {
	Forge   forge.Forge
	Catalog *packages.Catalog
	Config  GitHubReleaseConfig
}

// GitHubReleaseStrategy tags a GitHub release for the current version of a package.
type GitHubReleaseStrategy struct {
	forge   forge.Forge
	catalog *packages.Catalog
	cfg     GitHubReleaseConfig
}

// NewGitHubReleaseStrategy creates the GitHub release strategy.
func NewGitHubReleaseStrategy(params NewGitHubReleaseStrategyParams) *GitHubReleaseStrategy {
	return &GitHubReleaseStrategy{forge: params.Forge, catalog: params.Catalog, cfg: params.Config}
}

// Info implements Strategy.
func (g *GitHubReleaseStrategy) Info() Info {
	return Info{
		Key:         GitHubReleaseKey,
		DisplayName: "GitHub release",
		Description: "Create a tagged GitHub release for the current version",
		Icon:        "🏷",
	}
}

// Deploy implements Strategy. The package can be overridden with the "package" setting.
func (g *GitHubReleaseStrategy) Deploy(ctx context.Context, s *Session) (Result, error) {
	key := g.cfg.Package
	if v, ok := s.Setting("package"); ok {
		key = fmt.Sprint(v)
	}
	if key == "" {
		keys := g.catalog.Keys()
		if len(keys) == 0 {
			return Result{}, fmt.Errorf("%w: no package to release", packages.ErrUnknownPackage)
		}
		key = keys[len(keys)-1]
	}

	d, err := g.catalog.Get(key)
	if err != nil {
		return Result{}, err
	}
	v, err := d.Version()
	if err != nil {
		return Result{}, err
	}

	repo, err := g.repository(s)
	if err != nil {
		return Result{}, err
	}

	req := forge.ReleaseRequest{
		Repository: repo,
		Tag:        "v" + v,
		Name:       fmt.Sprintf("%s v%s", d.Label(), v),
		Target:     s.CurrentBranch(),
		Draft:      g.cfg.Draft,
	}
	details := map[string]interface{}{
		"repository": repo.String(),
		"tag":        req.Tag,
		"package":    key,
	}

	if s.DryRun() {
		s.Plan("would create release %s on %s", req.Tag, repo)
		return Result{Details: details}, nil
	}

	info, err := g.forge.CreateRelease(ctx, req)
	if err != nil {
		return Result{}, err
	}
	s.Plan("created release %s on %s", info.Tag, repo)
	details["url"] = info.URL
	return Result{Details: details}, nil
}

func (g *GitHubReleaseStrategy) repository(s *Session) (forge.Repository, error) {
	if g.cfg.Owner != "" && g.cfg.Repo != "" {
		return forge.Repository{Owner: g.cfg.Owner, Name: g.cfg.Repo}, nil
	}
	remote, err := s.Git().GetRemoteURL(s.RootDir, "origin")
	if err != nil {
		return forge.Repository{}, err
	}
	return g.forge.ParseRepository(remote)
}
