package forge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/lerenn/release-manager/pkg/git"
)

const (
	// GitHubName is the name identifier for GitHub forge.
	GitHubName = "github"
	// GitHubDomain is the GitHub domain for URL validation.
	GitHubDomain = "github.com"

	requestTimeout = 30 * time.Second
)

var (
	httpsRemote = regexp.MustCompile(`github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)
	sshRemote   = regexp.MustCompile(`github\.com:([^/]+)/([^/]+?)(?:\.git)?$`)
)

// NewGitHubParams contains parameters for creating a GitHub forge.
type NewGitHubParams struct {
	// Token authenticates API calls. Empty means anonymous.
	Token string
	// BaseURL overrides the API endpoint, for GitHub Enterprise or tests.
	BaseURL string
	Git     git.Git
}

// GitHub represents the GitHub forge implementation.
type GitHub struct {
	client *github.Client
	git    git.Git
}

// NewGitHub creates a new GitHub forge instance.
func NewGitHub(params NewGitHubParams) (*GitHub, error) {
	var client *github.Client
	if params.Token != "" {
		client = github.NewTokenClient(context.Background(), params.Token)
	} else {
		client = github.NewClient(nil)
	}

	if params.BaseURL != "" {
		base := params.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", params.BaseURL, err)
		}
		client.BaseURL = u
	}

	g := params.Git
	if g == nil {
		g = git.NewGit()
	}
	return &GitHub{client: client, git: g}, nil
}

// Name returns the name of the forge.
func (g *GitHub) Name() string {
	return GitHubName
}

// ParseRepository extracts owner and repository from HTTPS and SSH remote URLs.
func (g *GitHub) ParseRepository(remoteURL string) (Repository, error) {
	for _, re := range []*regexp.Regexp{httpsRemote, sshRemote} {
		if m := re.FindStringSubmatch(remoteURL); len(m) == 3 {
			return Repository{Owner: m[1], Name: m[2]}, nil
		}
	}
	return Repository{}, fmt.Errorf("%w: %s", ErrInvalidRemoteURL, remoteURL)
}

// ValidateForgeRepository validates that repository has GitHub remote origin.
func (g *GitHub) ValidateForgeRepository(repoPath string) error {
	originURL, err := g.git.GetRemoteURL(repoPath, "origin")
	if err != nil {
		return fmt.Errorf("failed to get remote origin: %w", err)
	}

	// Handles both HTTPS (https://github.com/owner/repo.git) and SSH (git@github.com:owner/repo.git) URLs
	if !strings.Contains(originURL, GitHubDomain) {
		return fmt.Errorf("%w: %s is not a GitHub remote", ErrUnsupportedForge, originURL)
	}
	return nil
}

// CreateRelease creates a tagged release.
func (g *GitHub) CreateRelease(ctx context.Context, req ReleaseRequest) (*ReleaseInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	release := &github.RepositoryRelease{
		TagName:    github.String(req.Tag),
		Name:       github.String(req.Name),
		Draft:      github.Bool(req.Draft),
		Prerelease: github.Bool(req.Prerelease),
	}
	if req.Body != "" {
		release.Body = github.String(req.Body)
	}
	if req.Target != "" {
		release.TargetCommitish = github.String(req.Target)
	}

	created, resp, err := g.client.Repositories.CreateRelease(ctx, req.Repository.Owner, req.Repository.Name, release)
	if err != nil {
		return nil, g.handleGitHubError(err, resp, req)
	}

	return &ReleaseInfo{
		ID:  created.GetID(),
		Tag: created.GetTagName(),
		URL: created.GetHTMLURL(),
	}, nil
}

// handleGitHubError handles GitHub API errors and returns appropriate error messages.
func (g *GitHub) handleGitHubError(err error, resp *github.Response, req ReleaseRequest) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrRepositoryMissing, req.Repository)
		case http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %s on %s", ErrReleaseExists, req.Tag, req.Repository)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: check GITHUB_TOKEN environment variable", ErrUnauthorized)
		case http.StatusForbidden:
			if resp.Header.Get("X-RateLimit-Remaining") == "0" {
				return fmt.Errorf("%w: GitHub API rate limit exceeded", ErrRateLimited)
			}
			return fmt.Errorf("%w: access forbidden", ErrUnauthorized)
		}
	}
	return fmt.Errorf("failed to create release: %w", err)
}
