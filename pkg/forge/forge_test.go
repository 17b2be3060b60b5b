//go:build unit

package forge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	gitMocks "github.com/lerenn/release-manager/pkg/git/mocks"
	"github.com/lerenn/release-manager/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestManager_GetForge(t *testing.T) {
	gh, err := NewGitHub(NewGitHubParams{})
	require.NoError(t, err)
	manager := NewManager(logger.NewNoopLogger(), gh)

	githubForge, err := manager.GetForge("github")
	require.NoError(t, err)
	assert.Equal(t, "github", githubForge.Name())

	_, err = manager.GetForge("nonexistent")
	assert.ErrorIs(t, err, ErrUnsupportedForge)
}

func TestManager_GetForgeForRepository(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockGit := gitMocks.NewMockGit(ctrl)
	gh, err := NewGitHub(NewGitHubParams{Git: mockGit})
	require.NoError(t, err)
	manager := NewManager(logger.NewNoopLogger(), gh)

	mockGit.EXPECT().GetRemoteURL("/repo", "origin").Return("git@github.com:acme/ui.git", nil)
	f, err := manager.GetForgeForRepository("/repo")
	require.NoError(t, err)
	assert.Equal(t, GitHubName, f.Name())

	mockGit.EXPECT().GetRemoteURL("/other", "origin").Return("https://gitlab.com/acme/ui.git", nil)
	_, err = manager.GetForgeForRepository("/other")
	assert.ErrorIs(t, err, ErrUnsupportedForge)

	mockGit.EXPECT().GetRemoteURL("/none", "origin").Return("", errors.New("no remote"))
	_, err = manager.GetForgeForRepository("/none")
	assert.ErrorIs(t, err, ErrUnsupportedForge)
}

func TestGitHub_ParseRepository(t *testing.T) {
	gh, err := NewGitHub(NewGitHubParams{})
	require.NoError(t, err)

	tests := []struct {
		url      string
		expected Repository
	}{
		{"https://github.com/acme/ui.git", Repository{Owner: "acme", Name: "ui"}},
		{"https://github.com/acme/ui", Repository{Owner: "acme", Name: "ui"}},
		{"git@github.com:acme/ui.git", Repository{Owner: "acme", Name: "ui"}},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			repo, err := gh.ParseRepository(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, repo)
			assert.Equal(t, "acme/ui", repo.String())
		})
	}

	_, err = gh.ParseRepository("not a url")
	assert.ErrorIs(t, err, ErrInvalidRemoteURL)
}

func TestGitHub_CreateRelease(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/acme/ui/releases", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42, "tag_name": "v1.2.3", "html_url": "https://github.com/acme/ui/releases/tag/v1.2.3"}`))
	}))
	defer server.Close()

	gh, err := NewGitHub(NewGitHubParams{BaseURL: server.URL, Token: "secret"})
	require.NoError(t, err)

	info, err := gh.CreateRelease(context.Background(), ReleaseRequest{
		Repository: Repository{Owner: "acme", Name: "ui"},
		Tag:        "v1.2.3",
		Name:       "ui v1.2.3",
		Target:     "main",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.ID)
	assert.Equal(t, "v1.2.3", info.Tag)
	assert.Equal(t, "v1.2.3", received["tag_name"])
	assert.Equal(t, "main", received["target_commitish"])
	assert.NotContains(t, received, "body")
}

func TestGitHub_CreateRelease_Errors(t *testing.T) {
	tests := []struct {
		status   int
		header   map[string]string
		expected error
	}{
		{status: http.StatusUnprocessableEntity, expected: ErrReleaseExists},
		{status: http.StatusNotFound, expected: ErrRepositoryMissing},
		{status: http.StatusUnauthorized, expected: ErrUnauthorized},
		{status: http.StatusForbidden, header: map[string]string{"X-RateLimit-Remaining": "0"}, expected: ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message": "nope"}`))
			}))
			defer server.Close()

			gh, err := NewGitHub(NewGitHubParams{BaseURL: server.URL})
			require.NoError(t, err)

			_, err = gh.CreateRelease(context.Background(), ReleaseRequest{
				Repository: Repository{Owner: "acme", Name: "ui"},
				Tag:        "v1.0.0",
			})
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}
