//go:build unit

package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lerenn/release-manager/pkg/command"
	"github.com/lerenn/release-manager/pkg/forge"
	forgeMocks "github.com/lerenn/release-manager/pkg/forge/mocks"
	"github.com/lerenn/release-manager/pkg/fs"
	"github.com/lerenn/release-manager/pkg/packages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func mustParse(t *testing.T, line string) command.Command {
	t.Helper()
	cmd, err := command.Parse(line)
	require.NoError(t, err)
	return cmd
}

func TestDefaultStrategies_Registered(t *testing.T) {
	f := newRegistryFixture(t)
	require.NoError(t, RegisterDefaults(f.registry, Config{}))

	var keys []string
	for _, info := range f.registry.ListStrategies() {
		keys = append(keys, info.Key)
		assert.NotEmpty(t, info.DisplayName)
		assert.NotEmpty(t, info.Description)
	}
	assert.Equal(t, []string{PagesKey, DocsKey, StaticKey}, keys)
}

func TestPagesStrategy_RequiresOutput(t *testing.T) {
	f := newRegistryFixture(t)
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil)
	require.NoError(t, RegisterDefaults(f.registry, Config{}))

	_, err := f.registry.Deploy(context.Background(), PagesKey, Options{DryRun: true})
	assert.ErrorIs(t, err, ErrOutputMissing)
}

func TestPagesStrategy_DryRun(t *testing.T) {
	f := newRegistryFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "site"), 0755))
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil)
	require.NoError(t, RegisterDefaults(f.registry, Config{Pages: PagesConfig{Dir: "site", Branch: "pages"}}))

	res, err := f.registry.Deploy(context.Background(), PagesKey, Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	require.Len(t, res.Plan, 1)
	assert.Contains(t, res.Plan[0], "would run: npx gh-pages -d")
	assert.Contains(t, res.Plan[0], "-b pages")
	assert.Contains(t, res.Plan[0], `"Deploy from main"`)
	assert.Equal(t, "Deploy from main", res.Details["message"])
}

func TestPagesStrategy_Runs(t *testing.T) {
	f := newRegistryFixture(t)
	site := filepath.Join(f.root, "dist")
	require.NoError(t, os.MkdirAll(site, 0755))
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil)
	require.NoError(t, RegisterDefaults(f.registry, Config{}))

	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd command.Command) (command.Result, error) {
		assert.Equal(t, "npx", cmd.Name)
		assert.Equal(t, []string{"gh-pages", "-d", site, "-b", "gh-pages", "-m", "Deploy from main"}, cmd.Args)
		assert.Equal(t, f.root, cmd.Dir)
		return command.Result{}, nil
	})

	_, err := f.registry.Deploy(context.Background(), PagesKey, Options{})
	require.NoError(t, err)
}

func TestDocsStrategy_DryRun(t *testing.T) {
	f := newRegistryFixture(t)
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil)
	require.NoError(t, RegisterDefaults(f.registry, Config{}))

	res, err := f.registry.Deploy(context.Background(), DocsKey, Options{DryRun: true})
	require.NoError(t, err)
	require.Len(t, res.Plan, 3)
	assert.Contains(t, res.Plan[0], "would run: npm ci")
	assert.Contains(t, res.Plan[1], "would run: npm run docs:build")
	assert.Contains(t, res.Plan[2], "would verify")
}

func TestDocsStrategy_MissingOutput(t *testing.T) {
	f := newRegistryFixture(t)
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil)
	require.NoError(t, RegisterDefaults(f.registry, Config{Docs: DocsConfig{OutputDir: "out"}}))
	f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).Times(2).Return(command.Result{}, nil)

	_, err := f.registry.Deploy(context.Background(), DocsKey, Options{})
	assert.ErrorIs(t, err, ErrOutputMissing)
}

func TestDocsStrategy_BuildFailure(t *testing.T) {
	f := newRegistryFixture(t)
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil)
	require.NoError(t, RegisterDefaults(f.registry, Config{}))
	gomock.InOrder(
		f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(command.Result{}, nil),
		f.runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(command.Result{ExitCode: 2}, fmt.Errorf("%w: 2", command.ErrNonZeroExit)),
	)

	_, err := f.registry.Deploy(context.Background(), DocsKey, Options{})
	assert.ErrorIs(t, err, command.ErrNonZeroExit)
}

func TestStaticStrategy(t *testing.T) {
	f := newRegistryFixture(t)
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil).Times(2)
	require.NoError(t, RegisterDefaults(f.registry, Config{Static: StaticConfig{SourceDir: "public"}}))

	_, err := f.registry.Deploy(context.Background(), StaticKey, Options{DryRun: true})
	assert.ErrorIs(t, err, ErrSourceMissing)

	public := filepath.Join(f.root, "public")
	require.NoError(t, os.MkdirAll(public, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(public, "index.html"), []byte("<html/>"), 0644))

	res, err := f.registry.Deploy(context.Background(), StaticKey, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Details["entries"])
	assert.Contains(t, res.Plan[0], "would upload 1 entries")
}

func newCatalog(t *testing.T, root string) *packages.Catalog {
	t.Helper()
	dir := filepath.Join(root, "packages/ui")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, packages.MetadataFile), []byte(`{"name":"@acme/ui","version":"2.3.4"}`), 0644))

	catalog, err := packages.NewCatalog(root, packages.NewStore(fs.NewFS()), []packages.Spec{
		{Key: "ui", Name: "@acme/ui", DisplayName: "UI", Path: "packages/ui"},
	})
	require.NoError(t, err)
	return catalog
}

func TestGitHubReleaseStrategy(t *testing.T) {
	f := newRegistryFixture(t)
	ctrl := gomock.NewController(t)
	mockForge := forgeMocks.NewMockForge(ctrl)

	strategy := NewGitHubReleaseStrategy(NewGitHubReleaseStrategyParams{
		Forge:   mockForge,
		Catalog: newCatalog(t, f.root),
	})
	require.NoError(t, f.registry.RegisterStrategy(GitHubReleaseKey, strategy))

	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil).Times(2)
	f.git.EXPECT().GetRemoteURL(f.root, "origin").Return("git@github.com:acme/ui.git", nil).Times(2)
	mockForge.EXPECT().ParseRepository("git@github.com:acme/ui.git").Return(forge.Repository{Owner: "acme", Name: "ui"}, nil).Times(2)

	res, err := f.registry.Deploy(context.Background(), GitHubReleaseKey, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, "v2.3.4", res.Details["tag"])
	assert.Contains(t, res.Plan[0], "would create release v2.3.4 on acme/ui")

	mockForge.EXPECT().CreateRelease(gomock.Any(), forge.ReleaseRequest{
		Repository: forge.Repository{Owner: "acme", Name: "ui"},
		Tag:        "v2.3.4",
		Name:       "UI v2.3.4",
		Target:     "main",
	}).Return(&forge.ReleaseInfo{ID: 1, Tag: "v2.3.4", URL: "https://example.com/r/1"}, nil)

	res, err = f.registry.Deploy(context.Background(), GitHubReleaseKey, Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/r/1", res.Details["url"])
}

func TestGitHubReleaseStrategy_UnknownPackage(t *testing.T) {
	f := newRegistryFixture(t)
	strategy := NewGitHubReleaseStrategy(NewGitHubReleaseStrategyParams{
		Catalog: newCatalog(t, f.root),
		Config:  GitHubReleaseConfig{Owner: "acme", Repo: "ui"},
	})
	require.NoError(t, f.registry.RegisterStrategy(GitHubReleaseKey, strategy))
	f.git.EXPECT().Status(f.root).Return(cleanStatus(), nil)

	_, err := f.registry.Deploy(context.Background(), GitHubReleaseKey, Options{
		DryRun:   true,
		Settings: map[string]interface{}{"package": "ghost"},
	})
	assert.ErrorIs(t, err, packages.ErrUnknownPackage)
}
