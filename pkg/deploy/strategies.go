package deploy

import (
	"context"
	"fmt"

	"github.com/lerenn/release-manager/pkg/command"
)

// Built-in strategy keys.
const (
	PagesKey         = "pages"
	DocsKey          = "docs"
	StaticKey        = "static"
	GitHubReleaseKey = "github-release"
)

// Config holds the settings of the built-in strategies.
type Config struct {
	Pages         PagesConfig         `yaml:"pages"`
	Docs          DocsConfig          `yaml:"docs"`
	Static        StaticConfig        `yaml:"static"`
	GitHubRelease GitHubReleaseConfig `yaml:"github_release"`
}

// PagesConfig configures the site pages strategy.
type PagesConfig struct {
	Dir     string `yaml:"dir,omitempty"`
	Branch  string `yaml:"branch,omitempty"`
	Command string `yaml:"command,omitempty"`
}

// DocsConfig configures the documentation strategy.
type DocsConfig struct {
	InstallCommand string `yaml:"install_command,omitempty"`
	BuildCommand   string `yaml:"build_command,omitempty"`
	OutputDir      string `yaml:"output_dir,omitempty"`
}

// StaticConfig configures the static asset strategy.
type StaticConfig struct {
	SourceDir string `yaml:"source_dir,omitempty"`
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// RegisterDefaults registers the pages, docs and static strategies.
func RegisterDefaults(r RegistryInterface, cfg Config) error {
	for _, s := range []Strategy{NewPagesStrategy(cfg.Pages), NewDocsStrategy(cfg.Docs), NewStaticStrategy(cfg.Static)} {
		if err := r.RegisterStrategy(s.Info().Key, s); err != nil {
			return err
		}
	}
	return nil
}

// PagesStrategy publishes a pre-built site directory to a pages branch.
type PagesStrategy struct {
	cfg PagesConfig
}

// NewPagesStrategy creates the site pages strategy.
func NewPagesStrategy(cfg PagesConfig) *PagesStrategy {
	cfg.Dir = orDefault(cfg.Dir, "dist")
	cfg.Branch = orDefault(cfg.Branch, "gh-pages")
	cfg.Command = orDefault(cfg.Command, "npx gh-pages")
	return &PagesStrategy{cfg: cfg}
}

// Info implements Strategy.
func (p *PagesStrategy) Info() Info {
	return Info{
		Key:         PagesKey,
		DisplayName: "Site pages",
		Description: fmt.Sprintf("Publish %s to the %s branch", p.cfg.Dir, p.cfg.Branch),
		Icon:        "🌐",
	}
}

// Deploy implements Strategy.
func (p *PagesStrategy) Deploy(ctx context.Context, s *Session) (Result, error) {
	dir := s.Path(p.cfg.Dir)
	if err := s.RequireDir(dir, ErrOutputMissing); err != nil {
		return Result{}, err
	}

	cmd, err := command.Parse(p.cfg.Command)
	if err != nil {
		return Result{}, err
	}
	message := fmt.Sprintf("Deploy from %s", orDefault(s.CurrentBranch(), "unknown branch"))
	cmd.Args = append(cmd.Args, "-d", dir, "-b", p.cfg.Branch, "-m", message)

	if _, err := s.Run(ctx, cmd); err != nil {
		return Result{}, err
	}
	return Result{Details: map[string]interface{}{
		"dir":     dir,
		"branch":  p.cfg.Branch,
		"message": message,
	}}, nil
}

// DocsStrategy installs dependencies and builds the documentation site.
type DocsStrategy struct {
	cfg DocsConfig
}

// NewDocsStrategy creates the documentation strategy.
func NewDocsStrategy(cfg DocsConfig) *DocsStrategy {
	cfg.InstallCommand = orDefault(cfg.InstallCommand, "npm ci")
	cfg.BuildCommand = orDefault(cfg.BuildCommand, "npm run docs:build")
	cfg.OutputDir = orDefault(cfg.OutputDir, "docs/.vitepress/dist")
	return &DocsStrategy{cfg: cfg}
}

// Info implements Strategy.
func (d *DocsStrategy) Info() Info {
	return Info{
		Key:         DocsKey,
		DisplayName: "Documentation",
		Description: "Build the documentation site",
		Icon:        "📚",
	}
}

// Deploy implements Strategy.
func (d *DocsStrategy) Deploy(ctx context.Context, s *Session) (Result, error) {
	for _, line := range []string{d.cfg.InstallCommand, d.cfg.BuildCommand} {
		cmd, err := command.Parse(line)
		if err != nil {
			return Result{}, err
		}
		if _, err := s.Run(ctx, cmd); err != nil {
			return Result{}, err
		}
	}

	out := s.Path(d.cfg.OutputDir)
	if s.DryRun() {
		s.Plan("would verify %s exists", out)
	} else if err := s.RequireDir(out, ErrOutputMissing); err != nil {
		return Result{}, err
	}
	return Result{Details: map[string]interface{}{"outputDir": out}}, nil
}

// StaticStrategy checks a static asset directory. Transfer to a CDN is left to extensions
// that replace this strategy.
type StaticStrategy struct {
	cfg StaticConfig
}

// NewStaticStrategy creates the static asset strategy.
func NewStaticStrategy(cfg StaticConfig) *StaticStrategy {
	cfg.SourceDir = orDefault(cfg.SourceDir, "dist")
	return &StaticStrategy{cfg: cfg}
}

// Info implements Strategy.
func (st *StaticStrategy) Info() Info {
	return Info{
		Key:         StaticKey,
		DisplayName: "Static assets",
		Description: fmt.Sprintf("Deploy static assets from %s", st.cfg.SourceDir),
		Icon:        "📦",
	}
}

// Deploy implements Strategy.
func (st *StaticStrategy) Deploy(_ context.Context, s *Session) (Result, error) {
	dir := s.Path(st.cfg.SourceDir)
	if err := s.RequireDir(dir, ErrSourceMissing); err != nil {
		return Result{}, err
	}

	entries, err := s.FS().ReadDir(dir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if s.DryRun() {
		s.Plan("would upload %d entries from %s", len(entries), dir)
	} else {
		s.Plan("no transfer configured for %s, %d entries ready", dir, len(entries))
	}
	return Result{Details: map[string]interface{}{"sourceDir": dir, "entries": len(entries)}}, nil
}
