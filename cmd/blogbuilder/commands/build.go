package commands

import (
	"fmt"

	"github.com/nbarraud/blogbuilder/internal/config"
	"github.com/nbarraud/blogbuilder/internal/site"
)

// BuildCmd implements the 'build' command: one full content-to-site run.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory (overrides config)"`
	Repo   string `help:"Build from a git repository URL instead of the local content directory"`
	Branch string `help:"Branch to check out with --repo"`
	Depth  int    `help:"Clone depth with --repo (0 = full history)"`
	Drafts bool   `help:"Include posts marked draft"`
	Future bool   `help:"Include posts dated in the future"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if b.Drafts {
		cfg.Build.Drafts = true
	}
	if b.Future {
		cfg.Build.Future = true
	}
	if b.Repo != "" {
		cfg.Content.Repo = &config.RepoConfig{URL: b.Repo, Branch: b.Branch, Depth: b.Depth}
	}

	ctx, cancel := signalContext()
	defer cancel()

	contentDir := cfg.Content.Dir
	if cfg.Content.Repo != nil && cfg.Content.Repo.URL != "" {
		checkout, cleanup, err := checkoutContent(ctx, cfg.Content.Repo)
		if err != nil {
			return err
		}
		defer cleanup()
		contentDir = checkout
	}

	report, err := site.New(cfg, b.Output).BuildFrom(ctx, contentDir)
	if report != nil {
		fmt.Print(report.Summary())
	}
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}
