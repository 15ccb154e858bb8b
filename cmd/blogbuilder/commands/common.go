package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/nbarraud/blogbuilder/internal/config"
	"github.com/nbarraud/blogbuilder/internal/git"
	"github.com/nbarraud/blogbuilder/internal/workspace"
)

// Global carries state shared across subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command definition.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blog.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the site from content to output directory"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	New     NewCmd     `cmd:"" help:"Scaffold a new post"`
	Preview PreviewCmd `cmd:"" help:"Serve the site locally, rebuilding on changes (drafts and future posts included)"`
	Daemon  DaemonCmd  `cmd:"" help:"Run in watch-and-serve daemon mode"`
	Builds  BuildsCmd  `cmd:"" help:"List recent builds from the history database"`
}

// AfterApply runs after flag parsing; sets up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// checkoutContent clones or updates the configured content repository into an
// ephemeral workspace and returns the checkout path plus a cleanup func.
func checkoutContent(ctx context.Context, repo *config.RepoConfig) (string, func(), error) {
	ws := workspace.NewManager("")
	if err := ws.Create(); err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Workspace cleanup failed", "error", err)
		}
	}

	dir, err := git.NewClient(ws.Path()).CloneOrUpdate(ctx, repo)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("fetch content repository: %w", err)
	}
	return dir, cleanup, nil
}
