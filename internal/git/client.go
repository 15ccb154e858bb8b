// Package git checks out the content repository for builds sourced from a
// remote instead of a local directory.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/nbarraud/blogbuilder/internal/config"
	"github.com/nbarraud/blogbuilder/internal/logfields"
)

// Client clones and updates content repositories inside a workspace directory.
type Client struct {
	workspaceDir string
}

// NewClient creates a git client rooted at the given workspace directory.
func NewClient(workspaceDir string) *Client {
	return &Client{workspaceDir: workspaceDir}
}

// checkoutDir is the fixed checkout location inside the workspace; one
// workspace serves one content repository.
func (c *Client) checkoutDir() string {
	return filepath.Join(c.workspaceDir, "content-repo")
}

// CloneOrUpdate ensures a current checkout of the configured repository and
// returns its path. An existing checkout is pulled; anything else is cloned
// fresh.
func (c *Client) CloneOrUpdate(ctx context.Context, repo *config.RepoConfig) (string, error) {
	if repo == nil || repo.URL == "" {
		return "", fmt.Errorf("no repository configured")
	}

	dir := c.checkoutDir()
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return c.update(ctx, dir, repo)
	}
	return c.clone(ctx, dir, repo)
}

func (c *Client) clone(ctx context.Context, dir string, repo *config.RepoConfig) (string, error) {
	slog.Debug("Cloning content repository", logfields.URL(repo.URL), logfields.Path(dir))

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("remove stale checkout: %w", err)
	}

	opts := &gogit.CloneOptions{
		URL:   repo.URL,
		Depth: repo.Depth,
	}
	if repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(repo.Branch)
		opts.SingleBranch = true
	}

	repository, err := gogit.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return "", fmt.Errorf("clone %s: %w", repo.URL, err)
	}

	if ref, err := repository.Head(); err == nil {
		slog.Info("Cloned content repository",
			logfields.URL(repo.URL),
			slog.String("commit", ref.Hash().String()[:8]),
			logfields.Path(dir))
	}
	return dir, nil
}

func (c *Client) update(ctx context.Context, dir string, repo *config.RepoConfig) (string, error) {
	slog.Debug("Updating content repository", logfields.Path(dir))

	repository, err := gogit.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("open checkout: %w", err)
	}
	worktree, err := repository.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}

	opts := &gogit.PullOptions{RemoteName: "origin"}
	if repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(repo.Branch)
		opts.SingleBranch = true
	}

	err = worktree.PullContext(ctx, opts)
	switch {
	case errors.Is(err, gogit.NoErrAlreadyUpToDate):
		slog.Info("Content repository already up to date", logfields.Path(dir))
	case err != nil:
		// A diverged or corrupted checkout is recoverable with a fresh clone.
		slog.Warn("Pull failed, recloning", logfields.Path(dir), logfields.Error(err))
		return c.clone(ctx, dir, repo)
	default:
		if ref, herr := repository.Head(); herr == nil {
			slog.Info("Updated content repository",
				slog.String("commit", ref.Hash().String()[:8]),
				logfields.Path(dir))
		}
	}
	return dir, nil
}
