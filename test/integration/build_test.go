package integration

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/nbarraud/blogbuilder/internal/config"
	"github.com/nbarraud/blogbuilder/internal/git"
	"github.com/nbarraud/blogbuilder/internal/site"
	"github.com/nbarraud/blogbuilder/internal/workspace"
)

// fixtureContent is a small but representative blog: nested dirs, assets,
// a Jekyll-named post, a TOML post, a draft, and one malformed file.
var fixtureContent = map[string]string{
	"welcome.md": `---
title: Welcome
date: 2024-01-05
tags: [meta]
---
First post, with a [link](/about/missing/).
`,
	"2024-02-14-jekyll-style.md": `---
title: Jekyll Style
tags: go, blogging
---
Date and slug come from the filename.
`,
	"projects/toml-post.md": `+++
title = "TOML Post"
date = "2024-03-01"
tags = ["go"]
+++
Body with image ![shot](shot.png).
`,
	"projects/shot.png": "fake-png-bytes",
	"drafts-ok.md": `---
title: Work In Progress
date: 2024-04-01
draft: true
---
Not yet.
`,
	"broken.md": "---\ndate: not-a-date\ntitle: Broken\n---\noops\n",
}

func writeFixture(t *testing.T, dir string) {
	t.Helper()
	for rel, body := range fixtureContent {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
}

func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Site.Title = "Integration Blog"
	cfg.Site.BaseURL = "https://blog.example"
	cfg.Site.Language = "en"
	cfg.Content.Dir = filepath.Join(root, "content")
	cfg.Output.Directory = filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(cfg.Content.Dir, 0o755))
	writeFixture(t, cfg.Content.Dir)
	return cfg
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, rerr := filepath.Rel(root, path)
			require.NoError(t, rerr)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func TestFullBuild_SiteStructure(t *testing.T) {
	cfg := fixtureConfig(t)
	report, err := site.New(cfg, "").Build(context.Background())
	require.NoError(t, err)

	// broken.md is skipped, the draft is excluded, three posts publish.
	require.Equal(t, 3, report.Posts)
	require.Len(t, report.SkippedFiles, 1)
	require.Equal(t, "broken.md", report.SkippedFiles[0].Path)
	require.Equal(t, site.OutcomeWarning, report.OutcomeT)

	want := []string{
		"archive/index.html",
		"assets/projects/shot.png",
		"build-report.json",
		"build-report.txt",
		"feed.xml",
		"index.html",
		"posts/jekyll-style/index.html",
		"posts/toml-post/index.html",
		"posts/welcome/index.html",
		"sitemap.xml",
		"tags/blogging/index.html",
		"tags/go/index.html",
		"tags/index.html",
		"tags/meta/index.html",
	}
	require.Equal(t, want, listFiles(t, cfg.Output.Directory))
}

func TestFullBuild_PageContents(t *testing.T) {
	cfg := fixtureConfig(t)
	_, err := site.New(cfg, "").Build(context.Background())
	require.NoError(t, err)
	out := cfg.Output.Directory

	home, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	// Feed order on the home page: newest first.
	require.Regexp(t, `(?s)TOML Post.*Jekyll Style.*Welcome`, string(home))

	tomlPage, err := os.ReadFile(filepath.Join(out, "posts/toml-post/index.html"))
	require.NoError(t, err)
	require.Contains(t, string(tomlPage), `src="/assets/projects/shot.png"`)
	require.Contains(t, string(tomlPage), `href="/tags/go/"`)

	goTag, err := os.ReadFile(filepath.Join(out, "tags/go/index.html"))
	require.NoError(t, err)
	require.Contains(t, string(goTag), "TOML Post")
	require.Contains(t, string(goTag), "Jekyll Style")
	require.NotContains(t, string(goTag), "Welcome")
}

func TestFullBuild_BrokenInternalLinkIsWarning(t *testing.T) {
	cfg := fixtureConfig(t)
	report, err := site.New(cfg, "").Build(context.Background())
	require.NoError(t, err)

	// welcome.md links to /about/missing/ which nothing generates.
	var found bool
	for _, iss := range report.Issues {
		if iss.Code == site.IssueBrokenLinks {
			found = true
		}
	}
	require.True(t, found, "expected a broken-links issue")
	require.Equal(t, site.OutcomeWarning, report.OutcomeT)
}

func TestFullBuild_RepeatedBuildsIdentical(t *testing.T) {
	cfg := fixtureConfig(t)
	g := site.New(cfg, "")

	_, err := g.Build(context.Background())
	require.NoError(t, err)
	firstFiles := listFiles(t, cfg.Output.Directory)
	firstHome, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)

	_, err = g.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, firstFiles, listFiles(t, cfg.Output.Directory))
	secondHome, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
	require.Equal(t, firstHome, secondHome)
}

func TestFullBuild_FromGitRepository(t *testing.T) {
	// Content lives in a local git repo; the build checks it out first.
	origin := t.TempDir()
	writeFixture(t, origin)
	repo, err := gogit.PlainInit(origin, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(".")
	require.NoError(t, err)
	_, err = wt.Commit("content", &gogit.CommitOptions{
		Author: &object.Signature{Name: "it", Email: "it@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	cfg := fixtureConfig(t)
	require.NoError(t, os.RemoveAll(cfg.Content.Dir))
	cfg.Content.Repo = &config.RepoConfig{URL: origin}

	ws := workspace.NewManager(t.TempDir())
	require.NoError(t, ws.Create())
	defer func() { require.NoError(t, ws.Cleanup()) }()

	checkout, err := git.NewClient(ws.Path()).CloneOrUpdate(context.Background(), cfg.Content.Repo)
	require.NoError(t, err)

	report, err := site.New(cfg, "").BuildFrom(context.Background(), checkout)
	require.NoError(t, err)
	require.Equal(t, 3, report.Posts)
	_, err = os.Stat(filepath.Join(cfg.Output.Directory, "posts/welcome/index.html"))
	require.NoError(t, err)
}
