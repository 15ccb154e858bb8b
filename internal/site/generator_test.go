package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nbarraud/blogbuilder/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Site.Title = "Test Blog"
	cfg.Site.BaseURL = "https://blog.example"
	cfg.Site.Language = "en"
	cfg.Content.Dir = filepath.Join(root, "content")
	cfg.Output.Directory = filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(cfg.Content.Dir, 0o755))
	return cfg
}

func writeContent(t *testing.T, cfg *config.Config, rel, body string) {
	t.Helper()
	full := filepath.Join(cfg.Content.Dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

const postOne = `---
title: First Post
date: 2024-01-10
tags: [go, testing]
---
Hello **world**.
`

const postTwo = `---
title: Second Post
date: 2024-03-20
tags: [go]
---
More content with an image ![pic](pic.png).
`

func TestBuild_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	writeContent(t, cfg, "first.md", postOne)
	writeContent(t, cfg, "nested/second.md", postTwo)
	writeContent(t, cfg, "nested/pic.png", "not-really-a-png")

	g := New(cfg, "")
	report, err := g.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.OutcomeT)
	require.Equal(t, 2, report.Posts)
	require.Equal(t, 1, report.Assets)

	out := cfg.Output.Directory
	for _, rel := range []string{
		"index.html",
		"posts/first-post/index.html",
		"posts/second-post/index.html",
		"tags/index.html",
		"tags/go/index.html",
		"tags/testing/index.html",
		"archive/index.html",
		"feed.xml",
		"sitemap.xml",
		"assets/nested/pic.png",
		"build-report.json",
	} {
		_, err := os.Stat(filepath.Join(out, rel))
		require.NoError(t, err, rel)
	}

	// Post body rendered through markdown, image resolved against asset base.
	body, err := os.ReadFile(filepath.Join(out, "posts/second-post/index.html"))
	require.NoError(t, err)
	require.Contains(t, string(body), "/assets/nested/pic.png")

	// Feed is newest first.
	feed, err := os.ReadFile(filepath.Join(out, "feed.xml"))
	require.NoError(t, err)
	first := string(feed)
	require.Less(t,
		indexOf(t, first, "Second Post"),
		indexOf(t, first, "First Post"))

	// No staging or backup leftovers.
	_, err = os.Stat(out + "_stage")
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(out + ".prev")
	require.True(t, os.IsNotExist(err))
}

func TestBuild_MalformedFileSkippedNotFatal(t *testing.T) {
	cfg := testConfig(t)
	writeContent(t, cfg, "good.md", postOne)
	writeContent(t, cfg, "bad.md", "---\ndate: 2024-01-01\n---\nno title\n")

	report, err := New(cfg, "").Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.OutcomeT)
	require.Equal(t, 1, report.Posts)
	require.Len(t, report.SkippedFiles, 1)
	require.Equal(t, "bad.md", report.SkippedFiles[0].Path)

	// The good post is still published.
	_, err = os.Stat(filepath.Join(cfg.Output.Directory, "posts/first-post/index.html"))
	require.NoError(t, err)
}

func TestBuild_MissingTemplateAbortsWithoutPartialOutput(t *testing.T) {
	cfg := testConfig(t)
	writeContent(t, cfg, "good.md", postOne)

	// Publish a first good build.
	_, err := New(cfg, "").Build(context.Background())
	require.NoError(t, err)
	prevBody, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)

	// A post demanding a nonexistent layout makes assembly fatal.
	writeContent(t, cfg, "broken.md", "---\ntitle: Broken\ndate: 2024-05-01\nlayout: fancy\n---\nbody\n")

	report, err := New(cfg, "").Build(context.Background())
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, report.OutcomeT)
	require.NotEmpty(t, report.Issues)

	// Previous output untouched, no staging dir left behind.
	body, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "index.html"))
	require.NoError(t, err)
	require.Equal(t, prevBody, body)
	_, err = os.Stat(cfg.Output.Directory + "_stage")
	require.True(t, os.IsNotExist(err))
}

func TestBuild_MissingContentDirFatal(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.RemoveAll(cfg.Content.Dir))

	report, err := New(cfg, "").Build(context.Background())
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, report.OutcomeT)
	_, statErr := os.Stat(cfg.Output.Directory)
	require.True(t, os.IsNotExist(statErr))
}

func TestBuild_DraftAndFutureFiltering(t *testing.T) {
	cfg := testConfig(t)
	writeContent(t, cfg, "live.md", postOne)
	writeContent(t, cfg, "draft.md", "---\ntitle: Draft\ndate: 2024-01-01\ndraft: true\n---\nwip\n")
	writeContent(t, cfg, "future.md", "---\ntitle: Future\ndate: 2100-01-01\n---\nsoon\n")

	report, err := New(cfg, "").Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Posts)

	cfg.Build.Drafts = true
	cfg.Build.Future = true
	cfg.Output.Directory = filepath.Join(t.TempDir(), "public2")
	report, err = New(cfg, "").Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.Posts)
}

func TestBuild_RenderCacheHitsOnRebuild(t *testing.T) {
	cfg := testConfig(t)
	cfg.Build.CacheDir = filepath.Join(t.TempDir(), "cache")
	writeContent(t, cfg, "first.md", postOne)
	writeContent(t, cfg, "nested/second.md", postTwo)

	report, err := New(cfg, "").Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, report.CacheHits)

	report, err = New(cfg, "").Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.CacheHits)
}

func TestBuild_CanceledContext(t *testing.T) {
	cfg := testConfig(t)
	writeContent(t, cfg, "good.md", postOne)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(cfg, "").Build(ctx)
	require.Error(t, err)
	require.Equal(t, OutcomeCanceled, report.OutcomeT)
}

func TestBuild_StageDurationsRecorded(t *testing.T) {
	cfg := testConfig(t)
	writeContent(t, cfg, "good.md", postOne)

	report, err := New(cfg, "").Build(context.Background())
	require.NoError(t, err)
	for _, stage := range []StageName{
		StageLoadContent, StageRenderPosts, StageBuildIndexes,
		StageAssemblePages, StageCopyAssets, StageWriteFeeds, StageVerifyLinks,
	} {
		_, ok := report.StageDurations[string(stage)]
		require.True(t, ok, stage)
		require.Equal(t, 1, report.StageCounts[stage].Success+report.StageCounts[stage].Warning)
	}
	require.False(t, report.End.Before(report.Start))
	require.True(t, report.End.Sub(report.Start) < time.Minute)
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	i := strings.Index(s, sub)
	require.GreaterOrEqual(t, i, 0, sub)
	return i
}
