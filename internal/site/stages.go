package site

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nbarraud/blogbuilder/internal/content"
	"github.com/nbarraud/blogbuilder/internal/linkcheck"
	"github.com/nbarraud/blogbuilder/internal/logfields"
)

// stageLoadContent walks the content tree and parses posts and assets.
// Malformed files are reported as skipped; only a missing/unreadable content
// directory is fatal.
func stageLoadContent(_ context.Context, bs *BuildState) error {
	g := bs.Generator

	loader := content.NewLoader(bs.ContentDir)
	res, err := loader.Load()
	if err != nil {
		return newFatalStageError(StageLoadContent, err)
	}

	for _, pe := range res.Skipped {
		bs.Report.SkippedFiles = append(bs.Report.SkippedFiles, SkippedFile{
			Path:   pe.Path,
			Reason: pe.Err.Error(),
		})
		bs.Report.AddIssue(IssueParseSkipped, StageLoadContent, SeverityWarning, pe.Error(), pe)
	}
	g.recorder.AddPostsSkipped(len(res.Skipped))

	now := g.now()
	for _, p := range res.Posts {
		if p.Draft && !g.cfg.Build.Drafts {
			slog.Debug("Excluding draft post", logfields.Post(p.SourcePath))
			continue
		}
		if p.Date.After(now) && !g.cfg.Build.Future {
			slog.Debug("Excluding future-dated post", logfields.Post(p.SourcePath))
			continue
		}
		bs.Posts = append(bs.Posts, p)
	}
	bs.Assets = res.Assets

	bs.Report.Posts = len(bs.Posts)
	bs.Report.Assets = len(bs.Assets)
	slog.Info("Loaded content",
		logfields.Path(bs.ContentDir),
		slog.Int("posts", len(bs.Posts)),
		slog.Int("assets", len(bs.Assets)),
		slog.Int("skipped", len(res.Skipped)))
	return nil
}

// stageRenderPosts converts each post body to HTML, consulting the render
// cache first. Rendering is pure per (body, asset base), so cache hits are
// byte-identical to fresh renders.
func stageRenderPosts(ctx context.Context, bs *BuildState) error {
	g := bs.Generator

	for i := range bs.Posts {
		if err := ctx.Err(); err != nil {
			return newCanceledStageError(StageRenderPosts, err)
		}
		p := &bs.Posts[i]

		key := g.renderer.CacheKey(p.Body, p.AssetBase())
		if cached, ok, err := g.cache.Get(key); err == nil && ok {
			bs.Rendered[p.SourcePath] = template.HTML(cached)
			bs.Report.CacheHits++
			g.recorder.IncRenderCacheHit()
			continue
		}

		out, err := g.renderer.Render(p.Body, p.AssetBase())
		if err != nil {
			return newFatalStageError(StageRenderPosts, fmt.Errorf("render %s: %w", p.SourcePath, err))
		}
		g.recorder.IncRenderCacheMiss()
		if err := g.cache.Put(key, out); err != nil {
			slog.Warn("Render cache write failed", logfields.Post(p.SourcePath), logfields.Error(err))
		}
		bs.Rendered[p.SourcePath] = template.HTML(out)
	}

	g.recorder.AddPostsRendered(len(bs.Posts))
	slog.Debug("Rendered post bodies", logfields.Count(len(bs.Posts)), slog.Int("cacheHits", bs.Report.CacheHits))
	return nil
}

// stageBuildIndexes derives the feed, tag, and archive orderings from the
// loaded posts. Pure computation; cannot fail.
func stageBuildIndexes(_ context.Context, bs *BuildState) error {
	bs.Indexes = BuildIndexes(bs.Posts)
	slog.Debug("Built indexes",
		slog.Int("feed", len(bs.Indexes.Feed)),
		slog.Int("tags", len(bs.Indexes.Tags)),
		slog.Int("years", len(bs.Indexes.Years)))
	return nil
}

// stageAssemblePages executes templates and writes every HTML document into
// the staging directory. Any template or write failure is fatal: the build
// aborts and nothing is published.
func stageAssemblePages(ctx context.Context, bs *BuildState) error {
	if err := assemblePages(ctx, bs); err != nil {
		return newFatalStageError(StageAssemblePages, err)
	}
	return nil
}

// stageCopyAssets mirrors non-Markdown content files into the staging tree,
// preserving their source-relative paths under /assets.
func stageCopyAssets(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	for _, a := range bs.Assets {
		dst := filepath.Join(g.stageDir, "assets", filepath.FromSlash(a.SourcePath))
		if err := copyFile(a.AbsPath, dst); err != nil {
			return newFatalStageError(StageCopyAssets, fmt.Errorf("%w: copy asset %s: %w", ErrAssembly, a.SourcePath, err))
		}
	}
	slog.Debug("Copied assets", logfields.Count(len(bs.Assets)))
	return nil
}

// stageWriteFeeds emits feed.xml (RSS 2.0) and sitemap.xml into staging.
func stageWriteFeeds(_ context.Context, bs *BuildState) error {
	if err := writeFeeds(bs); err != nil {
		return newFatalStageError(StageWriteFeeds, fmt.Errorf("%w: %w", ErrAssembly, err))
	}
	return nil
}

// stageVerifyLinks scans the staged HTML for internal links pointing at
// documents the build did not produce. Broken links are warnings, never
// fatal.
func stageVerifyLinks(_ context.Context, bs *BuildState) error {
	broken, err := linkcheck.VerifyDir(bs.Generator.stageDir)
	if err != nil {
		return newWarnStageError(StageVerifyLinks, fmt.Errorf("link verification: %w", err))
	}
	if len(broken) == 0 {
		return nil
	}
	for _, b := range broken {
		slog.Warn("Broken internal link", logfields.File(b.SourceFile), logfields.URL(b.Target))
	}
	return newWarnStageError(StageVerifyLinks, fmt.Errorf("%d broken internal links", len(broken)))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
