package site

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nbarraud/blogbuilder/internal/config"
	"github.com/nbarraud/blogbuilder/internal/logfields"
	"github.com/nbarraud/blogbuilder/internal/markdown"
	"github.com/nbarraud/blogbuilder/internal/metrics"
	"github.com/nbarraud/blogbuilder/internal/storage"
	"github.com/nbarraud/blogbuilder/internal/templates"
)

// Generator handles site generation.
type Generator struct {
	cfg       *config.Config
	outputDir string // final output dir
	stageDir  string // ephemeral staging dir for current build

	engine   *templates.Engine
	renderer *markdown.Renderer
	cache    storage.Cache
	recorder metrics.Recorder
	now      func() time.Time
}

// New creates a site generator. outputDir overrides the configured output
// directory when non-empty.
func New(cfg *config.Config, outputDir string) *Generator {
	if outputDir == "" {
		outputDir = cfg.Output.Directory
	}
	g := &Generator{
		cfg:       cfg,
		outputDir: filepath.Clean(outputDir),
		engine:    templates.NewEngine(cfg.Templates.Dir),
		renderer:  markdown.NewRenderer(markdown.Options{Sanitize: cfg.Build.Sanitize}),
		cache:     storage.Noop{},
		recorder:  metrics.NoopRecorder{},
		now:       time.Now,
	}
	if cfg.Build.CacheDir != "" {
		if c, err := storage.NewFSCache(cfg.Build.CacheDir); err == nil {
			g.cache = c
		} else {
			slog.Warn("Render cache disabled", logfields.Path(cfg.Build.CacheDir), logfields.Error(err))
		}
	}
	return g
}

// SetRecorder injects a metrics recorder (optional). Returns the generator for chaining.
func (g *Generator) SetRecorder(r metrics.Recorder) *Generator {
	if r == nil {
		g.recorder = metrics.NoopRecorder{}
		return g
	}
	g.recorder = r
	return g
}

// OutputDir exposes the final output directory.
func (g *Generator) OutputDir() string { return g.outputDir }

// Build runs the full pipeline against the configured content directory.
func (g *Generator) Build(ctx context.Context) (*BuildReport, error) {
	return g.BuildFrom(ctx, g.cfg.Content.Dir)
}

// BuildFrom runs the full pipeline against an explicit content directory
// (used when content comes from a git checkout). The returned report is
// non-nil whenever the pipeline started, even on failure.
func (g *Generator) BuildFrom(ctx context.Context, contentDir string) (*BuildReport, error) {
	buildID := uuid.NewString()
	slog.Info("Starting site build",
		logfields.BuildID(buildID),
		logfields.Path(contentDir),
		logfields.Output(g.outputDir))

	if err := g.beginStaging(); err != nil {
		return nil, err
	}

	report := newBuildReport(buildID)
	bs := newBuildState(g, contentDir, report)

	stages := NewPipeline().
		Add(StageLoadContent, stageLoadContent).
		Add(StageRenderPosts, stageRenderPosts).
		Add(StageBuildIndexes, stageBuildIndexes).
		Add(StageAssemblePages, stageAssemblePages).
		Add(StageCopyAssets, stageCopyAssets).
		Add(StageWriteFeeds, stageWriteFeeds).
		Add(StageVerifyLinks, stageVerifyLinks).
		Build()

	if err := runStages(ctx, bs, stages); err != nil {
		report.deriveOutcome()
		report.finish()
		g.abortStaging()
		g.observeBuild(report)
		return report, err
	}

	report.TemplateSources = g.engine.Usage()
	report.deriveOutcome()
	report.finish()

	if err := g.finalizeStaging(); err != nil {
		return report, fmt.Errorf("finalize staging: %w", err)
	}
	// Persist report (best effort) inside final output directory.
	if err := report.Persist(g.outputDir); err != nil {
		slog.Warn("Failed to persist build report", logfields.Error(err))
	}
	g.observeBuild(report)

	slog.Info("Site build completed",
		logfields.BuildID(buildID),
		logfields.Output(g.outputDir),
		slog.Int("posts", report.Posts),
		slog.Int("rendered", report.RenderedPages),
		slog.Int("skipped", len(report.SkippedFiles)))
	return report, nil
}

func (g *Generator) observeBuild(report *BuildReport) {
	g.recorder.ObserveBuildDuration(report.End.Sub(report.Start))
	g.recorder.IncBuildOutcome(report.Outcome)
}
