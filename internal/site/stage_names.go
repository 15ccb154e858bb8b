package site

import "context"

// StageName is a strongly-typed identifier for a build stage. All canonical
// stages are declared as constants here for compile-time safety.
type StageName string

// Canonical stage names, in pipeline order.
const (
	StageLoadContent   StageName = "load_content"
	StageRenderPosts   StageName = "render_posts"
	StageBuildIndexes  StageName = "build_indexes"
	StageAssemblePages StageName = "assemble_pages"
	StageCopyAssets    StageName = "copy_assets"
	StageWriteFeeds    StageName = "write_feeds"
	StageVerifyLinks   StageName = "verify_links"
)

// Stage is a pipeline step operating on shared build state.
type Stage func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Pipeline accumulates stage definitions in execution order.
type Pipeline struct {
	stages []StageDef
}

// NewPipeline creates an empty pipeline builder.
func NewPipeline() *Pipeline { return &Pipeline{} }

// Add appends a stage and returns the pipeline for chaining.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.stages = append(p.stages, StageDef{Name: name, Fn: fn})
	return p
}

// Build returns the ordered stage list.
func (p *Pipeline) Build() []StageDef { return p.stages }
