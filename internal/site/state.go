package site

import (
	"html/template"

	"github.com/nbarraud/blogbuilder/internal/content"
)

// BuildState is the shared mutable state threaded through pipeline stages.
type BuildState struct {
	Generator *Generator
	Report    *BuildReport

	ContentDir string

	// Populated by load_content.
	Posts  []content.Post
	Assets []content.Asset

	// Populated by render_posts, keyed by post source path.
	Rendered map[string]template.HTML

	// Populated by build_indexes.
	Indexes Indexes
}

func newBuildState(g *Generator, contentDir string, report *BuildReport) *BuildState {
	return &BuildState{
		Generator:  g,
		Report:     report,
		ContentDir: contentDir,
		Rendered:   make(map[string]template.HTML),
	}
}
