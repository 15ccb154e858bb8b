// Package markdown renders post bodies to HTML.
//
// Rendering is a pure function of (body, options, asset base): the engine is
// built once from fixed options and carries no mutable state, so identical
// input always yields identical output and renders are cacheable by content
// hash.
package markdown

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Options fixes renderer behavior for the lifetime of a Renderer.
type Options struct {
	// AssetPrefix is the site-relative root that relative image references
	// resolve under (default "/assets").
	AssetPrefix string
	// Sanitize runs rendered HTML through the bluemonday UGC policy. Off by
	// default; intended for feeds or untrusted aggregation contexts.
	Sanitize bool
}

// Renderer converts Markdown bodies into display-ready HTML. Safe for
// concurrent use: goldmark parse/convert is stateless per call and the policy
// is read-only after construction.
type Renderer struct {
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	opts     Options
	optsHash string
}

// NewRenderer builds the goldmark engine: GFM + footnotes, auto heading IDs,
// raw HTML passed through (posts are trusted first-party content), and the
// image path resolver registered as an AST transform.
func NewRenderer(opts Options) *Renderer {
	if opts.AssetPrefix == "" {
		opts.AssetPrefix = "/assets"
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&imageResolver{prefix: opts.AssetPrefix}, 100),
			),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	r := &Renderer{md: md, opts: opts}
	if opts.Sanitize {
		r.policy = bluemonday.UGCPolicy()
	}

	h := sha256.Sum256([]byte(fmt.Sprintf("prefix=%s sanitize=%t", opts.AssetPrefix, opts.Sanitize)))
	r.optsHash = hex.EncodeToString(h[:8])
	return r
}

// Render converts body to HTML. assetBase is the post's source directory
// relative to the content root; relative image references resolve under
// AssetPrefix/assetBase.
func (r *Renderer) Render(body []byte, assetBase string) ([]byte, error) {
	ctx := parser.NewContext()
	ctx.Set(assetBaseKey, assetBase)

	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	out := buf.Bytes()
	if r.policy != nil {
		out = r.policy.SanitizeBytes(out)
	}
	return out, nil
}

// CacheKey returns a content hash identifying the render output for this
// body under the renderer's fixed options. Sound because rendering is pure.
func (r *Renderer) CacheKey(body []byte, assetBase string) string {
	h := sha256.New()
	h.Write([]byte(r.optsHash))
	h.Write([]byte{0})
	h.Write([]byte(assetBase))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
