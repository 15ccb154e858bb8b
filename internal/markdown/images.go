package markdown

import (
	"net/url"
	"path"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// assetBaseKey carries the per-post asset base directory through the parse
// context so the shared engine stays stateless.
var assetBaseKey = parser.NewContextKey()

// imageResolver rewrites relative image destinations to site-relative paths
// rooted at the post's asset directory. Absolute URLs, anchors, and paths
// already rooted at / pass through untouched.
type imageResolver struct {
	prefix string
}

func (t *imageResolver) Transform(doc *gmast.Document, _ text.Reader, pc parser.Context) {
	base, _ := pc.Get(assetBaseKey).(string)

	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		img, ok := n.(*gmast.Image)
		if !ok {
			return gmast.WalkContinue, nil
		}
		dest := string(img.Destination)
		if resolved, changed := resolveAssetPath(t.prefix, base, dest); changed {
			img.Destination = []byte(resolved)
		}
		return gmast.WalkContinue, nil
	})
}

// resolveAssetPath maps a Markdown image destination to its site-relative
// path. Returns changed=false when the destination is external or already
// site-rooted.
func resolveAssetPath(prefix, base, dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
		return dest, false
	}
	if u, err := url.Parse(dest); err == nil && u.Scheme != "" {
		return dest, false
	}
	return path.Join("/", prefix, base, dest), true
}
