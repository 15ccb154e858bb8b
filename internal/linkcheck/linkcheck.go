// Package linkcheck scans generated HTML for internal links and verifies
// each target exists in the output tree. External links are never fetched.
package linkcheck

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link is one reference extracted from an HTML document.
type Link struct {
	Target    string // raw href/src value
	Tag       string // a, img, link, script
	Attribute string // href or src
}

// Broken records an internal link whose target does not exist in the tree.
type Broken struct {
	SourceFile string // HTML file relative to the scanned root
	Target     string // the unresolvable href/src
}

// linkAttrs maps element tags to the attribute carrying a reference.
var linkAttrs = map[string]string{
	"a":      "href",
	"img":    "src",
	"link":   "href",
	"script": "src",
}

// ExtractLinks parses an HTML document and returns every a/img/link/script
// reference found.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var links []Link
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				for _, a := range n.Attr {
					if a.Key == attr && a.Val != "" {
						links = append(links, Link{Target: a.Val, Tag: n.Data, Attribute: attr})
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// VerifyDir walks root for .html files, extracts internal links, and reports
// every one without a corresponding file in the tree. A site-absolute target
// like /posts/foo/ resolves against root; relative targets resolve against
// the containing document's directory.
func VerifyDir(root string) ([]Broken, error) {
	var broken []Broken
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		links, perr := ExtractLinks(f)
		f.Close()
		if perr != nil {
			return fmt.Errorf("%s: %w", rel, perr)
		}

		for _, l := range links {
			target, internal := normalizeInternal(l.Target, rel)
			if !internal {
				continue
			}
			if !targetExists(root, target) {
				broken = append(broken, Broken{SourceFile: rel, Target: l.Target})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return broken, nil
}

// normalizeInternal resolves a raw link target to a root-relative path.
// Returns internal=false for external URLs, fragments, and mailto links.
func normalizeInternal(raw, sourceRel string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if u.Path == "" { // pure fragment (#section)
		return "", false
	}
	if strings.HasPrefix(u.Path, "/") {
		return strings.TrimPrefix(path.Clean(u.Path), "/"), true
	}
	base := path.Dir(sourceRel)
	return path.Clean(path.Join(base, u.Path)), true
}

// targetExists checks whether a root-relative target resolves to a file.
// Directory-style targets (trailing slash in the original URL collapse to the
// dir name) match their index.html.
func targetExists(root, target string) bool {
	full := filepath.Join(root, filepath.FromSlash(target))
	st, err := os.Stat(full)
	if err == nil {
		if st.IsDir() {
			_, ierr := os.Stat(filepath.Join(full, "index.html"))
			return ierr == nil
		}
		return true
	}
	// /posts/foo/ served as /posts/foo/index.html
	_, ierr := os.Stat(filepath.Join(full, "index.html"))
	return ierr == nil
}
