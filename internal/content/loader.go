package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nbarraud/blogbuilder/internal/frontmatter"
	"github.com/nbarraud/blogbuilder/internal/logfields"
	"github.com/nbarraud/blogbuilder/internal/slug"
)

// Result is the outcome of loading a content directory. Posts carry no
// ordering guarantee; sorting is the index builder's job.
type Result struct {
	Posts   []Post
	Assets  []Asset
	Skipped []*ParseError
}

// Loader reads a content directory into Post and Asset records.
type Loader struct {
	dir string
}

// NewLoader creates a loader rooted at the given content directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: filepath.Clean(dir)}
}

// jekyllName matches Jekyll-style `YYYY-MM-DD-slug.ext` filenames, which
// supply date and slug when frontmatter omits them.
var jekyllName = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// Load walks the content directory and parses every recognized file.
// Malformed individual files become Skipped entries; only I/O failures on the
// directory itself are returned as errors.
func (l *Loader) Load() (*Result, error) {
	if st, err := os.Stat(l.dir); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("content dir not found or not a directory: %s", l.dir)
	}

	res := &Result{}
	slugSeen := make(map[string]string) // slug -> source path that claimed it

	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(l.dir, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		switch {
		case isMarkdownFile(path):
			post, perr := l.parsePost(path, rel)
			if perr != nil {
				slog.Warn("Skipping content file", logfields.File(rel), logfields.Error(perr))
				res.Skipped = append(res.Skipped, perr)
				return nil
			}
			if prior, taken := slugSeen[post.Slug]; taken {
				perr := newParseError(rel, fmt.Errorf("%w: %q already used by %s", ErrDuplicateSlug, post.Slug, prior))
				slog.Warn("Skipping content file", logfields.File(rel), logfields.Error(perr))
				res.Skipped = append(res.Skipped, perr)
				return nil
			}
			slugSeen[post.Slug] = rel
			res.Posts = append(res.Posts, *post)
		case isAssetFile(path):
			res.Assets = append(res.Assets, Asset{SourcePath: rel, AbsPath: path})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk content dir: %w", err)
	}

	slog.Info("Content loaded",
		slog.Int("posts", len(res.Posts)),
		slog.Int("assets", len(res.Assets)),
		slog.Int("skipped", len(res.Skipped)))
	return res, nil
}

// parsePost reads and validates a single Markdown file.
func (l *Loader) parsePost(absPath, relPath string) (*Post, *ParseError) {
	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, newParseError(relPath, fmt.Errorf("read: %w", err))
	}

	var meta postMeta
	body, err := frontmatter.Decode(raw, &meta)
	if err != nil {
		return nil, newParseError(relPath, fmt.Errorf("%w: %v", ErrBadFrontmatter, err))
	}

	filenameDate, filenameSlug := parseJekyllFilename(relPath)

	if meta.Title == "" {
		return nil, newParseError(relPath, ErrMissingTitle)
	}

	var date time.Time
	switch {
	case meta.Date != "":
		date, err = parseDate(meta.Date)
		if err != nil {
			return nil, newParseError(relPath, fmt.Errorf("%w: %v", ErrBadDate, err))
		}
	case !filenameDate.IsZero():
		date = filenameDate
	default:
		return nil, newParseError(relPath, ErrMissingDate)
	}

	postSlug := meta.Slug
	if postSlug == "" {
		if filenameSlug != "" {
			postSlug = slug.Make(filenameSlug)
		} else {
			postSlug = slug.Make(meta.Title)
		}
	}
	if postSlug == "" {
		return nil, newParseError(relPath, fmt.Errorf("%w: title %q yields empty slug", ErrMissingTitle, meta.Title))
	}

	layout := meta.Layout
	if layout == "" {
		layout = "post"
	}

	return &Post{
		SourcePath: relPath,
		Slug:       postSlug,
		Layout:     layout,
		Title:      meta.Title,
		Date:       date,
		Author:     meta.Author,
		Tags:       meta.Tags,
		Draft:      meta.Draft,
		Body:       body,
	}, nil
}

// parseJekyllFilename extracts the date prefix and slug remainder from a
// `YYYY-MM-DD-slug.md` basename. Both are zero when the name doesn't match.
func parseJekyllFilename(relPath string) (time.Time, string) {
	base := filepath.Base(relPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	m := jekyllName.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, ""
	}
	ts, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return time.Time{}, ""
	}
	return ts, m[2]
}

// isMarkdownFile checks if a file is a markdown file.
func isMarkdownFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown", ".mdown", ".mkd":
		return true
	}
	return false
}

// isAssetFile checks if a file is an asset (image, etc.).
func isAssetFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".bmp", ".ico",
		".pdf", ".mp4", ".webm", ".ogv",
		".css", ".js", ".txt", ".csv", ".json":
		return true
	}
	return false
}
