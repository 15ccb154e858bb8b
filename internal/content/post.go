package content

import (
	"fmt"
	"strings"
	"time"

	"github.com/nbarraud/blogbuilder/internal/util/sets"
)

// Post is a fully parsed content file. Identity is SourcePath, the path
// relative to the content directory.
type Post struct {
	SourcePath string
	Slug       string
	Layout     string
	Title      string
	Date       time.Time
	Author     string
	Tags       []string
	Draft      bool
	Body       []byte
}

// Asset is a non-Markdown file (image etc.) copied through to the output tree.
type Asset struct {
	SourcePath string // relative to the content directory
	AbsPath    string
}

// AssetBase returns the directory portion of the post's source path, used to
// root relative image references.
func (p *Post) AssetBase() string {
	idx := strings.LastIndexByte(p.SourcePath, '/')
	if idx < 0 {
		return ""
	}
	return p.SourcePath[:idx]
}

// Permalink returns the site-relative path of the rendered post page.
func (p *Post) Permalink() string {
	return "/posts/" + p.Slug + "/"
}

// postMeta is the typed frontmatter envelope. Recognized keys per the
// front-matter contract: layout, title, date, author, tags (plus slug/draft).
type postMeta struct {
	Layout string  `yaml:"layout" toml:"layout"`
	Title  string  `yaml:"title" toml:"title"`
	Date   string  `yaml:"date" toml:"date"`
	Author string  `yaml:"author" toml:"author"`
	Tags   TagList `yaml:"tags" toml:"tags"`
	Slug   string  `yaml:"slug" toml:"slug"`
	Draft  bool    `yaml:"draft" toml:"draft"`
}

// TagList accepts either a YAML/TOML list or a single comma/space separated
// string, mirroring what Jekyll tolerates in the wild.
type TagList []string

// UnmarshalYAML implements the yaml.v2 Unmarshaler contract used by the
// frontmatter decoder's YAML path.
func (t *TagList) UnmarshalYAML(unmarshal func(any) error) error {
	var items []string
	if err := unmarshal(&items); err == nil {
		*t = normalizeTags(items)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("tags: expected list or string: %w", err)
	}
	*t = splitTagString(s)
	return nil
}

// UnmarshalTOML implements the toml.Unmarshaler contract used by the
// frontmatter decoder's TOML path.
func (t *TagList) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case []any:
		items := make([]string, 0, len(val))
		for _, it := range val {
			s, ok := it.(string)
			if !ok {
				return fmt.Errorf("tags: expected string element, got %T", it)
			}
			items = append(items, s)
		}
		*t = normalizeTags(items)
		return nil
	case string:
		*t = splitTagString(val)
		return nil
	default:
		return fmt.Errorf("tags: expected list or string, got %T", v)
	}
}

func splitTagString(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	return normalizeTags(fields)
}

// normalizeTags trims whitespace and drops empties and duplicates while
// preserving first-seen order.
func normalizeTags(items []string) []string {
	out := make([]string, 0, len(items))
	seen := sets.New[string]()
	for _, it := range items {
		tag := strings.TrimSpace(it)
		if tag == "" || seen.Has(tag) {
			continue
		}
		seen.Add(tag)
		out = append(out, tag)
	}
	return out
}

// dateLayouts are accepted frontmatter date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05 -0700",
	time.RFC3339,
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
