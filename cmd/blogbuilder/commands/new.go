package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nbarraud/blogbuilder/internal/config"
	"github.com/nbarraud/blogbuilder/internal/frontmatter"
	"github.com/nbarraud/blogbuilder/internal/slug"
)

// NewCmd scaffolds a post file in the content directory with today's date in
// the filename, Jekyll style.
type NewCmd struct {
	Title string   `arg:"" help:"Post title"`
	Tags  []string `short:"t" help:"Tags for the new post"`
	Draft bool     `help:"Mark the post as draft"`
}

func (n *NewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Content.Dir == "" {
		return fmt.Errorf("no content directory configured")
	}

	now := time.Now()
	name := fmt.Sprintf("%s-%s.md", now.Format("2006-01-02"), slug.Make(n.Title))
	path := filepath.Join(cfg.Content.Dir, name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("post already exists: %s", path)
	}

	var meta strings.Builder
	fmt.Fprintf(&meta, "title: %q\n", n.Title)
	fmt.Fprintf(&meta, "date: %s\n", now.Format("2006-01-02 15:04"))
	if len(n.Tags) > 0 {
		fmt.Fprintf(&meta, "tags: [%s]\n", strings.Join(n.Tags, ", "))
	}
	if n.Draft {
		meta.WriteString("draft: true\n")
	}
	doc := frontmatter.Join([]byte(meta.String()), []byte("\n"), true,
		frontmatter.Style{Format: frontmatter.FormatYAML, Newline: "\n"})

	if err := os.MkdirAll(cfg.Content.Dir, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("write post: %w", err)
	}
	fmt.Printf("Created %s\n", path)
	return nil
}
