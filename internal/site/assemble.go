package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/nbarraud/blogbuilder/internal/content"
	"github.com/nbarraud/blogbuilder/internal/slug"
)

// siteView is the shared site-level template data.
type siteView struct {
	Title       string
	Description string
	BaseURL     string
	Author      string
	Language    string
}

// tagRef links a tag label to its index page slug.
type tagRef struct {
	Name string
	Slug string
}

// postListItem is one entry in the "postlist" shared block.
type postListItem struct {
	Title     string
	Date      time.Time
	Permalink string
}

// postView is the full data for a single post page.
type postView struct {
	Title     string
	Date      time.Time
	Author    string
	Content   template.HTML
	Permalink string
	Tags      []tagRef
}

// tagListItem is one entry on the tags overview page.
type tagListItem struct {
	Name  string
	Slug  string
	Count int
}

// yearView is one archive section.
type yearView struct {
	Year  int
	Posts []postListItem
}

// pageData is the root object handed to every page template.
type pageData struct {
	Site      siteView
	PageTitle string
	Post      *postView
	Posts     []postListItem
	Tag       string
	Tags      []tagListItem
	Years     []yearView
}

// assemblePages renders every HTML document into the staging directory.
// Output layout:
//
//	index.html
//	posts/<slug>/index.html
//	tags/index.html
//	tags/<slug>/index.html
//	archive/index.html
func assemblePages(ctx context.Context, bs *BuildState) error {
	g := bs.Generator
	site := siteView{
		Title:       g.cfg.Site.Title,
		Description: g.cfg.Site.Description,
		BaseURL:     g.cfg.Site.BaseURL,
		Author:      g.cfg.Site.Author,
		Language:    g.cfg.Site.Language,
	}

	// Individual post pages, each through its declared layout.
	for i := range bs.Indexes.Feed {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := &bs.Indexes.Feed[i]
		data := pageData{
			Site:      site,
			PageTitle: p.Title,
			Post:      newPostView(p, bs.Rendered[p.SourcePath]),
		}
		out := filepath.Join("posts", p.Slug, "index.html")
		if err := writePage(bs, p.Layout, out, data); err != nil {
			return err
		}
	}

	feedItems := listItems(bs.Indexes.Feed)

	// Home page: full feed, newest first.
	if err := writePage(bs, "home", "index.html", pageData{
		Site:      site,
		PageTitle: site.Title,
		Posts:     feedItems,
	}); err != nil {
		return err
	}

	// Per-tag pages plus the tags overview.
	tagList := make([]tagListItem, 0, len(bs.Indexes.Tags))
	for _, tg := range bs.Indexes.Tags {
		tagList = append(tagList, tagListItem{Name: tg.Name, Slug: tg.Slug, Count: len(tg.Posts)})
		data := pageData{
			Site:      site,
			PageTitle: "Tag: " + tg.Name,
			Tag:       tg.Name,
			Posts:     listItems(tg.Posts),
		}
		out := filepath.Join("tags", tg.Slug, "index.html")
		if err := writePage(bs, "tag", out, data); err != nil {
			return err
		}
	}
	if err := writePage(bs, "tags", filepath.Join("tags", "index.html"), pageData{
		Site:      site,
		PageTitle: "Tags",
		Tags:      tagList,
	}); err != nil {
		return err
	}

	// Archive page grouped by year.
	years := make([]yearView, 0, len(bs.Indexes.Years))
	for _, yg := range bs.Indexes.Years {
		years = append(years, yearView{Year: yg.Year, Posts: listItems(yg.Posts)})
	}
	return writePage(bs, "archive", filepath.Join("archive", "index.html"), pageData{
		Site:      site,
		PageTitle: "Archive",
		Years:     years,
	})
}

func newPostView(p *content.Post, body template.HTML) *postView {
	tags := make([]tagRef, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, tagRef{Name: t, Slug: slug.Make(t)})
	}
	return &postView{
		Title:     p.Title,
		Date:      p.Date,
		Author:    p.Author,
		Content:   body,
		Permalink: p.Permalink(),
		Tags:      tags,
	}
}

func listItems(posts []content.Post) []postListItem {
	items := make([]postListItem, 0, len(posts))
	for i := range posts {
		items = append(items, postListItem{
			Title:     posts[i].Title,
			Date:      posts[i].Date,
			Permalink: posts[i].Permalink(),
		})
	}
	return items
}

// writePage resolves the named template, executes it, and writes the result
// under the staging directory. All failures wrap ErrAssembly.
func writePage(bs *BuildState, tmplName, relOut string, data pageData) error {
	tmpl, err := bs.Generator.engine.Resolve(tmplName)
	if err != nil {
		return fmt.Errorf("%w: page %s: %w", ErrAssembly, relOut, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("%w: execute template %s for %s: %w", ErrAssembly, tmplName, relOut, err)
	}

	dst := filepath.Join(bs.Generator.stageDir, relOut)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: create dir for %s: %w", ErrAssembly, relOut, err)
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrAssembly, relOut, err)
	}
	bs.Report.RenderedPages++
	return nil
}
