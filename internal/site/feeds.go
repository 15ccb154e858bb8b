package site

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// feedItemLimit caps the RSS item count; the sitemap always lists everything.
const feedItemLimit = 20

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// writeFeeds emits feed.xml and sitemap.xml into the staging directory, using
// the feed ordering (newest first).
func writeFeeds(bs *BuildState) error {
	g := bs.Generator
	base := strings.TrimRight(g.cfg.Site.BaseURL, "/")

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       g.cfg.Site.Title,
			Link:        base + "/",
			Description: g.cfg.Site.Description,
			Language:    g.cfg.Site.Language,
		},
	}
	for i := range bs.Indexes.Feed {
		if i >= feedItemLimit {
			break
		}
		p := &bs.Indexes.Feed[i]
		link := base + p.Permalink()
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        link,
			PubDate:     p.Date.Format(time.RFC1123Z),
			Description: string(bs.Rendered[p.SourcePath]),
		})
	}
	if err := writeXML(filepath.Join(g.stageDir, "feed.xml"), feed); err != nil {
		return fmt.Errorf("feed.xml: %w", err)
	}

	sm := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []sitemapURL{{Loc: base + "/"}},
	}
	for i := range bs.Indexes.Feed {
		p := &bs.Indexes.Feed[i]
		sm.URLs = append(sm.URLs, sitemapURL{
			Loc:     base + p.Permalink(),
			LastMod: p.Date.Format("2006-01-02"),
		})
	}
	for _, tg := range bs.Indexes.Tags {
		sm.URLs = append(sm.URLs, sitemapURL{Loc: base + "/tags/" + tg.Slug + "/"})
	}
	if err := writeXML(filepath.Join(g.stageDir, "sitemap.xml"), sm); err != nil {
		return fmt.Errorf("sitemap.xml: %w", err)
	}
	return nil
}

func writeXML(path string, v any) error {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data := append([]byte(xml.Header), body...)
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
