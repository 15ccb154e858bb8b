package site

import (
	"sort"

	"github.com/nbarraud/blogbuilder/internal/content"
	"github.com/nbarraud/blogbuilder/internal/slug"
)

// Indexes holds the derived, deterministic orderings of the post set.
// Rebuilt wholly on every run; no independent lifecycle.
type Indexes struct {
	// Feed is all posts reverse-chronological, equal dates tie-broken by
	// source path ascending for stable ordering.
	Feed []content.Post
	// Tags maps each tag label to its posts (feed order), sorted by label.
	Tags []TagGroup
	// Years groups posts by publication year, newest year first.
	Years []YearGroup
}

// TagGroup is one tag index entry.
type TagGroup struct {
	Name  string
	Slug  string
	Posts []content.Post
}

// YearGroup is one archive entry.
type YearGroup struct {
	Year  int
	Posts []content.Post
}

// BuildIndexes derives all indexes from the post set. Pure and deterministic:
// equal input always produces identical output.
func BuildIndexes(posts []content.Post) Indexes {
	feed := make([]content.Post, len(posts))
	copy(feed, posts)
	sort.SliceStable(feed, func(i, j int) bool {
		if !feed[i].Date.Equal(feed[j].Date) {
			return feed[i].Date.After(feed[j].Date)
		}
		return feed[i].SourcePath < feed[j].SourcePath
	})

	byTag := make(map[string][]content.Post)
	for _, p := range feed {
		for _, tag := range p.Tags {
			byTag[tag] = append(byTag[tag], p)
		}
	}
	tags := make([]TagGroup, 0, len(byTag))
	for name, tagged := range byTag {
		tags = append(tags, TagGroup{Name: name, Slug: slug.Make(name), Posts: tagged})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	var years []YearGroup
	for _, p := range feed {
		y := p.Date.Year()
		if len(years) == 0 || years[len(years)-1].Year != y {
			years = append(years, YearGroup{Year: y})
		}
		years[len(years)-1].Posts = append(years[len(years)-1].Posts, p)
	}

	return Indexes{Feed: feed, Tags: tags, Years: years}
}
