// internal/service/municipality/rss.go

package municipality

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/stelios-avg/locom/internal/domain/municipality"
)

var (
	rssItemRe        = regexp.MustCompile(`(?is)<item[^>]*>(.*?)</item>`)
	rssTitleRe       = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	rssDescriptionRe = regexp.MustCompile(`(?is)<description[^>]*>(.*?)</description>`)
	rssLinkRe        = regexp.MustCompile(`(?is)<link[^>]*>(.*?)</link>`)
	rssPubDateRe     = regexp.MustCompile(`(?is)<pubDate[^>]*>(.*?)</pubDate>`)
	rssEnclosureRe   = regexp.MustCompile(`(?i)<enclosure[^>]*url=["']([^"']+)["']`)
	rssMediaRe       = regexp.MustCompile(`(?i)<media:content[^>]*url=["']([^"']+)["']`)
	imageExtRe       = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)`)
)

// RSSSource reads RSS by pattern extraction over the raw markup. Documents
// without <item> blocks are handed to gofeed so Atom feeds still work.
type RSSSource struct{}

// Kind implements Source
func (RSSSource) Kind() SourceKind { return SourceRSS }

// Parse implements Source
func (s RSSSource) Parse(body []byte) ([]municipality.ImportedPost, error) {
	text := string(body)

	items := rssItemRe.FindAllStringSubmatch(text, -1)
	if len(items) == 0 {
		return s.parseFallback(text)
	}

	posts := make([]municipality.ImportedPost, 0, len(items))
	for _, m := range items {
		posts = append(posts, parseRSSItem(m[1]))
	}
	return posts, nil
}

func parseRSSItem(item string) municipality.ImportedPost {
	post := municipality.ImportedPost{
		Title:   firstGroup(rssTitleRe, item, cleanText),
		Content: firstGroup(rssDescriptionRe, item, cleanText),
		Link:    firstGroup(rssLinkRe, item, cleanText),
	}

	if raw := firstGroup(rssPubDateRe, item, strings.TrimSpace); raw != "" {
		post.PublishedDate = parseDate(raw)
	}

	if m := rssEnclosureRe.FindStringSubmatch(item); m != nil {
		post.ImageURL = m[1]
	} else if m := rssMediaRe.FindStringSubmatch(item); m != nil && imageExtRe.MatchString(m[1]) {
		post.ImageURL = m[1]
	}

	return post
}

// parseFallback lets gofeed detect Atom or JSON Feed documents. A document it
// cannot recognize fails the whole feed.
func (RSSSource) parseFallback(text string) ([]municipality.ImportedPost, error) {
	feed, err := gofeed.NewParser().ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	posts := make([]municipality.ImportedPost, 0, len(feed.Items))
	for _, item := range feed.Items {
		content := item.Description
		if content == "" {
			content = item.Content
		}

		post := municipality.ImportedPost{
			Title:   cleanText(item.Title),
			Content: cleanText(content),
			Link:    item.Link,
		}

		switch {
		case item.PublishedParsed != nil:
			t := *item.PublishedParsed
			post.PublishedDate = &t
		case item.UpdatedParsed != nil:
			t := *item.UpdatedParsed
			post.PublishedDate = &t
		}

		if item.Image != nil {
			post.ImageURL = item.Image.URL
		} else {
			for _, enc := range item.Enclosures {
				if enc != nil && imageExtRe.MatchString(enc.URL) {
					post.ImageURL = enc.URL
					break
				}
			}
		}

		posts = append(posts, post)
	}
	return posts, nil
}

// firstGroup returns the first capture of re in s passed through clean, or ""
func firstGroup(re *regexp.Regexp, s string, clean func(string) string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return clean(m[1])
}

// parseDate accepts the date layouts feeds use in practice. Unparseable
// values yield nil so the post falls back to the import time.
func parseDate(raw string) *time.Time {
	t, err := dateparse.ParseAny(raw)
	if err != nil || t.IsZero() {
		return nil
	}
	return &t
}
