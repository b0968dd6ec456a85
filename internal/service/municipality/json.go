// internal/service/municipality/json.go

package municipality

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stelios-avg/locom/internal/domain/municipality"
)

// JSONSource reads {"items": [...]} or {"posts": [...]} documents
type JSONSource struct{}

// Kind implements Source
func (JSONSource) Kind() SourceKind { return SourceJSON }

type jsonFeed struct {
	Items []json.RawMessage `json:"items"`
	Posts []json.RawMessage `json:"posts"`
}

type jsonItem struct {
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	ImageURL    string          `json:"imageUrl"`
	Date        json.RawMessage `json:"date"`
	URL         string          `json:"url"`
	Link        string          `json:"link"`
}

// Parse implements Source. A present "items" array wins over "posts", even
// when empty; entries that do not decode as objects are skipped.
func (JSONSource) Parse(body []byte) ([]municipality.ImportedPost, error) {
	var feed jsonFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse json feed: %w", err)
	}

	raw := feed.Items
	if raw == nil {
		raw = feed.Posts
	}

	posts := make([]municipality.ImportedPost, 0, len(raw))
	for _, r := range raw {
		var item jsonItem
		if err := json.Unmarshal(r, &item); err != nil {
			continue
		}

		post := municipality.ImportedPost{
			Title:         item.Title,
			Content:       firstNonEmpty(item.Content, item.Description),
			ImageURL:      firstNonEmpty(item.Image, item.ImageURL),
			Link:          firstNonEmpty(item.URL, item.Link),
			PublishedDate: parseJSONDate(item.Date),
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// parseJSONDate accepts a date string or epoch milliseconds
func parseJSONDate(raw json.RawMessage) *time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return parseDate(s)
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil && ms != 0 {
		t := time.UnixMilli(int64(ms)).UTC()
		return &t
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
