// internal/domain/municipality/model.go

package municipality

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stelios-avg/locom/internal/domain/geo"
)

// Category tags every post created from a municipality feed
const Category = "municipality"

// DefaultLocationName is stored when the feed location carries no name
const DefaultLocationName = "Municipality"

// ErrUnauthorized is returned when a sync trigger carries the wrong secret
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotConfigured is returned when a required sync setting is missing
var ErrNotConfigured = errors.New("not configured")

// ImportedPost is one announcement between feed fetch and persistence
type ImportedPost struct {
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	PublishedDate *time.Time `json:"publishedDate,omitempty"`
	Link          string     `json:"link,omitempty"`
}

// Body is the stored post content
func (p ImportedPost) Body() string {
	return p.Title + "\n\n" + p.Content
}

// Location tags municipality posts with a place
type Location struct {
	geo.Coordinate
	Name string `json:"name"`
}

// ParseLocation parses a "lat,lng,name" triple. The name may be omitted.
func ParseLocation(s string) (*Location, error) {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("location %q: expected lat,lng,name", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("location %q: invalid latitude: %w", s, err)
	}

	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("location %q: invalid longitude: %w", s, err)
	}

	loc := &Location{Coordinate: geo.Coordinate{Latitude: lat, Longitude: lng}}
	if len(parts) == 3 {
		loc.Name = strings.TrimSpace(parts[2])
	}
	if loc.Name == "" {
		loc.Name = DefaultLocationName
	}
	return loc, nil
}

// Record is the post written for an imported announcement
type Record struct {
	OwnerID      string
	Content      string
	ImageURL     string
	Location     *geo.Coordinate
	LocationName string
	CreatedAt    time.Time
}

// NewRecord builds the stored form of p. The announcement's own publish date
// becomes the creation time when present, otherwise now is used.
func NewRecord(p ImportedPost, ownerID string, location *Location, now time.Time) Record {
	r := Record{
		OwnerID:      ownerID,
		Content:      p.Body(),
		ImageURL:     p.ImageURL,
		LocationName: DefaultLocationName,
		CreatedAt:    now,
	}

	if location != nil {
		c := location.Coordinate
		r.Location = &c
		if location.Name != "" {
			r.LocationName = location.Name
		}
	}

	if p.PublishedDate != nil && !p.PublishedDate.IsZero() {
		r.CreatedAt = *p.PublishedDate
	}

	return r
}

// Outcome is what happened to a single imported item
type Outcome string

const (
	OutcomeAdded   Outcome = "added"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// ItemResult pairs an imported item with its outcome
type ItemResult struct {
	Item    ImportedPost `json:"item"`
	Outcome Outcome      `json:"outcome"`
	Error   string       `json:"error,omitempty"`
}

// SyncResult summarizes one ingest run. Failed items count as neither added nor skipped.
type SyncResult struct {
	Added   int          `json:"postsAdded"`
	Skipped int          `json:"postsSkipped"`
	Total   int          `json:"totalPosts"`
	Items   []ItemResult `json:"outcomes"`
}

// Failed returns the number of items whose write failed
func (r SyncResult) Failed() int {
	return r.Total - r.Added - r.Skipped
}

// Importer ingests a municipality feed into the post store
type Importer interface {
	// ParseFeed fetches and parses the feed at url
	ParseFeed(ctx context.Context, url string) ([]ImportedPost, error)

	// Ingest parses the feed and stores every item that does not already exist
	Ingest(ctx context.Context, feedURL, ownerID string, location *Location) (*SyncResult, error)
}
