// internal/domain/post/model.go

package post

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stelios-avg/locom/internal/domain/geo"
)

// Type identifies the board a post belongs to
type Type string

const (
	TypeFeed        Type = "feed"
	TypeMarketplace Type = "marketplace"
	TypeEvent       Type = "event"
)

// Valid reports whether t is a known post type
func (t Type) Valid() bool {
	switch t {
	case TypeFeed, TypeMarketplace, TypeEvent:
		return true
	}
	return false
}

// Status is the moderation state of a post. A nil status means approved.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s can be set by a moderator
func (s Status) Valid() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusPending
}

// Common errors
var (
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrInvalid     = errors.New("invalid")
	ErrRateLimited = errors.New("rate limited")
)

// RejectedError carries the moderation reasons a submission was refused for
type RejectedError struct {
	Errors []string
}

func (e *RejectedError) Error() string {
	return "content rejected: " + strings.Join(e.Errors, "; ")
}

// Post is a geotagged entry on the feed, marketplace or events board
type Post struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	Content         string           `json:"content"`
	ImageURL        *string          `json:"image_url"`
	Type            Type             `json:"post_type"`
	Category        *string          `json:"category"`
	Latitude        *float64         `json:"latitude"`
	Longitude       *float64         `json:"longitude"`
	LocationName    *string          `json:"location_name"`
	Price           *decimal.Decimal `json:"price"`
	EventDate       *time.Time       `json:"event_date"`
	EventLocation   *string          `json:"event_location"`
	Status          *Status          `json:"status"`
	ModerationNotes *string          `json:"moderation_notes,omitempty"`
	ModeratedBy     *string          `json:"moderated_by,omitempty"`
	ModeratedAt     *time.Time       `json:"moderated_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	CommentCount    int              `json:"comment_count"`
}

// Coordinate implements geo.Located. Both latitude and longitude must be set.
func (p Post) Coordinate() *geo.Coordinate {
	if p.Latitude == nil || p.Longitude == nil {
		return nil
	}
	return &geo.Coordinate{Latitude: *p.Latitude, Longitude: *p.Longitude}
}

// SetCoordinate stores c on the post, clearing it when c is nil
func (p *Post) SetCoordinate(c *geo.Coordinate) {
	if c == nil {
		p.Latitude, p.Longitude = nil, nil
		return
	}
	lat, lng := c.Latitude, c.Longitude
	p.Latitude, p.Longitude = &lat, &lng
}

// Approved reports whether the post is publicly visible
func (p Post) Approved() bool {
	return p.Status == nil || *p.Status == StatusApproved
}

// VisibleTo reports whether viewerID may see the post in a listing
func (p Post) VisibleTo(viewerID string) bool {
	return p.Approved() || (viewerID != "" && p.UserID == viewerID)
}

// Filter defines criteria for listing posts
type Filter struct {
	Type     Type
	Category string
	ViewerID string
	// AllStatuses disables the visibility rule, for moderators
	AllStatuses bool
	// ByEventDate orders by event date ascending instead of newest first
	ByEventDate bool
	Limit       int
}

// Draft is a post as submitted by a user
type Draft struct {
	Content       string           `json:"content"`
	ImageURL      *string          `json:"image_url"`
	Image         *ImageMeta       `json:"image"`
	Type          Type             `json:"post_type"`
	Category      *string          `json:"category"`
	Latitude      *float64         `json:"latitude"`
	Longitude     *float64         `json:"longitude"`
	LocationName  *string          `json:"location_name"`
	Price         *decimal.Decimal `json:"price"`
	EventDate     *time.Time       `json:"event_date"`
	EventLocation *string          `json:"event_location"`
}

// ImageMeta describes an uploaded attachment for moderation
type ImageMeta struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"type"`
}

// Comment is a reply on a post
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Moderation is an admin decision on a post
type Moderation struct {
	Status Status  `json:"status"`
	Notes  *string `json:"notes"`
}

// Reviewed pairs a post with the live verdict of the text filter, for the admin panel
type Reviewed struct {
	Post
	Flagged      bool     `json:"flagged"`
	FlagReason   string   `json:"flag_reason,omitempty"`
	FlaggedTerms []string `json:"flagged_terms,omitempty"`
}
