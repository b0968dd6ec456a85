// internal/service/post/templates.go

package post

import (
	"fmt"
	"strings"
	"time"

	"github.com/stelios-avg/locom/internal/domain/geo"
	"github.com/stelios-avg/locom/internal/domain/post"
)

// Template turns a draft into a post of one type
type Template interface {
	// GetType returns the post type
	GetType() post.Type

	// Instantiate builds an unsaved post from a draft
	Instantiate(userID string, draft post.Draft) (*post.Post, error)
}

// BaseTemplate provides common functionality for all templates
type BaseTemplate struct {
	postType post.Type
}

// GetType returns the post type
func (t *BaseTemplate) GetType() post.Type {
	return t.postType
}

// instantiate copies the fields every post type shares
func (t *BaseTemplate) instantiate(userID string, draft post.Draft) (*post.Post, error) {
	content := strings.TrimSpace(draft.Content)
	if content == "" {
		return nil, fmt.Errorf("content is required: %w", post.ErrInvalid)
	}

	if (draft.Latitude == nil) != (draft.Longitude == nil) {
		return nil, fmt.Errorf("latitude and longitude must be set together: %w", post.ErrInvalid)
	}
	if draft.Latitude != nil {
		c := geo.Coordinate{Latitude: *draft.Latitude, Longitude: *draft.Longitude}
		if !c.Valid() {
			return nil, fmt.Errorf("coordinate out of range: %w", post.ErrInvalid)
		}
	}

	now := time.Now()
	return &post.Post{
		UserID:       userID,
		Content:      content,
		ImageURL:     nonEmpty(draft.ImageURL),
		Type:         t.postType,
		Category:     nonEmpty(draft.Category),
		Latitude:     draft.Latitude,
		Longitude:    draft.Longitude,
		LocationName: nonEmpty(draft.LocationName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// FeedTemplate is for neighborhood feed posts. Price and event fields are dropped.
type FeedTemplate struct {
	BaseTemplate
}

// NewFeedTemplate creates a new feed template
func NewFeedTemplate() *FeedTemplate {
	return &FeedTemplate{BaseTemplate: BaseTemplate{postType: post.TypeFeed}}
}

// Instantiate creates a new feed post from a draft
func (t *FeedTemplate) Instantiate(userID string, draft post.Draft) (*post.Post, error) {
	return t.instantiate(userID, draft)
}

// MarketplaceTemplate is for items offered for sale
type MarketplaceTemplate struct {
	BaseTemplate
}

// NewMarketplaceTemplate creates a new marketplace template
func NewMarketplaceTemplate() *MarketplaceTemplate {
	return &MarketplaceTemplate{BaseTemplate: BaseTemplate{postType: post.TypeMarketplace}}
}

// Instantiate creates a new listing. A price, when given, must not be negative.
func (t *MarketplaceTemplate) Instantiate(userID string, draft post.Draft) (*post.Post, error) {
	p, err := t.instantiate(userID, draft)
	if err != nil {
		return nil, err
	}

	if draft.Price != nil {
		if draft.Price.IsNegative() {
			return nil, fmt.Errorf("price must not be negative: %w", post.ErrInvalid)
		}
		price := draft.Price.Round(2)
		p.Price = &price
	}
	return p, nil
}

// EventTemplate is for happenings with a date and venue
type EventTemplate struct {
	BaseTemplate
}

// NewEventTemplate creates a new event template
func NewEventTemplate() *EventTemplate {
	return &EventTemplate{BaseTemplate: BaseTemplate{postType: post.TypeEvent}}
}

// Instantiate creates a new event post
func (t *EventTemplate) Instantiate(userID string, draft post.Draft) (*post.Post, error) {
	p, err := t.instantiate(userID, draft)
	if err != nil {
		return nil, err
	}

	p.EventDate = draft.EventDate
	p.EventLocation = nonEmpty(draft.EventLocation)
	return p, nil
}

// DefaultTemplates returns one template per post type
func DefaultTemplates() []Template {
	return []Template{
		NewFeedTemplate(),
		NewMarketplaceTemplate(),
		NewEventTemplate(),
	}
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
