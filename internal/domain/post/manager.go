// internal/domain/post/manager.go

package post

import (
	"context"

	"github.com/stelios-avg/locom/internal/domain/geo"
)

// ListRequest describes a board listing for a viewer
type ListRequest struct {
	ViewerID string
	Category string
	RadiusKm float64
	// Device is the viewer's live location, if the client sent one
	Device *geo.Coordinate
}

// Manager defines the interface for post management
type Manager interface {
	// CreatePost moderates and stores a new post
	CreatePost(ctx context.Context, userID string, draft Draft) (*Post, error)

	// GetPost returns a post visible to viewerID with its comment count
	GetPost(ctx context.Context, viewerID, id string) (*Post, error)

	// DeletePost removes a post owned by userID
	DeletePost(ctx context.Context, userID, id string) error

	// ListFeed returns the radius-scoped feed for a viewer
	ListFeed(ctx context.Context, req ListRequest) ([]Post, error)

	// ListMarketplace returns marketplace listings
	ListMarketplace(ctx context.Context, req ListRequest) ([]Post, error)

	// ListEvents returns events ordered by event date
	ListEvents(ctx context.Context, req ListRequest) ([]Post, error)

	// AddComment moderates and stores a comment on a post visible to userID
	AddComment(ctx context.Context, userID, postID, content string) (*Comment, error)

	// ListComments returns a post's comments oldest first
	ListComments(ctx context.Context, viewerID, postID string) ([]Comment, error)
}

// Admin defines moderator operations
type Admin interface {
	// IsAdmin reports whether userID may moderate
	IsAdmin(userID string) bool

	// ListAll returns recent posts of every status with a live filter verdict
	ListAll(ctx context.Context) ([]Reviewed, error)

	// Moderate records a decision on a post
	Moderate(ctx context.Context, adminID, postID string, decision Moderation) (*Post, error)

	// Delete removes any post
	Delete(ctx context.Context, adminID, postID string) error
}
