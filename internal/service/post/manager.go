// internal/service/post/manager.go

package post

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/adapter/events"
	"github.com/stelios-avg/locom/internal/adapter/ratelimit"
	"github.com/stelios-avg/locom/internal/domain/geo"
	"github.com/stelios-avg/locom/internal/domain/moderation"
	"github.com/stelios-avg/locom/internal/domain/post"
	"github.com/stelios-avg/locom/internal/metrics"
	geosvc "github.com/stelios-avg/locom/internal/service/geo"
)

// PostStore defines the storage interface for posts
type PostStore interface {
	// SavePost inserts or replaces a post
	SavePost(ctx context.Context, p post.Post) error

	// GetPost retrieves a post by ID
	GetPost(ctx context.Context, id string) (*post.Post, error)

	// FindPosts finds posts matching the filter
	FindPosts(ctx context.Context, filter post.Filter) ([]post.Post, error)

	// DeletePost removes a post and its comments
	DeletePost(ctx context.Context, id string) error
}

// CommentStore defines the storage interface for comments
type CommentStore interface {
	// SaveComment stores a comment
	SaveComment(ctx context.Context, c post.Comment) error

	// FindComments returns a post's comments oldest first
	FindComments(ctx context.Context, postID string) ([]post.Comment, error)

	// CountComments returns the number of comments on a post
	CountComments(ctx context.Context, postID string) (int, error)
}

// LocationSource resolves a user's stored home coordinate
type LocationSource interface {
	Location(ctx context.Context, userID string) (*geo.Coordinate, error)
}

// Limiter decides whether an identifier may act again
type Limiter interface {
	Allow(ctx context.Context, identifier string, rule ratelimit.Rule) (bool, error)
}

// ManagerConfig contains configuration for the post manager
type ManagerConfig struct {
	FeedLimit   int
	AdminLimit  int
	AdminIDs    []string
	AutoApprove bool
	PostRule    ratelimit.Rule
	CommentRule ratelimit.Rule
}

// DefaultManagerConfig returns the limits used by the API
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		FeedLimit:   50,
		AdminLimit:  100,
		AutoApprove: true,
		PostRule:    ratelimit.Rule{Key: "rl:post:", Limit: 10, Window: time.Hour},
		CommentRule: ratelimit.Rule{Key: "rl:comment:", Limit: 30, Window: time.Hour},
	}
}

// PostManager implements the post.Manager and post.Admin interfaces
type PostManager struct {
	log       *zap.Logger
	posts     PostStore
	comments  CommentStore
	locations LocationSource
	checker   moderation.Checker
	selector  geo.Selector
	limiter   Limiter
	publisher events.Publisher
	templates map[post.Type]Template
	admins    map[string]struct{}
	config    ManagerConfig
	mu        sync.RWMutex
}

// NewPostManager creates a new post manager with the default templates registered
func NewPostManager(
	log *zap.Logger,
	posts PostStore,
	comments CommentStore,
	locations LocationSource,
	checker moderation.Checker,
	selector geo.Selector,
	limiter Limiter,
	publisher events.Publisher,
	config ManagerConfig,
) *PostManager {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}

	pm := &PostManager{
		log:       log,
		posts:     posts,
		comments:  comments,
		locations: locations,
		checker:   checker,
		selector:  selector,
		limiter:   limiter,
		publisher: publisher,
		templates: make(map[post.Type]Template),
		admins:    make(map[string]struct{}, len(config.AdminIDs)),
		config:    config,
	}

	for _, id := range config.AdminIDs {
		if id = strings.TrimSpace(id); id != "" {
			pm.admins[id] = struct{}{}
		}
	}

	for _, t := range DefaultTemplates() {
		pm.RegisterTemplate(t)
	}

	return pm
}

// RegisterTemplate registers a post template, replacing any for the same type
func (pm *PostManager) RegisterTemplate(template Template) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.templates[template.GetType()] = template
}

func (pm *PostManager) template(t post.Type) Template {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return pm.templates[t]
}

// CreatePost moderates a draft and stores it
func (pm *PostManager) CreatePost(ctx context.Context, userID string, draft post.Draft) (*post.Post, error) {
	if draft.Type == "" {
		draft.Type = post.TypeFeed
	}
	template := pm.template(draft.Type)
	if template == nil {
		return nil, fmt.Errorf("unknown post type %q: %w", draft.Type, post.ErrInvalid)
	}

	p, err := template.Instantiate(userID, draft)
	if err != nil {
		return nil, err
	}

	var image *moderation.Image
	if draft.Image != nil {
		image = &moderation.Image{
			Name:        draft.Image.Name,
			Size:        draft.Image.Size,
			ContentType: draft.Image.ContentType,
		}
	}

	result := pm.checker.ValidateSubmission(p.Content, image)
	if !result.IsValid {
		recordRejected(result.Errors)
		return nil, &post.RejectedError{Errors: result.Errors}
	}
	metrics.ModerationVerdicts.WithLabelValues("accepted", "").Inc()

	// Only accepted drafts spend a slot
	if err := pm.allow(ctx, userID, "post", pm.config.PostRule); err != nil {
		return nil, err
	}

	p.ID = uuid.New().String()
	status := post.StatusPending
	if pm.config.AutoApprove {
		status = post.StatusApproved
	}
	p.Status = &status

	if err := pm.posts.SavePost(ctx, *p); err != nil {
		return nil, fmt.Errorf("error saving post: %w", err)
	}

	pm.publish(events.SubjectPostCreated, p)

	return p, nil
}

// GetPost returns a post with its comment count. Posts the viewer may not
// see are reported as not found.
func (pm *PostManager) GetPost(ctx context.Context, viewerID, id string) (*post.Post, error) {
	p, err := pm.visiblePost(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}

	count, err := pm.comments.CountComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error counting comments: %w", err)
	}
	p.CommentCount = count

	return p, nil
}

// DeletePost removes a post. Only the author or an admin may delete it.
func (pm *PostManager) DeletePost(ctx context.Context, userID, id string) error {
	p, err := pm.posts.GetPost(ctx, id)
	if err != nil {
		return err
	}

	if p.UserID != userID && !pm.IsAdmin(userID) {
		return post.ErrForbidden
	}

	return pm.remove(ctx, userID, id)
}

// ListFeed returns the feed posts around the viewer
func (pm *PostManager) ListFeed(ctx context.Context, req post.ListRequest) ([]post.Post, error) {
	posts, err := pm.posts.FindPosts(ctx, post.Filter{
		Type:     post.TypeFeed,
		ViewerID: req.ViewerID,
		Limit:    pm.config.FeedLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("error finding feed posts: %w", err)
	}

	radius := pm.selector.NormalizeRadius(req.RadiusKm)
	return pm.scope(ctx, req, posts, radius), nil
}

// ListMarketplace returns marketplace listings, newest first
func (pm *PostManager) ListMarketplace(ctx context.Context, req post.ListRequest) ([]post.Post, error) {
	return pm.listBoard(ctx, req, post.Filter{
		Type:     post.TypeMarketplace,
		Category: req.Category,
		ViewerID: req.ViewerID,
		Limit:    pm.config.FeedLimit,
	})
}

// ListEvents returns events ordered by event date
func (pm *PostManager) ListEvents(ctx context.Context, req post.ListRequest) ([]post.Post, error) {
	return pm.listBoard(ctx, req, post.Filter{
		Type:        post.TypeEvent,
		Category:    req.Category,
		ViewerID:    req.ViewerID,
		ByEventDate: true,
		Limit:       pm.config.FeedLimit,
	})
}

// listBoard applies the radius only when the caller asked for one
func (pm *PostManager) listBoard(ctx context.Context, req post.ListRequest, filter post.Filter) ([]post.Post, error) {
	posts, err := pm.posts.FindPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding %s posts: %w", filter.Type, err)
	}

	if req.RadiusKm <= 0 {
		return posts, nil
	}
	return pm.scope(ctx, req, posts, pm.selector.NormalizeRadius(req.RadiusKm)), nil
}

func (pm *PostManager) scope(ctx context.Context, req post.ListRequest, posts []post.Post, radius float64) []post.Post {
	observer := pm.selector.ResolveObserver(pm.profileLocation(ctx, req.ViewerID), req.Device)
	return geosvc.FilterVisible(pm.selector, observer, posts, radius)
}

// profileLocation falls through to the next observer source on lookup errors
func (pm *PostManager) profileLocation(ctx context.Context, userID string) *geo.Coordinate {
	if userID == "" || pm.locations == nil {
		return nil
	}

	loc, err := pm.locations.Location(ctx, userID)
	if err != nil {
		pm.log.Warn("Error loading profile location", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return loc
}

// AddComment moderates and stores a comment on an existing post
func (pm *PostManager) AddComment(ctx context.Context, userID, postID, content string) (*post.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("comment is required: %w", post.ErrInvalid)
	}

	if _, err := pm.visiblePost(ctx, userID, postID); err != nil {
		return nil, err
	}

	verdict := pm.checker.CheckText(content)
	if !verdict.IsAppropriate {
		recordRejected([]string{verdict.Reason})
		return nil, &post.RejectedError{Errors: []string{verdict.Reason}}
	}
	metrics.ModerationVerdicts.WithLabelValues("accepted", "").Inc()

	if err := pm.allow(ctx, userID, "comment", pm.config.CommentRule); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &post.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := pm.comments.SaveComment(ctx, *c); err != nil {
		return nil, fmt.Errorf("error saving comment: %w", err)
	}

	pm.publish(events.SubjectCommentCreated, c)

	return c, nil
}

// ListComments returns a post's comments oldest first
func (pm *PostManager) ListComments(ctx context.Context, viewerID, postID string) ([]post.Comment, error) {
	if _, err := pm.visiblePost(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	return pm.comments.FindComments(ctx, postID)
}

// visiblePost loads a post the viewer may see. Admins see every status.
func (pm *PostManager) visiblePost(ctx context.Context, viewerID, id string) (*post.Post, error) {
	p, err := pm.posts.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.VisibleTo(viewerID) && !pm.IsAdmin(viewerID) {
		return nil, post.ErrNotFound
	}
	return p, nil
}

func (pm *PostManager) allow(ctx context.Context, userID, action string, rule ratelimit.Rule) error {
	ok, err := pm.limiter.Allow(ctx, userID, rule)
	if err != nil {
		pm.log.Warn("Rate limiter unavailable", zap.String("action", action), zap.Error(err))
	}
	if !ok {
		metrics.RateLimited.WithLabelValues(action).Inc()
		return post.ErrRateLimited
	}
	return nil
}

func (pm *PostManager) remove(ctx context.Context, userID, id string) error {
	if err := pm.posts.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}

	pm.publish(events.SubjectPostDeleted, map[string]string{
		"id":         id,
		"deleted_by": userID,
	})
	return nil
}

// publish logs publishing errors and continues
func (pm *PostManager) publish(subject string, payload interface{}) {
	if err := pm.publisher.Publish(subject, payload); err != nil {
		pm.log.Error("Error publishing event", zap.String("subject", subject), zap.Error(err))
	}
}

func recordRejected(reasons []string) {
	for _, reason := range reasons {
		metrics.ModerationVerdicts.WithLabelValues("rejected", reason).Inc()
	}
}
