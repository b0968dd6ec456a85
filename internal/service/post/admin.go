// internal/service/post/admin.go

package post

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/adapter/events"
	"github.com/stelios-avg/locom/internal/domain/post"
)

// IsAdmin reports whether userID is a configured moderator
func (pm *PostManager) IsAdmin(userID string) bool {
	_, ok := pm.admins[userID]
	return ok
}

// ListAll returns recent posts of every status, each with the current text verdict
func (pm *PostManager) ListAll(ctx context.Context) ([]post.Reviewed, error) {
	posts, err := pm.posts.FindPosts(ctx, post.Filter{
		AllStatuses: true,
		Limit:       pm.config.AdminLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("error finding posts: %w", err)
	}

	reviewed := make([]post.Reviewed, 0, len(posts))
	for _, p := range posts {
		verdict := pm.checker.CheckText(p.Content)
		reviewed = append(reviewed, post.Reviewed{
			Post:         p,
			Flagged:      !verdict.IsAppropriate,
			FlagReason:   verdict.Reason,
			FlaggedTerms: verdict.FlaggedTerms,
		})
	}

	return reviewed, nil
}

// Moderate records an approve or reject decision on a post
func (pm *PostManager) Moderate(ctx context.Context, adminID, postID string, decision post.Moderation) (*post.Post, error) {
	if !pm.IsAdmin(adminID) {
		return nil, post.ErrForbidden
	}
	if decision.Status != post.StatusApproved && decision.Status != post.StatusRejected {
		return nil, fmt.Errorf("status must be approved or rejected: %w", post.ErrInvalid)
	}

	p, err := pm.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	status := decision.Status
	p.Status = &status
	p.ModerationNotes = nil
	if decision.Notes != nil {
		if notes := strings.TrimSpace(*decision.Notes); notes != "" {
			p.ModerationNotes = &notes
		}
	}
	by := adminID
	p.ModeratedBy = &by
	p.ModeratedAt = &now
	p.UpdatedAt = now

	if err := pm.posts.SavePost(ctx, *p); err != nil {
		return nil, fmt.Errorf("error saving moderation: %w", err)
	}

	pm.log.Info("Post moderated",
		zap.String("post_id", postID),
		zap.String("status", string(status)),
		zap.String("admin_id", adminID),
	)
	pm.publish(events.SubjectPostModerated, p)

	return p, nil
}

// Delete removes any post on behalf of an admin
func (pm *PostManager) Delete(ctx context.Context, adminID, postID string) error {
	if !pm.IsAdmin(adminID) {
		return post.ErrForbidden
	}

	if _, err := pm.posts.GetPost(ctx, postID); err != nil {
		return err
	}

	return pm.remove(ctx, adminID, postID)
}
