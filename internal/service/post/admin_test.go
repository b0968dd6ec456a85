package post

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stelios-avg/locom/internal/adapter/events"
	"github.com/stelios-avg/locom/internal/domain/moderation"
	"github.com/stelios-avg/locom/internal/domain/post"
)

func TestIsAdmin(t *testing.T) {
	f := newFixture(t, func(c *ManagerConfig) { c.AdminIDs = []string{" admin-1 ", ""} }, nil)

	assert.True(t, f.manager.IsAdmin("admin-1"))
	assert.False(t, f.manager.IsAdmin("user-1"))
	assert.False(t, f.manager.IsAdmin(""))
}

func TestModerate(t *testing.T) {
	f := newFixture(t, func(c *ManagerConfig) { c.AutoApprove = false }, nil)
	ctx := context.Background()

	p, err := f.manager.CreatePost(ctx, "user-1", post.Draft{Content: "Free firewood"})
	require.NoError(t, err)

	_, err = f.manager.Moderate(ctx, "user-1", p.ID, post.Moderation{Status: post.StatusApproved})
	assert.ErrorIs(t, err, post.ErrForbidden)

	_, err = f.manager.Moderate(ctx, "admin-1", p.ID, post.Moderation{Status: post.StatusPending})
	assert.ErrorIs(t, err, post.ErrInvalid)

	_, err = f.manager.Moderate(ctx, "admin-1", "missing", post.Moderation{Status: post.StatusApproved})
	assert.ErrorIs(t, err, post.ErrNotFound)

	moderated, err := f.manager.Moderate(ctx, "admin-1", p.ID, post.Moderation{
		Status: post.StatusRejected,
		Notes:  ptr(" duplicate "),
	})
	require.NoError(t, err)
	assert.Equal(t, post.StatusRejected, *moderated.Status)
	assert.Equal(t, "duplicate", *moderated.ModerationNotes)
	assert.Equal(t, "admin-1", *moderated.ModeratedBy)
	assert.NotNil(t, moderated.ModeratedAt)

	feed, err := f.manager.ListFeed(ctx, post.ListRequest{ViewerID: "user-2"})
	require.NoError(t, err)
	assert.Empty(t, feed)

	assert.Equal(t, []string{events.SubjectPostCreated, events.SubjectPostModerated}, f.recorder.Subjects())
}

func TestListAll_FlagsContent(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.manager.CreatePost(ctx, "user-1", post.Draft{Content: "Quiet street, nice people"})
	require.NoError(t, err)

	// Written straight to the store, as an older post would be
	older := time.Now().Add(-time.Hour)
	require.NoError(t, f.store.SavePost(ctx, post.Post{
		ID:        "legacy",
		UserID:    "user-2",
		Content:   "click here for free money",
		Type:      post.TypeFeed,
		CreatedAt: older,
		UpdatedAt: older,
	}))

	reviewed, err := f.manager.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, reviewed, 2)

	assert.False(t, reviewed[0].Flagged)
	assert.True(t, reviewed[1].Flagged)
	assert.Equal(t, moderation.ReasonInappropriate, reviewed[1].FlagReason)
	assert.Contains(t, reviewed[1].FlaggedTerms, "click here")
}

func TestAdminDelete(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	p, err := f.manager.CreatePost(ctx, "user-1", post.Draft{Content: "Spare keys found"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.manager.Delete(ctx, "user-2", p.ID), post.ErrForbidden)
	require.NoError(t, f.manager.Delete(ctx, "admin-1", p.ID))
	assert.ErrorIs(t, f.manager.Delete(ctx, "admin-1", p.ID), post.ErrNotFound)
	assert.Equal(t, events.SubjectPostDeleted, f.recorder.Subjects()[1])
}
