// internal/adapter/storage/storetest/storetest.go

// Package storetest holds a suite shared by every post store implementation.
// The Postgres stores run it only when LOCOM_TEST_DATABASE_URL is set.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stelios-avg/locom/internal/domain/post"
)

// Store is the surface the suite exercises
type Store interface {
	SavePost(ctx context.Context, p post.Post) error
	GetPost(ctx context.Context, id string) (*post.Post, error)
	FindPosts(ctx context.Context, filter post.Filter) ([]post.Post, error)
	DeletePost(ctx context.Context, id string) error
	SaveComment(ctx context.Context, c post.Comment) error
	FindComments(ctx context.Context, postID string) ([]post.Comment, error)
	CountComments(ctx context.Context, postID string) (int, error)
}

// RunPostStoreTests runs the shared suite. newStore must return an empty store.
func RunPostStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("SaveAndGet", func(t *testing.T) { testSaveAndGet(t, newStore(t)) })
	t.Run("SaveIsUpsert", func(t *testing.T) { testSaveIsUpsert(t, newStore(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("Visibility", func(t *testing.T) { testVisibility(t, newStore(t)) })
	t.Run("TypeAndCategory", func(t *testing.T) { testTypeAndCategory(t, newStore(t)) })
	t.Run("EventOrder", func(t *testing.T) { testEventOrder(t, newStore(t)) })
	t.Run("Comments", func(t *testing.T) { testComments(t, newStore(t)) })
}

func newPost(userID string, typ post.Type, createdAt time.Time) post.Post {
	return post.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   "content from " + userID,
		Type:      typ,
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
		UpdatedAt: createdAt.UTC().Truncate(time.Millisecond),
	}
}

func status(s post.Status) *post.Status { return &s }

func ids(posts []post.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func testSaveAndGet(t *testing.T, s Store) {
	ctx := context.Background()

	p := newPost("alice", post.TypeMarketplace, time.Now())
	price := decimal.RequireFromString("12.50")
	lat, lng := 35.1856, 33.3823
	p.Price = &price
	p.Latitude, p.Longitude = &lat, &lng

	require.NoError(t, s.SavePost(ctx, p))

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, got.UserID)
	assert.Equal(t, p.Content, got.Content)
	assert.Equal(t, post.TypeMarketplace, got.Type)
	require.NotNil(t, got.Price)
	assert.True(t, price.Equal(*got.Price))
	assert.Equal(t, p.Coordinate(), got.Coordinate())
	assert.Nil(t, got.Status)
}

func testSaveIsUpsert(t *testing.T, s Store) {
	ctx := context.Background()

	p := newPost("alice", post.TypeFeed, time.Now())
	p.Status = status(post.StatusPending)
	require.NoError(t, s.SavePost(ctx, p))

	p.Status = status(post.StatusApproved)
	p.Content = "edited"
	require.NoError(t, s.SavePost(ctx, p))

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	require.NotNil(t, got.Status)
	assert.Equal(t, post.StatusApproved, *got.Status)

	all, err := s.FindPosts(ctx, post.Filter{AllStatuses: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testGetMissing(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.GetPost(ctx, uuid.NewString())
	assert.ErrorIs(t, err, post.ErrNotFound)

	_, err = s.GetPost(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, post.ErrNotFound)

	assert.ErrorIs(t, s.DeletePost(ctx, uuid.NewString()), post.ErrNotFound)
}

func testVisibility(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	approved := newPost("alice", post.TypeFeed, base)
	legacy := newPost("alice", post.TypeFeed, base.Add(time.Minute))
	pending := newPost("bob", post.TypeFeed, base.Add(2*time.Minute))
	rejected := newPost("bob", post.TypeFeed, base.Add(3*time.Minute))

	approved.Status = status(post.StatusApproved)
	pending.Status = status(post.StatusPending)
	rejected.Status = status(post.StatusRejected)

	for _, p := range []post.Post{approved, legacy, pending, rejected} {
		require.NoError(t, s.SavePost(ctx, p))
	}

	tests := []struct {
		name   string
		filter post.Filter
		want   []string
	}{
		{
			name:   "anonymous sees approved and legacy",
			filter: post.Filter{},
			want:   []string{legacy.ID, approved.ID},
		},
		{
			name:   "author sees own pending and rejected",
			filter: post.Filter{ViewerID: "bob"},
			want:   []string{rejected.ID, pending.ID, legacy.ID, approved.ID},
		},
		{
			name:   "other viewer does not",
			filter: post.Filter{ViewerID: "carol"},
			want:   []string{legacy.ID, approved.ID},
		},
		{
			name:   "moderator sees everything",
			filter: post.Filter{AllStatuses: true},
			want:   []string{rejected.ID, pending.ID, legacy.ID, approved.ID},
		},
		{
			name:   "limit",
			filter: post.Filter{AllStatuses: true, Limit: 1},
			want:   []string{rejected.ID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindPosts(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func testTypeAndCategory(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Now()

	feed := newPost("alice", post.TypeFeed, now)
	notice := newPost("city", post.TypeFeed, now.Add(time.Second))
	category := "municipality"
	notice.Category = &category
	sale := newPost("alice", post.TypeMarketplace, now.Add(2*time.Second))

	for _, p := range []post.Post{feed, notice, sale} {
		require.NoError(t, s.SavePost(ctx, p))
	}

	got, err := s.FindPosts(ctx, post.Filter{Type: post.TypeFeed})
	require.NoError(t, err)
	assert.Equal(t, []string{notice.ID, feed.ID}, ids(got))

	got, err = s.FindPosts(ctx, post.Filter{Type: post.TypeFeed, Category: category})
	require.NoError(t, err)
	assert.Equal(t, []string{notice.ID}, ids(got))

	got, err = s.FindPosts(ctx, post.Filter{Type: post.TypeMarketplace})
	require.NoError(t, err)
	assert.Equal(t, []string{sale.ID}, ids(got))
}

func testEventOrder(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Now()

	later := newPost("alice", post.TypeEvent, now)
	sooner := newPost("alice", post.TypeEvent, now.Add(time.Second))
	undated := newPost("alice", post.TypeEvent, now.Add(2*time.Second))

	d1 := now.Add(72 * time.Hour).UTC().Truncate(time.Second)
	d2 := now.Add(24 * time.Hour).UTC().Truncate(time.Second)
	later.EventDate = &d1
	sooner.EventDate = &d2

	for _, p := range []post.Post{later, sooner, undated} {
		require.NoError(t, s.SavePost(ctx, p))
	}

	got, err := s.FindPosts(ctx, post.Filter{Type: post.TypeEvent, ByEventDate: true})
	require.NoError(t, err)
	assert.Equal(t, []string{sooner.ID, later.ID, undated.ID}, ids(got))
}

func testComments(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	p := newPost("alice", post.TypeFeed, now)
	require.NoError(t, s.SavePost(ctx, p))

	first := post.Comment{ID: uuid.NewString(), PostID: p.ID, UserID: "bob", Content: "first", CreatedAt: now}
	second := post.Comment{ID: uuid.NewString(), PostID: p.ID, UserID: "carol", Content: "second", CreatedAt: now.Add(time.Second)}
	require.NoError(t, s.SaveComment(ctx, second))
	require.NoError(t, s.SaveComment(ctx, first))

	comments, err := s.FindComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)

	count, err := s.CountComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)

	require.NoError(t, s.DeletePost(ctx, p.ID))
	count, err = s.CountComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
