package post

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stelios-avg/locom/internal/adapter/events"
	"github.com/stelios-avg/locom/internal/adapter/ratelimit"
	"github.com/stelios-avg/locom/internal/adapter/storage/memory"
	"github.com/stelios-avg/locom/internal/domain/geo"
	"github.com/stelios-avg/locom/internal/domain/moderation"
	"github.com/stelios-avg/locom/internal/domain/post"
	geosvc "github.com/stelios-avg/locom/internal/service/geo"
	modsvc "github.com/stelios-avg/locom/internal/service/moderation"
)

type fakeLocations map[string]*geo.Coordinate

func (f fakeLocations) Location(_ context.Context, userID string) (*geo.Coordinate, error) {
	return f[userID], nil
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string, ratelimit.Rule) (bool, error) { return false, nil }

// countingLimiter allows everything and counts the slots taken per rule
type countingLimiter map[string]int

func (c countingLimiter) Allow(_ context.Context, _ string, rule ratelimit.Rule) (bool, error) {
	c[rule.Key]++
	return true, nil
}

type fixture struct {
	manager  *PostManager
	store    *memory.Store
	recorder *events.Recorder
}

func newFixture(t *testing.T, configure func(*ManagerConfig), locations fakeLocations) fixture {
	t.Helper()

	config := DefaultManagerConfig()
	config.AdminIDs = []string{"admin-1"}
	if configure != nil {
		configure(&config)
	}

	store := memory.NewStore()
	recorder := &events.Recorder{}
	manager := NewPostManager(
		zaptest.NewLogger(t),
		store,
		store,
		locations,
		modsvc.NewFilter(),
		geosvc.NewRadiusSelector(geosvc.DefaultConfig()),
		nil,
		recorder,
		config,
	)
	return fixture{manager: manager, store: store, recorder: recorder}
}

func ptr[T any](v T) *T { return &v }

func located(t *testing.T, store *memory.Store, id string, lat, lng *float64, created time.Time) {
	t.Helper()
	require.NoError(t, store.SavePost(context.Background(), post.Post{
		ID:        id,
		UserID:    "author",
		Content:   "post " + id,
		Type:      post.TypeFeed,
		Latitude:  lat,
		Longitude: lng,
		CreatedAt: created,
		UpdatedAt: created,
	}))
}

func TestCreatePost_Accepted(t *testing.T) {
	f := newFixture(t, nil, nil)

	p, err := f.manager.CreatePost(context.Background(), "user-1", post.Draft{
		Content:   "  Lost cat near the old market  ",
		Latitude:  ptr(35.17),
		Longitude: ptr(33.36),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Lost cat near the old market", p.Content)
	assert.Equal(t, post.TypeFeed, p.Type)
	require.NotNil(t, p.Status)
	assert.Equal(t, post.StatusApproved, *p.Status)
	assert.Equal(t, []string{events.SubjectPostCreated}, f.recorder.Subjects())

	stored, err := f.store.GetPost(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Content, stored.Content)
}

func TestCreatePost_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		draft   post.Draft
		reasons []string
		err     error
	}{
		{
			name:    "shouting",
			draft:   post.Draft{Content: "THIS IS ALL SHOUTING TEXT"},
			reasons: []string{moderation.ReasonExcessiveCaps},
		},
		{
			name: "text and image both fail",
			draft: post.Draft{
				Content: "buy now at my shop",
				Image:   &post.ImageMeta{Name: "cat.png", Size: 11 * 1024 * 1024, ContentType: "image/png"},
			},
			reasons: []string{moderation.ReasonInappropriate, moderation.ReasonImageTooLarge},
		},
		{
			name:  "empty content",
			draft: post.Draft{Content: "   "},
			err:   post.ErrInvalid,
		},
		{
			name:  "unknown type",
			draft: post.Draft{Content: "hello there", Type: "classified"},
			err:   post.ErrInvalid,
		},
		{
			name:  "latitude without longitude",
			draft: post.Draft{Content: "hello there", Latitude: ptr(35.0)},
			err:   post.ErrInvalid,
		},
		{
			name:  "out of range",
			draft: post.Draft{Content: "hello there", Latitude: ptr(95.0), Longitude: ptr(33.0)},
			err:   post.ErrInvalid,
		},
		{
			name: "negative price",
			draft: post.Draft{
				Content: "bike for sale",
				Type:    post.TypeMarketplace,
				Price:   ptr(decimal.NewFromInt(-5)),
			},
			err: post.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)

			_, err := f.manager.CreatePost(context.Background(), "user-1", tt.draft)
			require.Error(t, err)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				var rejected *post.RejectedError
				require.True(t, errors.As(err, &rejected))
				assert.Equal(t, tt.reasons, rejected.Errors)
			}

			posts, err := f.store.FindPosts(context.Background(), post.Filter{AllStatuses: true})
			require.NoError(t, err)
			assert.Empty(t, posts)
			assert.Empty(t, f.recorder.Events)
		})
	}
}

func TestCreatePost_TypeRules(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	when := time.Date(2025, 12, 1, 18, 0, 0, 0, time.UTC)

	feed, err := f.manager.CreatePost(ctx, "user-1", post.Draft{
		Content:   "Street party tonight",
		Price:     ptr(decimal.NewFromInt(10)),
		EventDate: &when,
	})
	require.NoError(t, err)
	assert.Nil(t, feed.Price)
	assert.Nil(t, feed.EventDate)

	listing, err := f.manager.CreatePost(ctx, "user-1", post.Draft{
		Content: "Bike for sale",
		Type:    post.TypeMarketplace,
		Price:   ptr(decimal.RequireFromString("49.999")),
	})
	require.NoError(t, err)
	require.NotNil(t, listing.Price)
	assert.Equal(t, "50", listing.Price.String())
	assert.Nil(t, listing.EventDate)

	event, err := f.manager.CreatePost(ctx, "user-1", post.Draft{
		Content:       "Choir concert",
		Type:          post.TypeEvent,
		EventDate:     &when,
		EventLocation: ptr(" Town hall "),
	})
	require.NoError(t, err)
	require.NotNil(t, event.EventDate)
	assert.True(t, when.Equal(*event.EventDate))
	assert.Equal(t, "Town hall", *event.EventLocation)
	assert.Nil(t, event.Price)
}

func TestCreatePost_RateLimited(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.manager.limiter = denyAll{}

	_, err := f.manager.CreatePost(context.Background(), "user-1", post.Draft{Content: "hello neighbours"})
	assert.ErrorIs(t, err, post.ErrRateLimited)
}

func TestCreatePost_PendingWithoutAutoApprove(t *testing.T) {
	f := newFixture(t, func(c *ManagerConfig) { c.AutoApprove = false }, nil)
	ctx := context.Background()

	p, err := f.manager.CreatePost(ctx, "user-1", post.Draft{Content: "hello neighbours"})
	require.NoError(t, err)
	assert.Equal(t, post.StatusPending, *p.Status)

	own, err := f.manager.ListFeed(ctx, post.ListRequest{ViewerID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	other, err := f.manager.ListFeed(ctx, post.ListRequest{ViewerID: "user-2"})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestListFeed_RadiusAndObserver(t *testing.T) {
	// Nicosia centre is the default observer; Limassol is about 65 km away
	locations := fakeLocations{"limassol-user": {Latitude: 34.68, Longitude: 33.04}}
	f := newFixture(t, nil, locations)
	base := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)

	located(t, f.store, "near", ptr(35.19), ptr(33.38), base)
	located(t, f.store, "far", ptr(34.68), ptr(33.04), base.Add(time.Minute))
	located(t, f.store, "nowhere", nil, nil, base.Add(2*time.Minute))

	ids := func(posts []post.Post) []string {
		out := make([]string, len(posts))
		for i, p := range posts {
			out[i] = p.ID
		}
		return out
	}

	tests := []struct {
		name string
		req  post.ListRequest
		want []string
	}{
		{"default observer", post.ListRequest{}, []string{"nowhere", "near"}},
		{"profile location", post.ListRequest{ViewerID: "limassol-user"}, []string{"nowhere", "far"}},
		{"device location", post.ListRequest{Device: &geo.Coordinate{Latitude: 34.68, Longitude: 33.04}}, []string{"nowhere", "far"}},
		{"profile beats device", post.ListRequest{ViewerID: "limassol-user", Device: &geo.Coordinate{Latitude: 35.19, Longitude: 33.38}}, []string{"nowhere", "far"}},
		{"wide radius", post.ListRequest{RadiusKm: 100}, []string{"nowhere", "far", "near"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := f.manager.ListFeed(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(posts))
		})
	}
}

func TestListEvents_OrderedByEventDate(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	soon := time.Now().Add(24 * time.Hour)
	later := soon.Add(24 * time.Hour)

	for _, d := range []post.Draft{
		{Content: "Later event", Type: post.TypeEvent, EventDate: &later},
		{Content: "Undated event", Type: post.TypeEvent},
		{Content: "Soon event", Type: post.TypeEvent, EventDate: &soon, Category: ptr("music")},
	} {
		_, err := f.manager.CreatePost(ctx, "user-1", d)
		require.NoError(t, err)
	}

	all, err := f.manager.ListEvents(ctx, post.ListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Soon event", all[0].Content)
	assert.Equal(t, "Later event", all[1].Content)
	assert.Equal(t, "Undated event", all[2].Content)

	music, err := f.manager.ListEvents(ctx, post.ListRequest{Category: "music"})
	require.NoError(t, err)
	require.Len(t, music, 1)
	assert.Equal(t, "Soon event", music[0].Content)
}

func TestComments(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	p, err := f.manager.CreatePost(ctx, "user-1", post.Draft{Content: "Who lost a dog?"})
	require.NoError(t, err)

	_, err = f.manager.AddComment(ctx, "user-2", "missing", "Not me")
	assert.ErrorIs(t, err, post.ErrNotFound)

	_, err = f.manager.AddComment(ctx, "user-2", p.ID, "what a load of crap")
	var rejected *post.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, []string{moderation.ReasonInappropriate}, rejected.Errors)

	c, err := f.manager.AddComment(ctx, "user-2", p.ID, " I saw one on Ledra street ")
	require.NoError(t, err)
	assert.Equal(t, "I saw one on Ledra street", c.Content)

	comments, err := f.manager.ListComments(ctx, "user-3", p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, c.ID, comments[0].ID)

	got, err := f.manager.GetPost(ctx, "", p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentCount)

	assert.Equal(t, []string{events.SubjectPostCreated, events.SubjectCommentCreated}, f.recorder.Subjects())
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	p, err := f.manager.CreatePost(ctx, "user-1", post.Draft{Content: "Garage sale Saturday"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.manager.DeletePost(ctx, "user-2", p.ID), post.ErrForbidden)
	require.NoError(t, f.manager.DeletePost(ctx, "user-1", p.ID))

	_, err = f.manager.GetPost(ctx, "user-1", p.ID)
	assert.ErrorIs(t, err, post.ErrNotFound)
	assert.ErrorIs(t, f.manager.DeletePost(ctx, "user-1", p.ID), post.ErrNotFound)
}

func TestRateLimit_OnlyAcceptedSubmissionsCount(t *testing.T) {
	f := newFixture(t, nil, nil)
	limiter := countingLimiter{}
	f.manager.limiter = limiter
	ctx := context.Background()
	rules := DefaultManagerConfig()

	_, err := f.manager.CreatePost(ctx, "user-1", post.Draft{Content: "THIS IS ALL SHOUTING TEXT"})
	require.Error(t, err)
	assert.Zero(t, limiter[rules.PostRule.Key])

	p, err := f.manager.CreatePost(ctx, "user-1", post.Draft{Content: "Lost keys near the park"})
	require.NoError(t, err)
	assert.Equal(t, 1, limiter[rules.PostRule.Key])

	_, err = f.manager.AddComment(ctx, "user-2", p.ID, "what a load of crap")
	require.Error(t, err)
	assert.Zero(t, limiter[rules.CommentRule.Key])

	_, err = f.manager.AddComment(ctx, "user-2", p.ID, "Found them by the bench")
	require.NoError(t, err)
	assert.Equal(t, 1, limiter[rules.CommentRule.Key])
}

func TestHiddenPostsAreNotFound(t *testing.T) {
	f := newFixture(t, func(c *ManagerConfig) { c.AutoApprove = false }, nil)
	ctx := context.Background()

	p, err := f.manager.CreatePost(ctx, "user-1", post.Draft{Content: "Pending announcement"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		viewer string
		err    error
	}{
		{"author", "user-1", nil},
		{"admin", "admin-1", nil},
		{"other user", "user-2", post.ErrNotFound},
		{"anonymous", "", post.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.manager.GetPost(ctx, tt.viewer, p.ID)
			assertErr(t, tt.err, err)

			_, err = f.manager.ListComments(ctx, tt.viewer, p.ID)
			assertErr(t, tt.err, err)
		})
	}

	_, err = f.manager.AddComment(ctx, "user-2", p.ID, "Is this real?")
	assert.ErrorIs(t, err, post.ErrNotFound)

	_, err = f.manager.AddComment(ctx, "user-1", p.ID, "Adding details")
	assert.NoError(t, err)
}

func assertErr(t *testing.T, want, got error) {
	t.Helper()
	if want == nil {
		assert.NoError(t, got)
		return
	}
	assert.ErrorIs(t, got, want)
}
