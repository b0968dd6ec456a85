package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stelios-avg/locom/internal/adapter/storage/memory"
	"github.com/stelios-avg/locom/internal/domain/geo"
	"github.com/stelios-avg/locom/internal/domain/moderation"
	"github.com/stelios-avg/locom/internal/domain/post"
	"github.com/stelios-avg/locom/internal/domain/profile"
	modsvc "github.com/stelios-avg/locom/internal/service/moderation"
)

func ptr[T any](v T) *T { return &v }

func newTestManager(t *testing.T) *ProfileManager {
	store := memory.NewStore(profile.Neighborhood{ID: "1", Name: "Old Town", City: "Nicosia", Latitude: 35.1753, Longitude: 33.3642})
	return NewProfileManager(zaptest.NewLogger(t), store, modsvc.NewFilter())
}

func TestUpdateProfile_CreatesAndMerges(t *testing.T) {
	pm := newTestManager(t)
	ctx := context.Background()

	_, err := pm.GetProfile(ctx, "user-1")
	assert.ErrorIs(t, err, profile.ErrNotFound)

	created, err := pm.UpdateProfile(ctx, "user-1", profile.Update{Name: ptr("  Eleni  ")})
	require.NoError(t, err)
	assert.Equal(t, "Eleni", *created.Name)
	assert.Nil(t, created.Bio)
	assert.False(t, created.CreatedAt.IsZero())

	updated, err := pm.UpdateProfile(ctx, "user-1", profile.Update{
		Bio:       ptr("Gardener"),
		Latitude:  ptr(35.17),
		Longitude: ptr(33.36),
	})
	require.NoError(t, err)
	assert.Equal(t, "Eleni", *updated.Name)
	assert.Equal(t, "Gardener", *updated.Bio)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	loc, err := pm.Location(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, &geo.Coordinate{Latitude: 35.17, Longitude: 33.36}, loc)
}

func TestUpdateProfile_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		update  profile.Update
		reasons []string
		err     error
	}{
		{
			name:    "name and bio both flagged",
			update:  profile.Update{Name: ptr("crap"), Bio: ptr("click here")},
			reasons: []string{moderation.ReasonInappropriate, moderation.ReasonInappropriate},
		},
		{
			name:   "half a coordinate",
			update: profile.Update{Latitude: ptr(35.0)},
			err:    post.ErrInvalid,
		},
		{
			name:   "longitude out of range",
			update: profile.Update{Latitude: ptr(35.0), Longitude: ptr(181.0)},
			err:    post.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := newTestManager(t)

			_, err := pm.UpdateProfile(context.Background(), "user-1", tt.update)
			require.Error(t, err)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				var rejected *post.RejectedError
				require.True(t, errors.As(err, &rejected))
				assert.Equal(t, tt.reasons, rejected.Errors)
			}

			_, err = pm.GetProfile(context.Background(), "user-1")
			assert.ErrorIs(t, err, profile.ErrNotFound)
		})
	}
}

func TestLocation_UnknownUser(t *testing.T) {
	pm := newTestManager(t)

	loc, err := pm.Location(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestListNeighborhoods(t *testing.T) {
	pm := newTestManager(t)

	neighborhoods, err := pm.ListNeighborhoods(context.Background())
	require.NoError(t, err)
	require.Len(t, neighborhoods, 1)
	assert.Equal(t, "Old Town", neighborhoods[0].Name)
}
