package municipality

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/stelios-avg/locom/internal/adapter/events"
	"github.com/stelios-avg/locom/internal/domain/municipality"
)

func TestSyncer_Authorize(t *testing.T) {
	s := NewSyncer(zaptest.NewLogger(t), nil, events.Nop{}, SyncConfig{Secret: "s3cret"})

	assert.NoError(t, s.Authorize("Bearer s3cret"))
	assert.ErrorIs(t, s.Authorize("Bearer wrong"), municipality.ErrUnauthorized)
	assert.ErrorIs(t, s.Authorize("bearer s3cret"), municipality.ErrUnauthorized)
	assert.ErrorIs(t, s.Authorize("Bearer s3cret "), municipality.ErrUnauthorized)
	assert.ErrorIs(t, s.Authorize(""), municipality.ErrUnauthorized)

	empty := NewSyncer(zaptest.NewLogger(t), nil, events.Nop{}, SyncConfig{})
	assert.ErrorIs(t, empty.Authorize("Bearer "), municipality.ErrUnauthorized)
}

func TestSyncer_Probe(t *testing.T) {
	s := NewSyncer(zaptest.NewLogger(t), nil, events.Nop{}, SyncConfig{FeedURL: "https://x/rss", HasServiceAccess: true})

	p := s.Probe()
	assert.Equal(t, "Municipality sync endpoint", p.Message)
	assert.True(t, p.Config.HasFeedURL)
	assert.True(t, p.Config.HasServiceRoleKey)
	assert.False(t, p.Config.HasOwnerID)
	assert.False(t, p.Config.HasSecret)
}

func TestSyncer_CheckConfig(t *testing.T) {
	tests := []struct {
		name   string
		config SyncConfig
		ok     bool
	}{
		{"complete", SyncConfig{FeedURL: "u", OwnerID: "o", HasServiceAccess: true}, true},
		{"no service access", SyncConfig{FeedURL: "u", OwnerID: "o"}, false},
		{"no owner", SyncConfig{FeedURL: "u", HasServiceAccess: true}, false},
		{"no feed", SyncConfig{OwnerID: "o", HasServiceAccess: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSyncer(zaptest.NewLogger(t), nil, events.Nop{}, tt.config).CheckConfig()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, municipality.ErrNotConfigured))
			}
		})
	}
}

func TestSyncer_RunPublishes(t *testing.T) {
	srv := feedServer(t, sampleRSS, http.StatusOK)
	im := newTestImporter(t, &fakeStore{}, srv)
	rec := &events.Recorder{}

	s := NewSyncer(zaptest.NewLogger(t), im, rec, SyncConfig{
		FeedURL:          srv.URL + "/rss",
		OwnerID:          "owner",
		Secret:           "x",
		HasServiceAccess: true,
	})

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Added)
	assert.Equal(t, []string{events.SubjectMunicipalitySynced}, rec.Subjects())

	ev, ok := rec.Events[0].Payload.(SyncedEvent)
	require.True(t, ok)
	assert.Equal(t, 3, ev.Total)
}

func TestSyncer_Schedule(t *testing.T) {
	srv := feedServer(t, sampleRSS, http.StatusOK)
	store := &fakeStore{}
	im := newTestImporter(t, store, srv)

	s := NewSyncer(zaptest.NewLogger(t), im, events.Nop{}, SyncConfig{
		FeedURL:          srv.URL + "/rss",
		OwnerID:          "owner",
		HasServiceAccess: true,
		Interval:         10 * time.Millisecond,
	})

	require.NoError(t, s.Start(context.Background()))
	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.records) == 3
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}

func TestSyncer_StartWithoutInterval(t *testing.T) {
	s := NewSyncer(zaptest.NewLogger(t), nil, events.Nop{}, SyncConfig{})
	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}
