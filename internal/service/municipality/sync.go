// internal/service/municipality/sync.go

package municipality

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/adapter/events"
	"github.com/stelios-avg/locom/internal/domain/municipality"
)

// SyncConfig contains configuration for the sync trigger
type SyncConfig struct {
	FeedURL          string
	OwnerID          string
	Secret           string
	Location         *municipality.Location
	HasServiceAccess bool
	Interval         time.Duration
}

// Probe reports which settings are present, without running a sync
type Probe struct {
	Message string      `json:"message"`
	Usage   string      `json:"usage"`
	Config  ProbeConfig `json:"config"`
}

// ProbeConfig lists configuration presence flags
type ProbeConfig struct {
	HasFeedURL        bool `json:"hasFeedUrl"`
	HasServiceRoleKey bool `json:"hasServiceRoleKey"`
	HasOwnerID        bool `json:"hasOwnerId"`
	HasSecret         bool `json:"hasSecret"`
}

// SyncedEvent is published after every successful run
type SyncedEvent struct {
	FeedURL string    `json:"feed_url"`
	Added   int       `json:"added"`
	Skipped int       `json:"skipped"`
	Failed  int       `json:"failed"`
	Total   int       `json:"total"`
	At      time.Time `json:"at"`
}

// Syncer runs the configured feed through the importer, on demand or on a schedule
type Syncer struct {
	importer municipality.Importer
	events   events.Publisher
	config   SyncConfig
	log      *zap.Logger
	runMu    sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewSyncer creates a new syncer
func NewSyncer(log *zap.Logger, importer municipality.Importer, publisher events.Publisher, config SyncConfig) *Syncer {
	return &Syncer{
		importer: importer,
		events:   publisher,
		config:   config,
		log:      log,
	}
}

// Authorize compares the Authorization header against "Bearer <secret>" by
// exact string equality. An unset secret rejects every request.
func (s *Syncer) Authorize(header string) error {
	if s.config.Secret == "" || header != "Bearer "+s.config.Secret {
		return municipality.ErrUnauthorized
	}
	return nil
}

// Probe returns the capability report served on GET
func (s *Syncer) Probe() Probe {
	return Probe{
		Message: "Municipality sync endpoint",
		Usage:   "POST with Authorization: Bearer <secret>",
		Config: ProbeConfig{
			HasFeedURL:        s.config.FeedURL != "",
			HasServiceRoleKey: s.config.HasServiceAccess,
			HasOwnerID:        s.config.OwnerID != "",
			HasSecret:         s.config.Secret != "",
		},
	}
}

// CheckConfig returns ErrNotConfigured naming the first missing setting
func (s *Syncer) CheckConfig() error {
	switch {
	case !s.config.HasServiceAccess:
		return fmt.Errorf("service role key %w", municipality.ErrNotConfigured)
	case s.config.OwnerID == "":
		return fmt.Errorf("municipality user ID %w", municipality.ErrNotConfigured)
	case s.config.FeedURL == "":
		return fmt.Errorf("municipality feed URL %w", municipality.ErrNotConfigured)
	}
	return nil
}

// Run ingests the configured feed once. Concurrent runs are serialized so
// their added and skipped counts stay consistent.
func (s *Syncer) Run(ctx context.Context) (*municipality.SyncResult, error) {
	if err := s.CheckConfig(); err != nil {
		return nil, err
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	result, err := s.importer.Ingest(ctx, s.config.FeedURL, s.config.OwnerID, s.config.Location)
	if err != nil {
		return nil, err
	}

	event := SyncedEvent{
		FeedURL: s.config.FeedURL,
		Added:   result.Added,
		Skipped: result.Skipped,
		Failed:  result.Failed(),
		Total:   result.Total,
		At:      time.Now(),
	}
	if err := s.events.Publish(events.SubjectMunicipalitySynced, event); err != nil {
		s.log.Warn("Failed to publish sync event", zap.Error(err))
	}

	return result, nil
}

// Start runs the sync on config.Interval until Stop is called. A zero
// interval leaves scheduling to an external caller.
func (s *Syncer) Start(ctx context.Context) error {
	if s.config.Interval <= 0 {
		return nil
	}
	if err := s.CheckConfig(); err != nil {
		return fmt.Errorf("scheduled sync: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.log.Info("Scheduled municipality sync started", zap.Duration("interval", s.config.Interval))
	return nil
}

func (s *Syncer) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				// The next tick is the retry
				s.log.Error("Scheduled municipality sync failed", zap.Error(err))
			}
		}
	}
}

// Stop cancels the schedule and waits for an in-flight run, bounded by ctx
func (s *Syncer) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
