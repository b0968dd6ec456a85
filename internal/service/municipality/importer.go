// internal/service/municipality/importer.go

package municipality

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/domain/municipality"
	"github.com/stelios-avg/locom/internal/metrics"
)

// FingerprintLength is the number of leading content runes used for de-duplication
const FingerprintLength = 100

// Store is the persistence port the importer depends on
type Store interface {
	// Exists reports whether any municipality post contains fingerprint,
	// compared case-insensitively
	Exists(ctx context.Context, fingerprint string) (bool, error)

	// Insert writes a new municipality post
	Insert(ctx context.Context, record municipality.Record) error
}

// Importer implements the municipality.Importer interface
type Importer struct {
	store   Store
	fetcher *Fetcher
	log     *zap.Logger
	now     func() time.Time
}

// NewImporter creates a new feed importer
func NewImporter(log *zap.Logger, store Store, fetcher *Fetcher) *Importer {
	return &Importer{
		store:   store,
		fetcher: fetcher,
		log:     log,
		now:     time.Now,
	}
}

// ParseFeed fetches url and parses it with the strategy DetectSource picks.
// Fetch and document-level parse errors fail the call.
func (im *Importer) ParseFeed(ctx context.Context, url string) ([]municipality.ImportedPost, error) {
	source := DetectSource(url)

	body, err := im.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	posts, err := source.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%s source %s: %w", source.Kind(), url, err)
	}

	im.log.Debug("Parsed municipality feed",
		zap.String("url", url),
		zap.String("source", string(source.Kind())),
		zap.Int("items", len(posts)),
	)
	return posts, nil
}

// Exists reports whether an announcement was already imported. Only the first
// FingerprintLength runes of content are compared, as a substring, so small
// formatting drift further down the body is tolerated. link is accepted for
// callers that have one but does not change the check.
func (im *Importer) Exists(ctx context.Context, content, link string) (bool, error) {
	return im.store.Exists(ctx, Fingerprint(content))
}

// Ingest imports every parsed item that does not already exist. Items are
// processed one at a time so an announcement repeated within the same feed is
// caught by the existence check. A failed write is logged and reported as a
// failed outcome; it counts as neither added nor skipped.
func (im *Importer) Ingest(ctx context.Context, feedURL, ownerID string, location *municipality.Location) (*municipality.SyncResult, error) {
	posts, err := im.ParseFeed(ctx, feedURL)
	if err != nil {
		metrics.SyncRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	result := &municipality.SyncResult{
		Total: len(posts),
		Items: make([]municipality.ItemResult, 0, len(posts)),
	}

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			metrics.SyncRuns.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("ingest interrupted: %w", err)
		}

		item := im.ingestOne(ctx, post, ownerID, location)
		switch item.Outcome {
		case municipality.OutcomeAdded:
			result.Added++
		case municipality.OutcomeSkipped:
			result.Skipped++
		}
		metrics.SyncPosts.WithLabelValues(string(item.Outcome)).Inc()
		result.Items = append(result.Items, item)
	}

	metrics.SyncRuns.WithLabelValues("ok").Inc()
	im.log.Info("Municipality sync completed",
		zap.String("url", feedURL),
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed()),
		zap.Int("total", result.Total),
	)

	return result, nil
}

func (im *Importer) ingestOne(ctx context.Context, post municipality.ImportedPost, ownerID string, location *municipality.Location) municipality.ItemResult {
	item := municipality.ItemResult{Item: post}

	exists, err := im.Exists(ctx, post.Content, post.Link)
	if err != nil {
		im.log.Warn("Failed to check municipality post",
			zap.String("title", post.Title),
			zap.String("link", post.Link),
			zap.Error(err),
		)
		item.Outcome = municipality.OutcomeFailed
		item.Error = err.Error()
		return item
	}

	if exists {
		item.Outcome = municipality.OutcomeSkipped
		return item
	}

	record := municipality.NewRecord(post, ownerID, location, im.now())
	if err := im.store.Insert(ctx, record); err != nil {
		im.log.Warn("Failed to create municipality post",
			zap.String("title", post.Title),
			zap.String("link", post.Link),
			zap.Error(err),
		)
		item.Outcome = municipality.OutcomeFailed
		item.Error = err.Error()
		return item
	}

	item.Outcome = municipality.OutcomeAdded
	return item
}

// Fingerprint returns the first FingerprintLength runes of content
func Fingerprint(content string) string {
	return truncateRunes(content, FingerprintLength)
}
