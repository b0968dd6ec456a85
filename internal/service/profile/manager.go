// internal/service/profile/manager.go

package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stelios-avg/locom/internal/domain/geo"
	"github.com/stelios-avg/locom/internal/domain/moderation"
	"github.com/stelios-avg/locom/internal/domain/post"
	"github.com/stelios-avg/locom/internal/domain/profile"
)

// ProfileStore defines the storage interface for profiles
type ProfileStore interface {
	// GetProfile retrieves a profile by user ID
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)

	// SaveProfile inserts or replaces a profile
	SaveProfile(ctx context.Context, p profile.Profile) error

	// ListNeighborhoods returns the known neighborhoods
	ListNeighborhoods(ctx context.Context) ([]profile.Neighborhood, error)
}

// ProfileManager implements the profile.Service interface
type ProfileManager struct {
	log     *zap.Logger
	store   ProfileStore
	checker moderation.Checker
}

// NewProfileManager creates a new profile manager
func NewProfileManager(log *zap.Logger, store ProfileStore, checker moderation.Checker) *ProfileManager {
	return &ProfileManager{
		log:     log,
		store:   store,
		checker: checker,
	}
}

// GetProfile returns a user's profile
func (pm *ProfileManager) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	return pm.store.GetProfile(ctx, userID)
}

// UpdateProfile applies a partial edit, creating the profile on first use.
// Name and bio go through the text filter.
func (pm *ProfileManager) UpdateProfile(ctx context.Context, userID string, update profile.Update) (*profile.Profile, error) {
	var reasons []string
	for _, field := range []*string{update.Name, update.Bio} {
		if field == nil {
			continue
		}
		if verdict := pm.checker.CheckText(*field); !verdict.IsAppropriate {
			reasons = append(reasons, verdict.Reason)
		}
	}
	if len(reasons) > 0 {
		return nil, &post.RejectedError{Errors: reasons}
	}

	if (update.Latitude == nil) != (update.Longitude == nil) {
		return nil, fmt.Errorf("latitude and longitude must be set together: %w", post.ErrInvalid)
	}
	if update.Latitude != nil {
		c := geo.Coordinate{Latitude: *update.Latitude, Longitude: *update.Longitude}
		if !c.Valid() {
			return nil, fmt.Errorf("coordinate out of range: %w", post.ErrInvalid)
		}
	}

	now := time.Now()
	p, err := pm.store.GetProfile(ctx, userID)
	if errors.Is(err, profile.ErrNotFound) {
		p = &profile.Profile{UserID: userID, CreatedAt: now}
	} else if err != nil {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}

	update.Name = trimmed(update.Name)
	update.Bio = trimmed(update.Bio)
	update.Apply(p)
	p.UpdatedAt = now

	if err := pm.store.SaveProfile(ctx, *p); err != nil {
		return nil, fmt.Errorf("error saving profile: %w", err)
	}

	pm.log.Debug("Profile updated", zap.String("user_id", userID))

	return p, nil
}

// Location returns the stored home coordinate, or nil when the user has none
func (pm *ProfileManager) Location(ctx context.Context, userID string) (*geo.Coordinate, error) {
	p, err := pm.store.GetProfile(ctx, userID)
	if errors.Is(err, profile.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.Coordinate(), nil
}

// ListNeighborhoods returns the known neighborhoods
func (pm *ProfileManager) ListNeighborhoods(ctx context.Context) ([]profile.Neighborhood, error) {
	return pm.store.ListNeighborhoods(ctx)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
