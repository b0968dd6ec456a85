// internal/domain/profile/model.go

package profile

import (
	"context"
	"errors"
	"time"

	"github.com/stelios-avg/locom/internal/domain/geo"
)

// ErrNotFound is returned when a user has no profile
var ErrNotFound = errors.New("profile not found")

// Profile holds a user's public details and home location
type Profile struct {
	UserID       string    `json:"user_id"`
	Name         *string   `json:"name"`
	Bio          *string   `json:"bio"`
	AvatarURL    *string   `json:"avatar_url"`
	Neighborhood *string   `json:"neighborhood"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Coordinate implements geo.Located
func (p Profile) Coordinate() *geo.Coordinate {
	if p.Latitude == nil || p.Longitude == nil {
		return nil
	}
	return &geo.Coordinate{Latitude: *p.Latitude, Longitude: *p.Longitude}
}

// Update is a partial profile edit. Nil fields are left unchanged.
type Update struct {
	Name         *string  `json:"name"`
	Bio          *string  `json:"bio"`
	AvatarURL    *string  `json:"avatar_url"`
	Neighborhood *string  `json:"neighborhood"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// Apply copies the set fields of u onto p
func (u Update) Apply(p *Profile) {
	if u.Name != nil {
		p.Name = u.Name
	}
	if u.Bio != nil {
		p.Bio = u.Bio
	}
	if u.AvatarURL != nil {
		p.AvatarURL = u.AvatarURL
	}
	if u.Neighborhood != nil {
		p.Neighborhood = u.Neighborhood
	}
	if u.Latitude != nil {
		p.Latitude = u.Latitude
	}
	if u.Longitude != nil {
		p.Longitude = u.Longitude
	}
}

// Neighborhood is a named area users can pick as home
type Neighborhood struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Service defines profile operations
type Service interface {
	// GetProfile returns a user's profile
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	// UpdateProfile edits the caller's own profile
	UpdateProfile(ctx context.Context, userID string, update Update) (*Profile, error)

	// Location returns the stored home coordinate, or nil
	Location(ctx context.Context, userID string) (*geo.Coordinate, error)

	// ListNeighborhoods returns the known neighborhoods
	ListNeighborhoods(ctx context.Context) ([]Neighborhood, error)
}
