// internal/adapter/storage/profile_store.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/stelios-avg/locom/internal/domain/profile"
)

// ProfileStore implements storage for profiles and neighborhoods
type ProfileStore struct {
	db *pgxpool.Pool
}

// NewProfileStore creates a new profile store
func NewProfileStore(db *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{
		db: db,
	}
}

// SaveProfile inserts or replaces a profile
func (s *ProfileStore) SaveProfile(ctx context.Context, p profile.Profile) error {
	query := `
		INSERT INTO profiles (
			user_id, name, bio, avatar_url, neighborhood,
			latitude, longitude, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE
		SET
			name = $2,
			bio = $3,
			avatar_url = $4,
			neighborhood = $5,
			latitude = $6,
			longitude = $7,
			updated_at = $9
	`

	_, err := s.db.Exec(
		ctx,
		query,
		p.UserID,
		p.Name,
		p.Bio,
		p.AvatarURL,
		p.Neighborhood,
		p.Latitude,
		p.Longitude,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetProfile retrieves a profile by user ID
func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	query := `
		SELECT user_id, name, bio, avatar_url, neighborhood,
			latitude, longitude, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var p profile.Profile
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Name,
		&p.Bio,
		&p.AvatarURL,
		&p.Neighborhood,
		&p.Latitude,
		&p.Longitude,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying profile: %w", err)
	}

	return &p, nil
}

// ListNeighborhoods returns all neighborhoods ordered by city and name
func (s *ProfileStore) ListNeighborhoods(ctx context.Context) ([]profile.Neighborhood, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id::text, name, city, latitude, longitude
		FROM neighborhoods
		ORDER BY city, name
	`)
	if err != nil {
		return nil, fmt.Errorf("error querying neighborhoods: %w", err)
	}
	defer rows.Close()

	neighborhoods := []profile.Neighborhood{}
	for rows.Next() {
		var n profile.Neighborhood
		if err := rows.Scan(&n.ID, &n.Name, &n.City, &n.Latitude, &n.Longitude); err != nil {
			return nil, fmt.Errorf("error scanning neighborhood: %w", err)
		}
		neighborhoods = append(neighborhoods, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating neighborhoods: %w", err)
	}

	return neighborhoods, nil
}
