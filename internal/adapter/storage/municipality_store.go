// internal/adapter/storage/municipality_store.go

package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/stelios-avg/locom/internal/domain/municipality"
	"github.com/stelios-avg/locom/internal/domain/post"
)

// MunicipalityStore persists imported announcements as feed posts
type MunicipalityStore struct {
	db *pgxpool.Pool
}

// NewMunicipalityStore creates a new municipality store
func NewMunicipalityStore(db *pgxpool.Pool) *MunicipalityStore {
	return &MunicipalityStore{
		db: db,
	}
}

// Exists reports whether a municipality post contains fingerprint, ignoring case
func (s *MunicipalityStore) Exists(ctx context.Context, fingerprint string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM posts
			WHERE category = $1
			AND strpos(lower(content), lower($2)) > 0
		)
	`

	var exists bool
	if err := s.db.QueryRow(ctx, query, municipality.Category, fingerprint).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking municipality post: %w", err)
	}
	return exists, nil
}

// Insert writes an imported announcement
func (s *MunicipalityStore) Insert(ctx context.Context, record municipality.Record) error {
	query := `
		INSERT INTO posts (
			id, user_id, content, image_url, post_type, category,
			latitude, longitude, location_name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`

	var imageURL *string
	if record.ImageURL != "" {
		imageURL = &record.ImageURL
	}

	var lat, lng *float64
	if record.Location != nil {
		lat = &record.Location.Latitude
		lng = &record.Location.Longitude
	}

	_, err := s.db.Exec(
		ctx,
		query,
		uuid.New().String(),
		record.OwnerID,
		record.Content,
		imageURL,
		string(post.TypeFeed),
		municipality.Category,
		lat,
		lng,
		record.LocationName,
		record.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("error inserting municipality post: %w", err)
	}

	return nil
}
