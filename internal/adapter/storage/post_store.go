// internal/adapter/storage/post_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/stelios-avg/locom/internal/domain/post"
)

const postColumns = `
	p.id::text, p.user_id, p.content, p.image_url, p.post_type, p.category,
	p.latitude, p.longitude, p.location_name, p.price, p.event_date, p.event_location,
	p.status, p.moderation_notes, p.moderated_by, p.moderated_at,
	p.created_at, p.updated_at,
	(SELECT count(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
`

// PostStore implements storage for posts
type PostStore struct {
	db *pgxpool.Pool
}

// NewPostStore creates a new post store
func NewPostStore(db *pgxpool.Pool) *PostStore {
	return &PostStore{
		db: db,
	}
}

// SavePost inserts a post or replaces the stored one with the same ID
func (s *PostStore) SavePost(ctx context.Context, p post.Post) error {
	query := `
		INSERT INTO posts (
			id, user_id, content, image_url, post_type, category,
			latitude, longitude, location_name, price, event_date, event_location,
			status, moderation_notes, moderated_by, moderated_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18
		)
		ON CONFLICT (id) DO UPDATE
		SET
			content = $3,
			image_url = $4,
			post_type = $5,
			category = $6,
			latitude = $7,
			longitude = $8,
			location_name = $9,
			price = $10,
			event_date = $11,
			event_location = $12,
			status = $13,
			moderation_notes = $14,
			moderated_by = $15,
			moderated_at = $16,
			updated_at = $18
	`

	var status *string
	if p.Status != nil {
		v := string(*p.Status)
		status = &v
	}

	price := decimal.NullDecimal{}
	if p.Price != nil {
		price = decimal.NullDecimal{Decimal: *p.Price, Valid: true}
	}

	_, err := s.db.Exec(
		ctx,
		query,
		p.ID,
		p.UserID,
		p.Content,
		p.ImageURL,
		string(p.Type),
		p.Category,
		p.Latitude,
		p.Longitude,
		p.LocationName,
		price,
		p.EventDate,
		p.EventLocation,
		status,
		p.ModerationNotes,
		p.ModeratedBy,
		p.ModeratedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetPost retrieves a post by ID
func (s *PostStore) GetPost(ctx context.Context, id string) (*post.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, post.ErrNotFound
	}

	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	p, err := scanPost(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, post.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying post: %w", err)
	}

	return p, nil
}

// FindPosts finds posts matching the filter
func (s *PostStore) FindPosts(ctx context.Context, filter post.Filter) ([]post.Post, error) {
	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`SELECT ` + postColumns + ` FROM posts p WHERE 1=1`)

	args := []interface{}{}
	argIndex := 1

	if filter.Type != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.post_type = $%d", argIndex))
		args = append(args, string(filter.Type))
		argIndex++
	}

	if filter.Category != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.category = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}

	// Approved or unmoderated posts, plus the viewer's own
	if !filter.AllStatuses {
		queryBuilder.WriteString(fmt.Sprintf(
			" AND (p.status IS NULL OR p.status = 'approved' OR p.user_id = $%d)",
			argIndex,
		))
		args = append(args, filter.ViewerID)
		argIndex++
	}

	if filter.ByEventDate {
		queryBuilder.WriteString(" ORDER BY p.event_date ASC NULLS LAST, p.created_at DESC")
	} else {
		queryBuilder.WriteString(" ORDER BY p.created_at DESC")
	}

	if filter.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argIndex))
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := []post.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// DeletePost removes a post. Comments go with it through the foreign key.
func (s *PostStore) DeletePost(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return post.ErrNotFound
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return post.ErrNotFound
	}

	return nil
}

func scanPost(row pgx.Row) (*post.Post, error) {
	var p post.Post
	var postType string
	var status *string
	var price decimal.NullDecimal

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Content,
		&p.ImageURL,
		&postType,
		&p.Category,
		&p.Latitude,
		&p.Longitude,
		&p.LocationName,
		&price,
		&p.EventDate,
		&p.EventLocation,
		&status,
		&p.ModerationNotes,
		&p.ModeratedBy,
		&p.ModeratedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CommentCount,
	)
	if err != nil {
		return nil, err
	}

	p.Type = post.Type(postType)
	if status != nil {
		st := post.Status(*status)
		p.Status = &st
	}
	if price.Valid {
		v := price.Decimal
		p.Price = &v
	}

	return &p, nil
}
