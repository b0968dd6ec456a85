// internal/adapter/storage/comment_store.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/stelios-avg/locom/internal/domain/post"
)

// CommentStore implements storage for comments
type CommentStore struct {
	db *pgxpool.Pool
}

// NewCommentStore creates a new comment store
func NewCommentStore(db *pgxpool.Pool) *CommentStore {
	return &CommentStore{
		db: db,
	}
}

// SaveComment stores a comment
func (s *CommentStore) SaveComment(ctx context.Context, c post.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.Exec(ctx, query, c.ID, c.PostID, c.UserID, c.Content, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// FindComments returns a post's comments oldest first
func (s *CommentStore) FindComments(ctx context.Context, postID string) ([]post.Comment, error) {
	query := `
		SELECT id::text, post_id::text, user_id, content, created_at, updated_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("error querying comments: %w", err)
	}
	defer rows.Close()

	comments := []post.Comment{}
	for rows.Next() {
		var c post.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// CountComments returns the number of comments on a post
func (s *CommentStore) CountComments(ctx context.Context, postID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM comments WHERE post_id = $1`, postID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting comments: %w", err)
	}
	return count, nil
}
