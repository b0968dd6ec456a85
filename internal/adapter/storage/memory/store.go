// internal/adapter/storage/memory/store.go

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/stelios-avg/locom/internal/domain/municipality"
	"github.com/stelios-avg/locom/internal/domain/post"
	"github.com/stelios-avg/locom/internal/domain/profile"
)

// Store keeps posts, comments and profiles in memory. It satisfies the same
// ports as the Postgres stores and backs the API when no database is configured.
type Store struct {
	mu            sync.RWMutex
	posts         map[string]post.Post
	comments      map[string][]post.Comment
	profiles      map[string]profile.Profile
	neighborhoods []profile.Neighborhood
}

// NewStore creates an empty store seeded with the given neighborhoods
func NewStore(neighborhoods ...profile.Neighborhood) *Store {
	return &Store{
		posts:         make(map[string]post.Post),
		comments:      make(map[string][]post.Comment),
		profiles:      make(map[string]profile.Profile),
		neighborhoods: neighborhoods,
	}
}

// SavePost inserts or replaces a post
func (s *Store) SavePost(_ context.Context, p post.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.CommentCount = 0
	s.posts[p.ID] = p
	return nil
}

// GetPost retrieves a post by ID
func (s *Store) GetPost(_ context.Context, id string) (*post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, post.ErrNotFound
	}
	p.CommentCount = len(s.comments[id])
	return &p, nil
}

// FindPosts finds posts matching the filter
func (s *Store) FindPosts(_ context.Context, filter post.Filter) ([]post.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := []post.Post{}
	for _, p := range s.posts {
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.Category != "" && (p.Category == nil || *p.Category != filter.Category) {
			continue
		}
		if !filter.AllStatuses && !p.VisibleTo(filter.ViewerID) {
			continue
		}
		p.CommentCount = len(s.comments[p.ID])
		posts = append(posts, p)
	}

	if filter.ByEventDate {
		sort.SliceStable(posts, func(i, j int) bool {
			a, b := posts[i].EventDate, posts[j].EventDate
			switch {
			case a != nil && b != nil && !a.Equal(*b):
				return a.Before(*b)
			case a != nil && b == nil:
				return true
			case a == nil && b != nil:
				return false
			}
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	} else {
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		})
	}

	if filter.Limit > 0 && len(posts) > filter.Limit {
		posts = posts[:filter.Limit]
	}

	return posts, nil
}

// DeletePost removes a post and its comments
func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return post.ErrNotFound
	}
	delete(s.posts, id)
	delete(s.comments, id)
	return nil
}

// SaveComment stores a comment
func (s *Store) SaveComment(_ context.Context, c post.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[c.PostID]; !ok {
		return post.ErrNotFound
	}
	s.comments[c.PostID] = append(s.comments[c.PostID], c)
	return nil
}

// FindComments returns a post's comments oldest first
func (s *Store) FindComments(_ context.Context, postID string) ([]post.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := append([]post.Comment{}, s.comments[postID]...)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// CountComments returns the number of comments on a post
func (s *Store) CountComments(_ context.Context, postID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.comments[postID]), nil
}

// SaveProfile inserts or replaces a profile
func (s *Store) SaveProfile(_ context.Context, p profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[p.UserID] = p
	return nil
}

// GetProfile retrieves a profile by user ID
func (s *Store) GetProfile(_ context.Context, userID string) (*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return &p, nil
}

// ListNeighborhoods returns the seeded neighborhoods
func (s *Store) ListNeighborhoods(_ context.Context) ([]profile.Neighborhood, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]profile.Neighborhood{}, s.neighborhoods...), nil
}

// Exists reports whether a municipality post contains fingerprint, ignoring case
func (s *Store) Exists(_ context.Context, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(fingerprint)
	for _, p := range s.posts {
		if p.Category == nil || *p.Category != municipality.Category {
			continue
		}
		if strings.Contains(strings.ToLower(p.Content), needle) {
			return true, nil
		}
	}
	return false, nil
}

// Insert writes an imported announcement as an unmoderated feed post
func (s *Store) Insert(_ context.Context, record municipality.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := municipality.Category
	locationName := record.LocationName
	p := post.Post{
		ID:           uuid.New().String(),
		UserID:       record.OwnerID,
		Content:      record.Content,
		Type:         post.TypeFeed,
		Category:     &category,
		LocationName: &locationName,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.CreatedAt,
	}
	if record.ImageURL != "" {
		image := record.ImageURL
		p.ImageURL = &image
	}
	p.SetCoordinate(record.Location)

	s.posts[p.ID] = p
	return nil
}
