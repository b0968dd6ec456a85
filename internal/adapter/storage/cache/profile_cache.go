// internal/adapter/storage/cache/profile_cache.go

package cache

import (
	"context"
	"time"

	"github.com/ReneKroon/ttlcache"

	"github.com/stelios-avg/locom/internal/domain/profile"
)

// ProfileStore is the store the cache reads through to
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*profile.Profile, error)
	SaveProfile(ctx context.Context, p profile.Profile) error
	ListNeighborhoods(ctx context.Context) ([]profile.Neighborhood, error)
}

// ProfileCache caches profile reads for a fixed TTL. Saves evict the entry.
type ProfileCache struct {
	db    ProfileStore
	cache *ttlcache.Cache
}

// NewProfileCache wraps db with a read-through cache
func NewProfileCache(db ProfileStore, ttl time.Duration) *ProfileCache {
	cache := ttlcache.NewCache()
	cache.SetTTL(ttl)
	return &ProfileCache{
		db:    db,
		cache: cache,
	}
}

// GetProfile returns a copy of the cached profile, loading it on a miss
func (c *ProfileCache) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	cached, ok := c.cache.Get(userID)

	if !ok {
		p, err := c.db.GetProfile(ctx, userID)
		if err != nil {
			return nil, err
		}

		copied := *p
		c.cache.Set(userID, &copied)

		return p, nil
	}

	copied := *cached.(*profile.Profile)
	return &copied, nil
}

// SaveProfile writes through and evicts the cached entry
func (c *ProfileCache) SaveProfile(ctx context.Context, p profile.Profile) error {
	c.cache.Remove(p.UserID)
	return c.db.SaveProfile(ctx, p)
}

// ListNeighborhoods is not cached
func (c *ProfileCache) ListNeighborhoods(ctx context.Context) ([]profile.Neighborhood, error) {
	return c.db.ListNeighborhoods(ctx)
}

// Close stops the expiry goroutine
func (c *ProfileCache) Close() {
	c.cache.Close()
}
