// internal/adapter/ratelimit/limiter.go

package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Rule defines a rate limiting policy: the key prefix, the maximum number of
// requests allowed in the window and the window duration.
type Rule struct {
	Key    string
	Limit  int
	Window time.Duration
}

// Limiter throttles per identifier with a Redis fixed window (INCR + EXPIRE)
type Limiter struct {
	client *redis.Client
	log    *zap.Logger
}

// NewLimiter creates a Limiter backed by the given Redis client
func NewLimiter(log *zap.Logger, client *redis.Client) *Limiter {
	return &Limiter{client: client, log: log}
}

// Allow increments the identifier's counter for rule and reports whether it
// is still within the limit. Redis errors fail open so an outage does not
// block posting.
func (l *Limiter) Allow(ctx context.Context, identifier string, rule Rule) (bool, error) {
	if rule.Limit <= 0 {
		return true, nil
	}

	key := rule.Key + identifier

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.log.Warn("Rate limit INCR failed, allowing", zap.String("key", key), zap.Error(err))
		return true, err
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, rule.Window).Err(); err != nil {
			l.log.Warn("Rate limit EXPIRE failed, allowing", zap.String("key", key), zap.Error(err))
			// A key without TTL would block the identifier forever
			l.client.Del(ctx, key)
			return true, err
		}
	}

	return int(count) <= rule.Limit, nil
}

// Unlimited allows everything. It stands in when Redis is not configured.
type Unlimited struct{}

// Allow implements the limiter contract
func (Unlimited) Allow(context.Context, string, Rule) (bool, error) { return true, nil }
