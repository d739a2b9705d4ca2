package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore is a fixed-window request counter shared by every API
// instance. It satisfies echo's middleware.RateLimiterStore.
//
// Key format: ratelimit:<scope>:<identifier>:<window index>
type RateLimitStore struct {
	client  redis.Cmdable
	scope   string
	limit   int64
	window  time.Duration
	timeout time.Duration
	now     func() time.Time
}

// NewRateLimitStore allows limit requests per identifier in each window.
// scope separates counters of different limiter groups.
func NewRateLimitStore(client redis.Cmdable, scope string, limit int, window time.Duration) *RateLimitStore {
	return &RateLimitStore{
		client:  client,
		scope:   scope,
		limit:   int64(limit),
		window:  window,
		timeout: defaultTimeout,
		now:     time.Now,
	}
}

// Allow counts one request for identifier and reports whether it is within
// the limit for the current window.
func (s *RateLimitStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := s.key(identifier, s.now())

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}

	return incr.Val() <= s.limit, nil
}

func (s *RateLimitStore) key(identifier string, at time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", s.scope, identifier, at.UnixNano()/int64(s.window))
}
