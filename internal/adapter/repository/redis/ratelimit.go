package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitStore counts requests per key in fixed windows so that limits
// hold across several server instances.
type RateLimitStore struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRateLimitStore allows limit requests per key in every window.
func NewRateLimitStore(client *redis.Client, limit int, window time.Duration) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: "ratelimit:",
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow records one hit for key and reports whether it is within the limit.
func (s *RateLimitStore) Allow(ctx context.Context, key string) (bool, error) {
	bucket := s.now().UnixNano() / int64(s.window)
	fullKey := fmt.Sprintf("%s%s:%d", s.prefix, key, bucket)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis rate limit: %w", err)
	}

	return incr.Val() <= s.limit, nil
}
