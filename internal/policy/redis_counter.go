package policy

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter is a fixed-window rate counter shared across every Overseer
// process behind the same gateway, used in place of MemoryCounter once a
// cluster spans more than one instance.
type RedisCounter struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisCounter wraps an existing Redis client. ctx is used for every
// call Incr issues; callers that need per-call cancellation should prefer
// MemoryCounter or add one when a context-aware Counter interface is
// needed.
func NewRedisCounter(ctx context.Context, client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, ctx: ctx}
}

// Incr implements Counter using INCR + a one-shot EXPIRE on the first hit
// in a window, the standard Redis fixed-window pattern.
func (c *RedisCounter) Incr(key string, window time.Duration, limit int) (int, bool) {
	return c.IncrBy(key, window, 1, limit)
}

// IncrBy implements Counter using INCRBY + a one-shot EXPIRE on the first
// hit in a window.
func (c *RedisCounter) IncrBy(key string, window time.Duration, amount, limit int) (int, bool) {
	count, err := c.client.IncrBy(c.ctx, key, int64(amount)).Result()
	if err != nil {
		// Fail open: a Redis outage must not take down the gateway's
		// write path. Callers that need fail-closed behavior should wrap
		// this counter accordingly.
		return 0, true
	}
	if count == int64(amount) {
		c.client.Expire(c.ctx, key, window)
	}
	return int(count), int(count) <= limit
}
