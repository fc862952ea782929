package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed window counter shared by every instance
//
// Key format: ratelimit:<client>:<window number>
// INCR and EXPIRE run in one MULTI/EXEC so a counter never outlives two windows
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter pings client and returns a limiter using it
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) (*RedisLimiter, error) {
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}
	if window < time.Second {
		window = time.Second
	}

	return &RedisLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}, nil
}

func (l *RedisLimiter) key(client string) string {
	windowSeconds := int64(l.window / time.Second)
	return fmt.Sprintf("ratelimit:%s:%d", client, l.now().Unix()/windowSeconds)
}

// Allow increments the client's counter for the current window
// Fails open when Redis is unreachable so lookups keep working
func (l *RedisLimiter) Allow(client string) bool {
	ctx := context.Background()
	key := l.key(client)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, 2*l.window)
		return nil
	})
	if err != nil {
		return true
	}

	return incr.Val() <= l.limit
}

// Close closes the Redis connection
func (l *RedisLimiter) Close() error {
	if l.client != nil {
		return l.client.Close()
	}
	return nil
}
