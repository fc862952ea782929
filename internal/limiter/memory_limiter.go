package limiter

import (
	"sync"
	"time"
)

const (
	idleBucketTTL   = 5 * time.Minute
	cleanupInterval = 5 * time.Minute
)

// bucket is a token bucket for a single client
// Capacity tokens at most, refilled continuously at rate tokens per second
type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// MemoryLimiter keeps one token bucket per client in process memory
// Suitable for a single instance; use RedisLimiter when running several
type MemoryLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	capacity    float64
	rate        float64 // tokens per second
	lastCleanup time.Time
	now         func() time.Time
}

// NewMemoryLimiter allows limit requests per window per client, with bursts up to limit
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		buckets:     make(map[string]*bucket),
		capacity:    float64(limit),
		rate:        float64(limit) / window.Seconds(),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow consumes one token from the client's bucket if available
func (l *MemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybeCleanup(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(b.tokens+elapsed*l.rate, l.capacity)
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// maybeCleanup drops buckets idle for longer than idleBucketTTL
// Must be called with mu held
func (l *MemoryLimiter) maybeCleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < cleanupInterval {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastRefill) > idleBucketTTL {
			delete(l.buckets, key)
		}
	}
	l.lastCleanup = now
}

// Len returns the number of tracked clients
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Close is a no-op for the in-memory limiter
func (l *MemoryLimiter) Close() error {
	return nil
}
