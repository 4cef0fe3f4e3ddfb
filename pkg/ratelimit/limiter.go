package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/scribeworks/compliance/pkg/common/logger"
)

// Limiter is the contract the HTTP middleware consumes. Implementations
// decide per client whether a request may proceed.
type Limiter interface {
	Allow(ctx context.Context, clientID string) bool
}

// TokenBucket is a thread-safe token bucket: capacity tokens at burst,
// refilled at refillRate tokens per second.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64
	lastRefill time.Time
}

func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Consume attempts to take n tokens, reporting whether it succeeded.
func (b *TokenBucket) Consume(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if b.tokens >= float64(n) {
		b.tokens -= float64(n)
		return true
	}
	return false
}

func (b *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
}

func (b *TokenBucket) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastRefill
}

// Tier describes a bucket shape: burst capacity plus steady refill rate.
type Tier struct {
	Capacity   int
	RefillRate float64
}

// MemoryLimiter keeps one token bucket per client in process memory. It is
// an explicitly constructed component: share a single instance between
// callers instead of reaching for a package-level one.
type MemoryLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*TokenBucket
	defaultTier Tier
	vipTier     Tier
	vips        map[string]struct{}
}

func NewMemoryLimiter(defaultTier, vipTier Tier) *MemoryLimiter {
	return &MemoryLimiter{
		buckets:     make(map[string]*TokenBucket),
		defaultTier: defaultTier,
		vipTier:     vipTier,
		vips:        make(map[string]struct{}),
	}
}

// MarkVIP moves a client onto the VIP tier for buckets created afterwards.
func (l *MemoryLimiter) MarkVIP(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vips[clientID] = struct{}{}
}

func (l *MemoryLimiter) bucketFor(clientID string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[clientID]
	if !ok {
		tier := l.defaultTier
		if _, vip := l.vips[clientID]; vip {
			tier = l.vipTier
		}
		bucket = NewTokenBucket(tier.Capacity, tier.RefillRate)
		l.buckets[clientID] = bucket
	}
	return bucket
}

func (l *MemoryLimiter) Allow(_ context.Context, clientID string) bool {
	allowed := l.bucketFor(clientID).Consume(1)
	if !allowed && logger.Log != nil {
		logger.Log.WithField("client_id", clientID).Warn("Rate limit exceeded")
	}
	return allowed
}

// CleanupStale drops buckets idle longer than ttl and returns how many were
// removed. Call it periodically to bound memory on high-cardinality clients.
func (l *MemoryLimiter) CleanupStale(ttl time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for key, bucket := range l.buckets {
		if bucket.idleSince().Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}
