package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketConsume(t *testing.T) {
	bucket := NewTokenBucket(3, 0.0)

	for i := 0; i < 3; i++ {
		if !bucket.Consume(1) {
			t.Fatalf("consume %d should succeed within burst", i)
		}
	}
	if bucket.Consume(1) {
		t.Fatal("bucket exhausted, consume should fail")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	bucket := NewTokenBucket(1, 100.0)

	if !bucket.Consume(1) {
		t.Fatal("first consume should succeed")
	}
	time.Sleep(50 * time.Millisecond)
	if !bucket.Consume(1) {
		t.Fatal("bucket should have refilled after waiting")
	}
}

func TestMemoryLimiterIsolatesClients(t *testing.T) {
	limiter := NewMemoryLimiter(Tier{Capacity: 1, RefillRate: 0}, Tier{Capacity: 10, RefillRate: 0})
	ctx := context.Background()

	if !limiter.Allow(ctx, "alice") {
		t.Fatal("alice's first request should pass")
	}
	if limiter.Allow(ctx, "alice") {
		t.Fatal("alice's second request should be limited")
	}
	if !limiter.Allow(ctx, "bob") {
		t.Fatal("bob gets a separate bucket and should pass")
	}
}

func TestMemoryLimiterVIPTier(t *testing.T) {
	limiter := NewMemoryLimiter(Tier{Capacity: 1, RefillRate: 0}, Tier{Capacity: 5, RefillRate: 0})
	limiter.MarkVIP("carol")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if !limiter.Allow(ctx, "carol") {
			t.Fatalf("VIP request %d should pass", i)
		}
	}
	if limiter.Allow(ctx, "carol") {
		t.Fatal("VIP burst exhausted, request should be limited")
	}
}

func TestCleanupStale(t *testing.T) {
	limiter := NewMemoryLimiter(Tier{Capacity: 1, RefillRate: 0}, Tier{Capacity: 1, RefillRate: 0})
	ctx := context.Background()

	limiter.Allow(ctx, "old-client")
	time.Sleep(20 * time.Millisecond)

	if removed := limiter.CleanupStale(10 * time.Millisecond); removed != 1 {
		t.Fatalf("expected 1 stale bucket removed, got %d", removed)
	}
	if removed := limiter.CleanupStale(10 * time.Millisecond); removed != 0 {
		t.Fatalf("expected no buckets left, got %d removed", removed)
	}
}
