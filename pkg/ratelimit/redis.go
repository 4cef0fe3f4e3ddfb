package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/scribeworks/compliance/pkg/common/logger"
)

// RedisLimiter enforces a fixed-window limit shared across instances:
// at most limit requests per client per window. On Redis errors it allows
// the request, since the limiter guards capacity, not correctness.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, clientID string) bool {
	windowSecs := int64(l.window.Seconds())
	if windowSecs < 1 {
		windowSecs = 1
	}
	key := fmt.Sprintf("%s:%s:%d", l.prefix, clientID, time.Now().Unix()/windowSecs)

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		if logger.Log != nil {
			logger.Log.WithError(err).Warn("Rate limit check failed, allowing request")
		}
		return true
	}

	allowed := count.Val() <= int64(l.limit)
	if !allowed && logger.Log != nil {
		logger.Log.WithField("client_id", clientID).Warn("Rate limit exceeded")
	}
	return allowed
}
