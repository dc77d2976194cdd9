package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const keyPrefix = "ratelimit:"

type redisLimiter struct {
	redisClient *redis.Client
	maxRequests int
	window      time.Duration
}

func NewRedisLimiter(redisClient *redis.Client, maxRequests int, window time.Duration) Limiter {
	return &redisLimiter{
		redisClient: redisClient,
		maxRequests: maxRequests,
		window:      window,
	}
}

func (l *redisLimiter) Check(ctx context.Context, key string) (*Result, error) {
	fullKey := keyPrefix + key

	count, err := l.redisClient.Incr(ctx, fullKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redisLimiter.Check.Incr")
	}
	// First hit in a window arms its expiry; every later hit inherits it, so
	// the whole window resets at once.
	if count == 1 {
		if err := l.redisClient.PExpire(ctx, fullKey, l.window).Err(); err != nil {
			return nil, errors.Wrap(err, "redisLimiter.Check.PExpire")
		}
	}

	resetAfter, err := l.redisClient.PTTL(ctx, fullKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redisLimiter.Check.PTTL")
	}
	if resetAfter < 0 {
		resetAfter = l.window
	}

	remaining := l.maxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:    count <= int64(l.maxRequests),
		Remaining:  remaining,
		ResetAfter: resetAfter,
	}, nil
}
