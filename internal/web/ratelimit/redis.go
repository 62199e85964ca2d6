package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a sliding-window limiter backed by a Redis sorted set per
// key. All application instances pointed at the same Redis share one limit.
type RedisLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
	prefix   string
}

// allowScript trims expired entries, counts the window, and records the
// request atomically.
var allowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local cutoff = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, 0, cutoff)
	local current = redis.call('ZCARD', key)
	if current < limit then
		redis.call('ZADD', key, now, now)
		redis.call('EXPIRE', key, ttl)
		return {1, current + 1}
	end
	return {0, current}
`)

// NewRedisLimiter builds a limiter allowing requests per window against the
// given client.
func NewRedisLimiter(client *redis.Client, requests int, window time.Duration) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if requests <= 0 || window <= 0 {
		return nil, errors.New("rate limit requests and window must be positive")
	}
	return &RedisLimiter{
		client:   client,
		requests: requests,
		window:   window,
		prefix:   "jobhunt:ratelimit:",
	}, nil
}

// Allow records one request for key and reports whether it fit the window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (*Decision, error) {
	now := time.Now()
	result, err := allowScript.Run(ctx, l.client, []string{l.prefix + key},
		now.UnixNano(),
		now.Add(-l.window).UnixNano(),
		l.requests,
		int(l.window.Seconds()),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return nil, errors.New("unexpected rate limit script result")
	}
	allowed, _ := values[0].(int64)
	count, _ := values[1].(int64)

	remaining := l.requests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &Decision{
		Allowed:   allowed == 1,
		Limit:     l.requests,
		Remaining: remaining,
		ResetAt:   now.Add(l.window),
	}, nil
}

// Reset clears the window for key.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}
