package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/cybertest-backend/internal/config"
)

// attemptScript prunes the window, refuses at the threshold, otherwise records one
// attempt. KEYS[1] attempts key; ARGV cutoff, max, now, member, window in ms.
var attemptScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// RedisAttemptLimiter keeps each client's attempt log in a sorted set scored by
// unix nanoseconds, so every replica sees the same window.
type RedisAttemptLimiter struct {
	rdb    *redis.Client
	window time.Duration
	max    int
	now    func() time.Time
}

// NewRedisAttemptLimiter creates a Redis-backed sliding window limiter.
func NewRedisAttemptLimiter(rdb *redis.Client, max int, window time.Duration) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{
		rdb:    rdb,
		window: window,
		max:    max,
		now:    time.Now,
	}
}

// RecordFailure implements AttemptLimiter.
func (l *RedisAttemptLimiter) RecordFailure(ctx context.Context, clientID string) error {
	key := config.CacheKey.LoginAttemptsKey(clientID)
	now := l.now()

	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
		pipe.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return storeErr("record login failure", err)
	}
	return nil
}

// IsBlocked implements AttemptLimiter.
func (l *RedisAttemptLimiter) IsBlocked(ctx context.Context, clientID string) (bool, error) {
	key := config.CacheKey.LoginAttemptsKey(clientID)
	cutoff := l.now().Add(-l.window).UnixNano()

	var card *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
		card = pipe.ZCard(ctx, key)
		return nil
	})
	if err != nil {
		return false, storeErr("check login attempts", err)
	}
	return card.Val() >= int64(l.max), nil
}

// Attempt implements AttemptLimiter.
func (l *RedisAttemptLimiter) Attempt(ctx context.Context, clientID string) (bool, error) {
	key := config.CacheKey.LoginAttemptsKey(clientID)
	now := l.now()

	allowed, err := attemptScript.Run(ctx, l.rdb, []string{key},
		now.Add(-l.window).UnixNano(),
		l.max,
		now.UnixNano(),
		uuid.NewString(),
		l.window.Milliseconds(),
	).Int()
	if err != nil {
		return false, storeErr("reserve login attempt", err)
	}
	return allowed == 1, nil
}

// Reset implements AttemptLimiter.
func (l *RedisAttemptLimiter) Reset(ctx context.Context, clientID string) error {
	if err := l.rdb.Del(ctx, config.CacheKey.LoginAttemptsKey(clientID)).Err(); err != nil {
		return storeErr("reset login attempts", err)
	}
	return nil
}
