package limiter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript keeps one sorted-set member per admission, scored by
// its timestamp in milliseconds. Time comes from the Redis server so every
// process sharing the key prunes against the same clock. Entries strictly
// older than now-window are pruned before counting.
//
// KEYS[1] window key
// ARGV[1] capacity, ARGV[2] window (ms), ARGV[3] member
//
// Reply: {allowed, count, oldest score or -1, now (ms)}
var slidingWindowScript = redis.NewScript(`
local t = redis.call("TIME")
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)
local window = tonumber(ARGV[2])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", "(" .. (now - window))
local count = redis.call("ZCARD", KEYS[1])
local allowed = 0
if count < tonumber(ARGV[1]) then
  redis.call("ZADD", KEYS[1], now, ARGV[3])
  count = count + 1
  allowed = 1
end
if count > 0 then
  redis.call("PEXPIRE", KEYS[1], window)
end
local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")
local oldestScore = -1
if #oldest == 2 then
  oldestScore = tonumber(oldest[2])
end
return {allowed, count, oldestScore, now}
`)

type RedisLimiter struct {
	client  redis.Scripter
	cfg     Config
	timeout time.Duration
}

type RedisOption func(*RedisLimiter)

// WithTimeout bounds every Check call. Zero disables the extra deadline.
func WithTimeout(d time.Duration) RedisOption {
	return func(l *RedisLimiter) {
		l.timeout = d
	}
}

func NewRedisLimiter(client redis.Scripter, cfg Config, opts ...RedisOption) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	l := &RedisLimiter{
		client: client,
		cfg:    cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *RedisLimiter) Check(ctx context.Context, key string) (Decision, error) {
	if l.cfg.Capacity <= 0 {
		return deny(l.cfg.Capacity, time.Now().Add(l.cfg.Window)), nil
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	windowMs := l.cfg.Window.Milliseconds()
	if windowMs <= 0 {
		windowMs = 1
	}

	res, err := slidingWindowScript.Run(ctx, l.client, []string{BuildKey(key)},
		strconv.Itoa(l.cfg.Capacity),
		strconv.FormatInt(windowMs, 10),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(res) != 4 {
		return Decision{}, fmt.Errorf("%w: unexpected script reply of length %d", ErrUnavailable, len(res))
	}

	allowed := res[0] == 1
	count := int(res[1])
	resetAt := time.UnixMilli(res[3]).Add(l.cfg.Window)
	if res[2] >= 0 {
		resetAt = time.UnixMilli(res[2]).Add(l.cfg.Window)
	}

	if !allowed {
		return deny(l.cfg.Capacity, resetAt), nil
	}
	return Decision{
		Allowed:   true,
		Limit:     l.cfg.Capacity,
		Remaining: max(l.cfg.Capacity-count, 0),
		ResetAt:   resetAt,
	}, nil
}
