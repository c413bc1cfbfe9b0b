package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"todoapi/internal/core/port"
)

// incrementScript bumps the counter and starts the window on the first hit.
// It returns the new count and the remaining window in milliseconds.
var incrementScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitStore shares fixed window counters between every instance that
// points at the same redis.
type RateLimitStore struct {
	client *redis.Client
	prefix string
}

func NewRateLimitStore(ctx context.Context, opts Options) (port.RateLimitStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRateLimitStoreWithClient(client), nil
}

func NewRateLimitStoreWithClient(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: "todoapi:",
	}
}

func (s *RateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	result, err := incrementScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()

	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit increment: %w", err)
	}

	if len(result) != 2 {
		return 0, time.Time{}, fmt.Errorf("rate limit increment: unexpected reply %v", result)
	}

	return int(result[0]), time.Now().Add(time.Duration(result[1]) * time.Millisecond), nil
}

func (s *RateLimitStore) Close() error {
	return s.client.Close()
}
