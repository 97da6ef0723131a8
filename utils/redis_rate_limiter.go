package utils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisRateLimiter is a fixed-window request counter shared by every server
// instance. The previous generation of this service kept the counters in a
// process-local map, which silently resets on restart and diverges across
// replicas; a shared Redis counter with expiry is the replacement.
type RedisRateLimiter struct {
	inner     *redis.Client
	keyParser RedisKeyParser
	window    time.Duration
	limit     int64
}

func GetRedisRateLimiter(limit int64, window time.Duration) (*RedisRateLimiter, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(context.Background()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisRateLimiter{
		inner:     redisClient,
		keyParser: RedisKeyParser{delimiter: "__"},
		window:    window,
		limit:     limit,
	}, nil
}

type RedisKeyParser struct {
	delimiter string
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) MustEncodeLimitKey(callerId string, route string) string {
	if !r.ValidateId(callerId) {
		panic(fmt.Errorf("invalid callerId with delimiter: %s, %s", callerId, r.delimiter))
	}
	return fmt.Sprintf("ratelimit%s%s%s%s", r.delimiter, callerId, r.delimiter, route)
}

// Allow counts one request for the caller on the route and reports whether it
// is still within the window limit. Only the request that opens a window sets
// the expiry; refreshing it on every request would keep a busy caller's
// window alive forever and never unblock them.
func (r *RedisRateLimiter) Allow(ctx context.Context, callerId string, route string) (bool, error) {
	key := r.keyParser.MustEncodeLimitKey(callerId, route)

	count, err := r.inner.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.inner.Expire(ctx, key, r.window).Err(); err != nil {
			return false, err
		}
	}

	return count <= r.limit, nil
}
