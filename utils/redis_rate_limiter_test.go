package utils

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/openhive/hivemux/utils/dotenv"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func TestRedisKeyParserRejectsDelimiter(t *testing.T) {
	p := RedisKeyParser{delimiter: "__"}
	require.True(t, p.ValidateId("user-1"))
	require.False(t, p.ValidateId("user__1"))
	require.Panics(t, func() { p.MustEncodeLimitKey("user__1", "/feed") })
}

func TestRedisRateLimiterCountsWithinWindow(t *testing.T) {
	limiter, err := GetRedisRateLimiter(2, time.Minute)
	require.NoError(t, err)

	// fresh caller per run so reruns never inherit a half-spent window
	caller := "caller-" + RandomAlphabetString(8)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, caller, "/feed")
		require.NoError(t, err)
		require.True(t, allowed)
	}
	allowed, err := limiter.Allow(ctx, caller, "/feed")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestRedisRateLimiterWindowExpiresUnderSustainedTraffic(t *testing.T) {
	limiter, err := GetRedisRateLimiter(2, time.Second)
	require.NoError(t, err)

	caller := "caller-" + RandomAlphabetString(8)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, caller, "/feed")
		require.NoError(t, err)
	}

	// keep hitting the limiter mid-window; these requests must not push the
	// expiry out, the window is anchored at the first request
	time.Sleep(600 * time.Millisecond)
	allowed, err := limiter.Allow(ctx, caller, "/feed")
	require.NoError(t, err)
	require.False(t, allowed)

	time.Sleep(600 * time.Millisecond)
	allowed, err = limiter.Allow(ctx, caller, "/feed")
	require.NoError(t, err)
	require.True(t, allowed, "window must expire even while requests keep arriving")
}
