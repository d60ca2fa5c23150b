package middleware

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"quizforge/internal/cache"
	"quizforge/internal/config"

	"github.com/go-redis/redismock/v9"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitedApp(client *redis.Client, now time.Time, bucket config.RateLimitBucket) *fiber.App {
	limiter := NewRateLimiter(client)
	limiter.now = func() time.Time { return now }

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/ping", limiter.Limit(RateLimitGeneral, bucket), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func rateLimitKey(now time.Time, window time.Duration) string {
	windowStart := now.Truncate(window)
	return cache.GenerateCacheKey("ratelimit", "general", "ip:0.0.0.0",
		fmt.Sprintf("%d", windowStart.Unix()))
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	now := time.Unix(1700000000, 0)
	bucket := config.RateLimitBucket{Limit: 5, Window: time.Minute}

	key := rateLimitKey(now, bucket.Window)
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, bucket.Window).SetVal(true)

	app := newRateLimitedApp(client, now, bucket)

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_SkipsExpireAfterFirstHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	now := time.Unix(1700000000, 0)
	bucket := config.RateLimitBucket{Limit: 5, Window: time.Minute}

	key := rateLimitKey(now, bucket.Window)
	mock.ExpectIncr(key).SetVal(3)

	app := newRateLimitedApp(client, now, bucket)

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	now := time.Unix(1700000000, 0)
	bucket := config.RateLimitBucket{Limit: 5, Window: time.Minute}

	key := rateLimitKey(now, bucket.Window)
	mock.ExpectIncr(key).SetVal(6)

	app := newRateLimitedApp(client, now, bucket)

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_FailsOpenOnRedisError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	now := time.Unix(1700000000, 0)
	bucket := config.RateLimitBucket{Limit: 5, Window: time.Minute}

	key := rateLimitKey(now, bucket.Window)
	mock.ExpectIncr(key).SetErr(errors.New("connection refused"))

	app := newRateLimitedApp(client, now, bucket)

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
