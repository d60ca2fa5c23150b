package middleware

import (
	"fmt"
	"time"

	"quizforge/internal/cache"
	"quizforge/internal/config"
	"quizforge/internal/domain"
	"quizforge/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitCategory names an independent rate-limit bucket. Each category
// keeps its own counters, so exhausting one does not affect the others.
type RateLimitCategory string

const (
	RateLimitGeneration RateLimitCategory = "generation"
	RateLimitSurprise   RateLimitCategory = "surprise"
	RateLimitGeneral    RateLimitCategory = "general"
	RateLimitAuth       RateLimitCategory = "auth"
	RateLimitSafety     RateLimitCategory = "safety"
)

// RateLimiter enforces fixed-window request limits backed by Redis counters.
// Authenticated requests are keyed by user ID, anonymous ones by client IP.
type RateLimiter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{
		client: client,
		now:    time.Now,
	}
}

// Limit returns a handler enforcing the given bucket for one category.
// Redis outages fail open: a broken limiter must not take the API down
// with it.
func (r *RateLimiter) Limit(category RateLimitCategory, bucket config.RateLimitBucket) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := r.identity(c)
		now := r.now()
		windowStart := now.Truncate(bucket.Window)
		key := cache.GenerateCacheKey("ratelimit", string(category), identity,
			fmt.Sprintf("%d", windowStart.Unix()))

		count, err := r.client.Incr(c.Context(), key).Result()
		if err != nil {
			logger.Get().Error("Rate limiter unavailable, allowing request",
				zap.String("category", string(category)),
				zap.Error(err),
			)
			return c.Next()
		}

		if count == 1 {
			if err := r.client.Expire(c.Context(), key, bucket.Window).Err(); err != nil {
				logger.Get().Warn("Failed to set rate limit window expiry",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}

		if count > int64(bucket.Limit) {
			retryAfter := int(windowStart.Add(bucket.Window).Sub(now).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			logger.Get().Warn("Rate limit exceeded",
				zap.String("category", string(category)),
				zap.String("identity", identity),
				zap.Int64("count", count),
				zap.Int("limit", bucket.Limit),
			)
			return domain.NewRateLimitedError(retryAfter)
		}

		return c.Next()
	}
}

func (r *RateLimiter) identity(c *fiber.Ctx) string {
	if userID, ok := UserIDFromContext(c); ok {
		return "user:" + userID
	}
	return "ip:" + c.IP()
}
