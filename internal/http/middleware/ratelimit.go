package middleware

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"signdesk/internal/ratelimit"
)

// RateLimit rejects requests from a client IP once it exhausts limit slots
// within the sliding window, and reports the budget through
// X-RateLimit-Limit and X-RateLimit-Remaining. When the limiter backend is
// unreachable the request passes through.
func RateLimit(limiter ratelimit.Limiter, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		allowed, err := limiter.Allow(ctx, c.IP(), limit, window)
		if err != nil {
			log.Printf("rate limiter unavailable: %v", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		if remaining, err := limiter.Remaining(ctx, c.IP(), limit, window); err == nil {
			c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		if !allowed {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		}
		return c.Next()
	}
}
