package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"hrportal_backend/internals/configs"
)

func newLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			return configs.GetEnv("RATE_LIMIT_DISABLED") == "true"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":    false,
				"message":    message,
				"error_code": "TOO_MANY_REQUESTS",
			})
		},
	})
}

// GlobalRateLimiter applies to every endpoint.
func GlobalRateLimiter() fiber.Handler {
	return newLimiter(100, time.Minute, "Too many requests. Please try again later.")
}

func LoginRateLimiter() fiber.Handler {
	return newLimiter(5, time.Minute, "Too many login attempts. Please wait a moment.")
}

// BiodataRateLimiter guards the public intake form.
func BiodataRateLimiter() fiber.Handler {
	return newLimiter(3, 5*time.Minute, "Too many submissions. Please wait a few minutes.")
}
