package ratelimiter

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// Middleware rejects requests with 429 once the client IP exhausts its
// window. Limiter errors fail open: a broken limiter backend must not take
// the API down.
func Middleware(limiter Limiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		allowed, err := limiter.Allow(c.Context(), c.IP())
		if err != nil || allowed {
			return c.Next()
		}

		problem := problems.NewStatusProblem(429).
			WithInstance(c.Path()).
			WithType("rate_limited").
			WithDetail("too many attempts, slow down")

		return c.Status(fiber.StatusTooManyRequests).JSON(problem)
	}
}
