package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/miaout11/forum-express-grading/pkg/logger"
)

// SigninLimiter allows each client IP the given attempts per sliding window and
// rejects the rest with 429.
func SigninLimiter(attempts int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        attempts,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return utils.CopyString(c.IP())
		},
		LimitReached: func(c *fiber.Ctx) error {
			logger.Warn("rate limit exceeded", zap.String("ip", c.IP()), zap.String("path", c.Path()))
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts, please try again later")
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
