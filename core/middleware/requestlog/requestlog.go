package requestlog

import (
	"strconv"
	"time"

	"pwsi/core/logger"
	"pwsi/core/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// New returns a middleware logging every request with its ray id and
// counting it by method and status.
func New(l *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rl := logger.WithRayID(l, c)

		err := c.Next()
		if err != nil {
			rl.Error("Request error", zap.Error(err))
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		metrics.Requests.WithLabelValues(c.Method(), strconv.Itoa(status)).Inc()
		rl.Info("Request finished",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	}
}
