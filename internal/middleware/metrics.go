package middleware

import (
	"strconv"
	"time"

	"productapi/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records the count and duration of every request by route template.
// Failures still pending in the error handler are counted with their final status.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}
		m.Observe(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start).Seconds())
		return err
	}
}
