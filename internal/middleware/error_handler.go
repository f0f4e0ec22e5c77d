package middleware

import (
	"errors"

	"productapi/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler is the terminal stage for every failure returned by a handler
// or middleware. It renders {"message": ...} with the failure's status and logs
// the failure. Messages of 5xx failures are never sent to the client.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, message := translate(err)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("unhandled failure", fields...)
		} else {
			log.Warn("request failed", fields...)
		}

		return c.Status(status).JSON(fiber.Map{"message": message})
	}
}

func translate(err error) (int, string) {
	status := apperror.StatusOf(err)
	message := ""

	if appErr, ok := apperror.As(err); ok {
		message = appErr.Message
	} else {
		// Router failures such as unknown routes arrive as *fiber.Error.
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code != 0 {
			status, message = fiberErr.Code, fiberErr.Message
		}
	}

	if message == "" || status >= fiber.StatusInternalServerError {
		message = apperror.DefaultMessage
	}
	return status, message
}

// statusOf is the status the error handler will answer err with.
func statusOf(err error) int {
	status, _ := translate(err)
	return status
}
