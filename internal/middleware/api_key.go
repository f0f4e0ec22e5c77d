package middleware

import (
	"productapi/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

// APIKeyHeader carries the shared secret on every product route.
const APIKeyHeader = "x-api-key"

// APIKeyVerifier checks a presented credential.
type APIKeyVerifier interface {
	Verify(key string) bool
}

// APIKeyRequired is a Fiber middleware that rejects requests without a valid
// API key. Failures short-circuit the chain and are rendered by the error handler.
func APIKeyRequired(verifier APIKeyVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get(APIKeyHeader)
		if apiKey == "" {
			return apperror.AuthRequired("Unauthorized: API Key missing")
		}

		if !verifier.Verify(apiKey) {
			return apperror.AuthInvalid("Forbidden: Invalid API Key")
		}

		return c.Next()
	}
}
