package middleware

import (
	"productapi/internal/apperror"

	"github.com/gofiber/fiber/v2"
)

const payloadKey = "payload"

// ParseJSONBody decodes the request body into a generic JSON object and stores
// it for the validation stage and the handler. An empty body is an empty
// object. Malformed JSON, or JSON that is not an object, is forwarded as a
// validation failure.
func ParseJSONBody() fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := map[string]any{}

		if body := c.Body(); len(body) > 0 {
			var raw any
			if err := c.App().Config().JSONDecoder(body, &raw); err != nil {
				return apperror.ValidationFailed("Invalid JSON payload", err)
			}
			obj, ok := raw.(map[string]any)
			if !ok {
				return apperror.ValidationFailed("Request body must be a JSON object", nil)
			}
			payload = obj
		}

		c.Locals(payloadKey, payload)
		return c.Next()
	}
}

// Payload returns the object stored by ParseJSONBody, or an empty object.
func Payload(c *fiber.Ctx) map[string]any {
	if payload, ok := c.Locals(payloadKey).(map[string]any); ok {
		return payload
	}
	return map[string]any{}
}
