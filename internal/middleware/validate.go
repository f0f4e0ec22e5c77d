package middleware

import (
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidateProduct checks the parsed payload against policy. It is the one
// stage that renders its own failure: 400 with the first violation as message,
// plus every violation under "errors" when the policy collects all of them.
// The handler is not invoked on failure.
func ValidateProduct(v *validation.Validator, policy validation.Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		violations := v.Check(Payload(c), policy)
		if len(violations) == 0 {
			return c.Next()
		}

		body := fiber.Map{"message": violations[0]}
		if policy.Errors == validation.AllErrors {
			body["errors"] = violations
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
}
