package middleware

import (
	"exam-bank/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateBankID validates the bankId path parameter.
func (vm *ValidationMiddleware) ValidateBankID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		bankID := c.Params("bankId")

		if errors := vm.validator.ValidateBankID(bankID); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		c.Locals("validated_bank_id", bankID)
		return c.Next()
	}
}

// ValidateIDParam validates a ULID path parameter and stores it under
// "validated_<param>".
func (vm *ValidationMiddleware) ValidateIDParam(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params(param)

		if errors := vm.validator.ValidateID(param, id); len(errors) > 0 {
			return errors
		}

		c.Locals("validated_"+param, id)
		return c.Next()
	}
}
