package handlers

import (
	"errors"
	"fmt"

	"foodgram/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// statusFor maps a service error onto its HTTP status.
func statusFor(svcErr *services.Error) int {
	switch {
	case errors.Is(svcErr, services.ErrValidation), errors.Is(svcErr, services.ErrSelfReference):
		return fiber.StatusBadRequest
	case errors.Is(svcErr, services.ErrPermission):
		if svcErr.Rule == services.RuleAuthenticationRequired || svcErr.Rule == services.RuleInvalidCredentials {
			return fiber.StatusUnauthorized
		}
		return fiber.StatusForbidden
	case errors.Is(svcErr, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(svcErr, services.ErrConflict):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// respondError writes err as a JSON error body. Errors that are not
// service errors are logged and reported as 500 without details.
func respondError(c *fiber.Ctx, err error) error {
	if svcErr, ok := services.AsError(err); ok {
		return c.Status(statusFor(svcErr)).JSON(fiber.Map{
			"message": svcErr.Message,
			"rule":    svcErr.Rule,
			"field":   svcErr.Field,
		})
	}
	zap.L().Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}

// respondBadBody reports an unparsable request body.
func respondBadBody(c *fiber.Ctx, err error) error {
	zap.L().Debug("invalid request body", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"rule":    services.RuleInvalid,
	})
}

// respondValidation reports struct validation failures, one entry per field.
func respondValidation(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return respondBadBody(c, err)
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"rule":    services.RuleInvalid,
		"field":   validationErrors[0].Field(),
		"errors":  errorMessages,
	})
}
