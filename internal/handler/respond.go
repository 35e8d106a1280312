package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/service"
)

// respondError maps the service error taxonomy onto HTTP. Validation errors
// carry their message to the user; config errors name the missing setting so
// an operator can act; anything else is a generic failure with the detail
// kept in the logs.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case service.IsValidationError(err):
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	case service.IsConfigError(err):
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Configuration error: " + err.Error()))
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse("Something went wrong"))
	}
}

func currentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userID").(uint)
	return userID, ok
}
