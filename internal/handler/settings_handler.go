package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/service"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settingsService.Get()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(settings, ""))
}

func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req models.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}

	settings, err := h.settingsService.Update(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(settings, "Settings updated."))
}
