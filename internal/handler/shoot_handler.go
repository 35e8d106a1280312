package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/service"
	"github.com/southeastarchers/club-backend/pkg/utils"
)

type ShootHandler struct {
	shootService *service.ShootService
	validator    *utils.Validator
}

func NewShootHandler(shootService *service.ShootService, validator *utils.Validator) *ShootHandler {
	return &ShootHandler{
		shootService: shootService,
		validator:    validator,
	}
}

func (h *ShootHandler) CreateShoot(c *fiber.Ctx) error {
	var req models.ShootRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	shoot, warnings, err := h.shootService.CreateShoot(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponseWithWarnings(shoot, "Shoot recorded.", warnings))
}

func (h *ShootHandler) UpdateShoot(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid shoot ID"))
	}

	var req models.ShootRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	shoot, warnings, err := h.shootService.UpdateShoot(uint(id), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponseWithWarnings(shoot, "Shoot updated.", warnings))
}

func (h *ShootHandler) GetShoot(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid shoot ID"))
	}
	shoot, err := h.shootService.GetShootByID(uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(shoot, ""))
}

func (h *ShootHandler) GetShoots(c *fiber.Ctx) error {
	shoots, err := h.shootService.GetAllShoots()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(shoots, ""))
}
