package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/service"
	"github.com/southeastarchers/club-backend/pkg/utils"
)

type UserHandler struct {
	userService   *service.UserService
	creditService *service.CreditService
	validator     *utils.Validator
}

func NewUserHandler(userService *service.UserService, creditService *service.CreditService, validator *utils.Validator) *UserHandler {
	return &UserHandler{
		userService:   userService,
		creditService: creditService,
		validator:     validator,
	}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(user, ""))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	var req struct {
		FullName string `json:"full_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}

	user, err := h.userService.UpdateProfile(userID, req.FullName)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(user, "Profile updated."))
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	var req struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	if err := h.userService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Password changed."))
}

func (h *UserHandler) GetActiveMembers(c *fiber.Ctx) error {
	members, err := h.userService.GetActiveMembers()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(members, ""))
}

func (h *UserHandler) GetMyCredits(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}
	remaining, err := h.creditService.CreditsRemaining(userID)
	if err != nil {
		return respondError(c, err)
	}
	history, err := h.creditService.GetPurchaseHistory(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"credits_remaining": remaining,
		"purchases":         history,
	}, ""))
}
