package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/service"
)

type MembershipHandler struct {
	membershipService *service.MembershipService
}

func NewMembershipHandler(membershipService *service.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
	}
}

func (h *MembershipHandler) GetMyMembership(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	membership, err := h.membershipService.GetByUserID(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{
		"membership":        membership,
		"credits_remaining": membership.CreditsRemaining(),
		"is_active":         membership.IsActive(time.Now().UTC()),
	}, ""))
}

// Activate is the admin transitioning a pending membership to active, for
// members handled outside the payment flow.
func (h *MembershipHandler) Activate(c *fiber.Ctx) error {
	userID, err := parseUserIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user ID"))
	}
	if err := h.membershipService.Activate(userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Membership activated successfully."))
}

func (h *MembershipHandler) Renew(c *fiber.Ctx) error {
	userID, err := parseUserIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user ID"))
	}
	if err := h.membershipService.Renew(userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Membership renewed successfully."))
}

func (h *MembershipHandler) Cancel(c *fiber.Ctx) error {
	userID, err := parseUserIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid user ID"))
	}
	if err := h.membershipService.Cancel(userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Membership cancelled."))
}

func (h *MembershipHandler) GetExpiringSoon(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil || days < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid days parameter"))
	}
	memberships, err := h.membershipService.GetExpiringSoon(days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(memberships, ""))
}

// RunYearEndRollover forfeits unused annual allotments on expired
// memberships. Invoked by the external scheduler's daily trigger.
func (h *MembershipHandler) RunYearEndRollover(c *fiber.Ctx) error {
	count, err := h.membershipService.ExpireInitialCreditsForYearEnd()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{"expired": count}, ""))
}

func parseUserIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("userId"), 10, 32)
	return uint(id), err
}
