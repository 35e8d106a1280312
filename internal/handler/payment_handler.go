package handler

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/service"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService      *service.PaymentService
	stripeWebhookSecret string
	logger              *zap.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, stripeWebhookSecret string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService:      paymentService,
		stripeWebhookSecret: stripeWebhookSecret,
		logger:              logger,
	}
}

func (h *PaymentHandler) CreateMembershipCheckout(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	session, err := h.paymentService.CreateMembershipCheckout(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(session, ""))
}

func (h *PaymentHandler) CreateCreditCheckout(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	var req models.CreateCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}

	session, err := h.paymentService.CreateCreditCheckout(userID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(session, ""))
}

func (h *PaymentHandler) SubmitCashPayment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	var req struct {
		PaymentType string `json:"payment_type"`
		Quantity    int    `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}

	payment, instructions, err := h.paymentService.SubmitCashPayment(userID, req.PaymentType, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(fiber.Map{
		"payment":      payment,
		"instructions": instructions,
	}, "Cash payment recorded. It will be applied once an admin confirms receipt."))
}

// HandleStripeWebhook is the only unauthenticated mutation endpoint; the
// Stripe signature is its authentication.
func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, h.stripeWebhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Webhook signature verification failed"))
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid webhook payload"))
		}
		transactionID := session.ID
		if session.PaymentIntent != nil {
			transactionID = session.PaymentIntent.ID
		}
		if err := h.paymentService.HandleCheckoutCompleted(session.ClientReferenceID, transactionID); err != nil {
			h.logger.Error("checkout completion failed",
				zap.String("reference", session.ClientReferenceID),
				zap.Error(err),
			)
			return respondError(c, err)
		}
	case "checkout.session.expired":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid webhook payload"))
		}
		if err := h.paymentService.HandleCheckoutFailed(session.ClientReferenceID); err != nil {
			return respondError(c, err)
		}
	default:
		h.logger.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PaymentHandler) ConfirmCashPayment(c *fiber.Ctx) error {
	paymentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid payment ID"))
	}
	if err := h.paymentService.ConfirmCashPayment(uint(paymentID)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Payment confirmed."))
}

func (h *PaymentHandler) CancelPayment(c *fiber.Ctx) error {
	paymentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid payment ID"))
	}
	if err := h.paymentService.CancelPayment(uint(paymentID)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Payment cancelled."))
}

func (h *PaymentHandler) GetMyPayments(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}
	payments, err := h.paymentService.GetUserPayments(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(payments, ""))
}

func (h *PaymentHandler) GetPendingCashPayments(c *fiber.Ctx) error {
	payments, err := h.paymentService.GetPendingCashPayments()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(payments, ""))
}
