package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/service"
	"github.com/southeastarchers/club-backend/pkg/utils"
)

type FinanceHandler struct {
	financeService *service.FinanceService
	validator      *utils.Validator
}

func NewFinanceHandler(financeService *service.FinanceService, validator *utils.Validator) *FinanceHandler {
	return &FinanceHandler{
		financeService: financeService,
		validator:      validator,
	}
}

func (h *FinanceHandler) CreateTransaction(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse("User not authenticated"))
	}

	var req models.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	transaction, err := h.financeService.CreateTransaction(req, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse(transaction, ""))
}

func (h *FinanceHandler) GetTransactions(c *fiber.Ctx) error {
	var transactions []models.FinancialTransaction
	var err error
	switch {
	case c.Query("receipt") != "":
		transactions, err = h.financeService.GetTransactionsByReceipt(c.Query("receipt"))
	case c.Query("type") != "":
		transactions, err = h.financeService.GetTransactionsByType(c.Query("type"))
	default:
		transactions, err = h.financeService.GetAllTransactions()
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(transactions, ""))
}

func (h *FinanceHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid transaction ID"))
	}
	transaction, err := h.financeService.GetTransactionByID(uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(transaction, ""))
}

func (h *FinanceHandler) UpdateTransaction(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid transaction ID"))
	}

	var req models.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}

	transaction, err := h.financeService.UpdateTransaction(uint(id), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(transaction, ""))
}

func (h *FinanceHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Invalid transaction ID"))
	}
	if err := h.financeService.DeleteTransaction(uint(id)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(nil, "Transaction deleted."))
}

func (h *FinanceHandler) GetStatement(c *fiber.Ctx) error {
	start, end, err := parseStatementRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}
	statement, err := h.financeService.GenerateStatement(start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(statement, ""))
}

func (h *FinanceHandler) ExportStatement(c *fiber.Ctx) error {
	start, end, err := parseStatementRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(err.Error()))
	}
	key, err := h.financeService.ExportStatementCSV(start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse(fiber.Map{"key": key}, "Statement exported."))
}

func parseStatementRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		return time.Time{}, time.Time{}, service.NewValidationError("Invalid start date, expected YYYY-MM-DD.")
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		return time.Time{}, time.Time{}, service.NewValidationError("Invalid end date, expected YYYY-MM-DD.")
	}
	return start, end, nil
}
