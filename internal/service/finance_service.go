package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatementUploader stores exported statements in object storage.
type StatementUploader interface {
	Upload(key string, body []byte, contentType string) error
}

type FinanceService struct {
	db              *gorm.DB
	transactionRepo *repository.FinancialTransactionRepository
	settingsService *SettingsService
	uploader        StatementUploader
	logger          *zap.Logger
}

func NewFinanceService(db *gorm.DB, transactionRepo *repository.FinancialTransactionRepository, settingsService *SettingsService, uploader StatementUploader, logger *zap.Logger) *FinanceService {
	return &FinanceService{
		db:              db,
		transactionRepo: transactionRepo,
		settingsService: settingsService,
		uploader:        uploader,
		logger:          logger,
	}
}

// CreateTransaction records a manual income or expense entry.
func (s *FinanceService) CreateTransaction(req models.CreateTransactionRequest, createdByID uint) (*models.FinancialTransaction, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, NewValidationError("Invalid transaction date.")
	}
	transaction := &models.FinancialTransaction{
		Type:             req.Type,
		Date:             date,
		AmountCents:      req.AmountCents,
		Category:         req.Category,
		Description:      req.Description,
		Source:           req.Source,
		ReceiptReference: req.ReceiptReference,
		CreatedByID:      createdByID,
	}
	if err := s.transactionRepo.Create(s.db, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// recordForCompletedPaymentTx derives the ledger rows for a payment that is
// completing inside tx. Cash yields one income row. Online yields an income
// row plus a processing-fee expense; when the fee percentage is not
// configured the whole recording fails with a ConfigError instead of
// silently recording income only, which would corrupt the net position.
// Running inside the completion transaction makes the rows and the payment
// status flip a single atomic unit.
func (s *FinanceService) recordForCompletedPaymentTx(tx *gorm.DB, payment *models.Payment) error {
	category := models.CategoryShootFees
	if payment.PaymentType == models.PaymentTypeMembership {
		category = models.CategoryMembershipFees
	}
	today := truncateToDay(time.Now().UTC())

	if payment.PaymentMethod == models.PaymentMethodCash {
		income := &models.FinancialTransaction{
			Type:             models.TransactionTypeIncome,
			Date:             today,
			AmountCents:      payment.AmountCents,
			Currency:         payment.Currency,
			Category:         category,
			Description:      payment.Description,
			Source:           "Cash",
			ReceiptReference: fmt.Sprintf("payment-%d", payment.ID),
			CreatedByID:      payment.UserID,
		}
		return s.transactionRepo.Create(tx, income)
	}

	settings, err := s.settingsService.Get()
	if err != nil {
		return err
	}
	if settings.StripeFeePercentage == nil {
		return NewConfigError("Stripe fee percentage not configured")
	}
	feePct := *settings.StripeFeePercentage
	feeCents := int64(math.Round(float64(payment.AmountCents) * feePct / 100.0))

	receiptReference := payment.CheckoutReference
	if receiptReference == "" {
		receiptReference = fmt.Sprintf("payment-%d", payment.ID)
	}

	income := &models.FinancialTransaction{
		Type:             models.TransactionTypeIncome,
		Date:             today,
		AmountCents:      payment.AmountCents,
		Currency:         payment.Currency,
		Category:         category,
		Description:      payment.Description,
		Source:           payment.PaymentProcessor,
		ReceiptReference: receiptReference,
		CreatedByID:      payment.UserID,
	}
	if err := s.transactionRepo.Create(tx, income); err != nil {
		return err
	}

	expense := &models.FinancialTransaction{
		Type:             models.TransactionTypeExpense,
		Date:             today,
		AmountCents:      feeCents,
		Currency:         payment.Currency,
		Category:         models.CategoryPaymentProcessingFees,
		Description:      fmt.Sprintf("%s fee (%.2f%%) on %s", payment.PaymentProcessor, feePct, payment.Description),
		ReceiptReference: receiptReference,
		CreatedByID:      payment.UserID,
	}
	return s.transactionRepo.Create(tx, expense)
}

// GenerateStatement aggregates ledger rows whose date falls in [start, end]
// inclusive. An empty range yields zero totals and empty item lists.
func (s *FinanceService) GenerateStatement(start, end time.Time) (*models.FinancialStatement, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return nil, NewValidationError("End date must not be before start date.")
	}

	incomeItems, err := s.transactionRepo.GetByDateRange(start, end, models.TransactionTypeIncome)
	if err != nil {
		return nil, err
	}
	expenseItems, err := s.transactionRepo.GetByDateRange(start, end, models.TransactionTypeExpense)
	if err != nil {
		return nil, err
	}
	// An empty range serializes as empty lists, not null.
	if incomeItems == nil {
		incomeItems = []models.FinancialTransaction{}
	}
	if expenseItems == nil {
		expenseItems = []models.FinancialTransaction{}
	}

	var totalIncome, totalExpenses int64
	for _, item := range incomeItems {
		totalIncome += item.AmountCents
	}
	for _, item := range expenseItems {
		totalExpenses += item.AmountCents
	}

	return &models.FinancialStatement{
		StartDate:          start,
		EndDate:            end,
		IncomeItems:        incomeItems,
		ExpenseItems:       expenseItems,
		IncomeByCategory:   groupByCategory(incomeItems),
		ExpenseByCategory:  groupByCategory(expenseItems),
		TotalIncomeCents:   totalIncome,
		TotalExpensesCents: totalExpenses,
		NetCents:           totalIncome - totalExpenses,
	}, nil
}

// ExportStatementCSV renders a statement as CSV and uploads it to object
// storage, returning the object key.
func (s *FinanceService) ExportStatementCSV(start, end time.Time) (string, error) {
	statement, err := s.GenerateStatement(start, end)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"type", "date", "category", "description", "source", "receipt_reference", "amount"})
	writeItems := func(items []models.FinancialTransaction) {
		for _, item := range items {
			_ = w.Write([]string{
				item.Type,
				item.Date.Format("2006-01-02"),
				item.Category,
				item.Description,
				item.Source,
				item.ReceiptReference,
				formatCents(item.AmountCents),
			})
		}
	}
	writeItems(statement.IncomeItems)
	writeItems(statement.ExpenseItems)
	_ = w.Write([]string{"net", "", "", "", "", "", formatCents(statement.NetCents)})
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("statements/%s_%s_%s.csv",
		start.Format("2006-01-02"), end.Format("2006-01-02"), uuid.NewString())
	if err := s.uploader.Upload(key, buf.Bytes(), "text/csv"); err != nil {
		s.logger.Error("statement upload failed", zap.String("key", key), zap.Error(err))
		return "", err
	}
	return key, nil
}

func (s *FinanceService) GetTransactionByID(id uint) (*models.FinancialTransaction, error) {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("Transaction not found")
		}
		return nil, err
	}
	return transaction, nil
}

func (s *FinanceService) GetAllTransactions() ([]models.FinancialTransaction, error) {
	return s.transactionRepo.GetAll()
}

func (s *FinanceService) GetTransactionsByType(txnType string) ([]models.FinancialTransaction, error) {
	if txnType != models.TransactionTypeIncome && txnType != models.TransactionTypeExpense {
		return nil, NewValidationError("Unknown transaction type.")
	}
	return s.transactionRepo.GetByType(txnType)
}

// GetTransactionsByReceipt looks up every ledger row sharing a receipt
// reference, e.g. the income and fee rows of one online payment.
func (s *FinanceService) GetTransactionsByReceipt(reference string) ([]models.FinancialTransaction, error) {
	return s.transactionRepo.GetByReceiptReference(reference)
}

func (s *FinanceService) UpdateTransaction(id uint, req models.CreateTransactionRequest) (*models.FinancialTransaction, error) {
	transaction, err := s.GetTransactionByID(id)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, NewValidationError("Invalid transaction date.")
	}
	transaction.Type = req.Type
	transaction.Date = date
	transaction.AmountCents = req.AmountCents
	transaction.Category = req.Category
	transaction.Description = req.Description
	transaction.Source = req.Source
	transaction.ReceiptReference = req.ReceiptReference
	if err := s.transactionRepo.Update(transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

func (s *FinanceService) DeleteTransaction(id uint) error {
	if _, err := s.GetTransactionByID(id); err != nil {
		return err
	}
	return s.transactionRepo.Delete(id)
}

func groupByCategory(items []models.FinancialTransaction) []models.CategoryTotal {
	index := make(map[string]int)
	var totals []models.CategoryTotal
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(totals)
			index[item.Category] = i
			totals = append(totals, models.CategoryTotal{Category: item.Category})
		}
		totals[i].TotalCents += item.AmountCents
		totals[i].Count++
	}
	return totals
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// formatCents converts integer minor units to decimal display form. Money
// stays integral everywhere else.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
}
