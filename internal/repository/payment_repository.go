package repository

import (
	"errors"
	"time"

	"github.com/southeastarchers/club-backend/internal/models"
	"gorm.io/gorm"
)

// ErrPaymentNotPending is returned when a status transition finds the
// payment already in a terminal state.
var ErrPaymentNotPending = errors.New("payment is not pending")

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

func (r *PaymentRepository) Create(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepository) CreateTx(tx *gorm.DB, payment *models.Payment) error {
	return tx.Create(payment).Error
}

func (r *PaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.First(&payment, id).Error
	return &payment, err
}

func (r *PaymentRepository) GetByCheckoutReference(reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("checkout_reference = ?", reference).First(&payment).Error
	return &payment, err
}

func (r *PaymentRepository) GetPendingCashForUser(userID uint, paymentType string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("user_id = ? AND payment_type = ? AND payment_method = ? AND status = ?",
		userID, paymentType, models.PaymentMethodCash, models.PaymentStatusPending).
		Order("created_at DESC").
		First(&payment).Error
	return &payment, err
}

func (r *PaymentRepository) GetUserPayments(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) GetPendingCashPayments() ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("payment_method = ? AND status = ?",
		models.PaymentMethodCash, models.PaymentStatusPending).
		Order("created_at").
		Find(&payments).Error
	return payments, err
}

// MarkCompleted moves a payment from pending to completed. The conditional
// update enforces the one-way terminal invariant: a second delivery of the
// same completion matches zero rows and fails with ErrPaymentNotPending.
func (r *PaymentRepository) MarkCompleted(tx *gorm.DB, payment *models.Payment, transactionID *string, processor string, completedAt time.Time) error {
	result := tx.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":                  models.PaymentStatusCompleted,
			"external_transaction_id": transactionID,
			"payment_processor":       processor,
			"completed_at":            completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotPending
	}
	payment.Status = models.PaymentStatusCompleted
	payment.ExternalTransactionID = transactionID
	payment.PaymentProcessor = processor
	payment.CompletedAt = &completedAt
	return nil
}

func (r *PaymentRepository) markTerminal(tx *gorm.DB, payment *models.Payment, status string) error {
	result := tx.Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, models.PaymentStatusPending).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotPending
	}
	payment.Status = status
	return nil
}

func (r *PaymentRepository) MarkFailed(tx *gorm.DB, payment *models.Payment) error {
	return r.markTerminal(tx, payment, models.PaymentStatusFailed)
}

func (r *PaymentRepository) MarkCancelled(tx *gorm.DB, payment *models.Payment) error {
	return r.markTerminal(tx, payment, models.PaymentStatusCancelled)
}
