package repository

import (
	"time"

	"github.com/southeastarchers/club-backend/internal/models"
	"gorm.io/gorm"
)

type FinancialTransactionRepository struct {
	db *gorm.DB
}

func NewFinancialTransactionRepository(db *gorm.DB) *FinancialTransactionRepository {
	return &FinancialTransactionRepository{
		db: db,
	}
}

func (r *FinancialTransactionRepository) Create(tx *gorm.DB, transaction *models.FinancialTransaction) error {
	return tx.Create(transaction).Error
}

func (r *FinancialTransactionRepository) GetByID(id uint) (*models.FinancialTransaction, error) {
	var transaction models.FinancialTransaction
	err := r.db.First(&transaction, id).Error
	return &transaction, err
}

func (r *FinancialTransactionRepository) Update(transaction *models.FinancialTransaction) error {
	return r.db.Save(transaction).Error
}

func (r *FinancialTransactionRepository) Delete(id uint) error {
	return r.db.Delete(&models.FinancialTransaction{}, id).Error
}

func (r *FinancialTransactionRepository) GetAll() ([]models.FinancialTransaction, error) {
	var transactions []models.FinancialTransaction
	err := r.db.Order("date DESC, id DESC").Find(&transactions).Error
	return transactions, err
}

func (r *FinancialTransactionRepository) GetByType(txnType string) ([]models.FinancialTransaction, error) {
	var transactions []models.FinancialTransaction
	err := r.db.Where("type = ?", txnType).
		Order("date DESC, id DESC").
		Find(&transactions).Error
	return transactions, err
}

// GetByDateRange returns transactions of one type whose date falls in
// [start, end] inclusive.
func (r *FinancialTransactionRepository) GetByDateRange(start, end time.Time, txnType string) ([]models.FinancialTransaction, error) {
	var transactions []models.FinancialTransaction
	err := r.db.Where("type = ? AND date >= ? AND date <= ?", txnType, start, end).
		Order("date, id").
		Find(&transactions).Error
	return transactions, err
}

func (r *FinancialTransactionRepository) GetByReceiptReference(reference string) ([]models.FinancialTransaction, error) {
	var transactions []models.FinancialTransaction
	err := r.db.Where("receipt_reference = ?", reference).
		Order("id").
		Find(&transactions).Error
	return transactions, err
}
