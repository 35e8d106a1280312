package repository

import (
	"github.com/southeastarchers/club-backend/internal/models"
	"gorm.io/gorm"
)

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{
		db: db,
	}
}

func (r *CreditRepository) Create(tx *gorm.DB, credit *models.Credit) error {
	return tx.Create(credit).Error
}

func (r *CreditRepository) GetByUserID(userID uint) ([]models.Credit, error) {
	var credits []models.Credit
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&credits).Error
	return credits, err
}

// TotalPurchased recomputes the purchased-credit aggregate from the audit
// rows. Used to cross-check the membership counter, not to serve reads.
func (r *CreditRepository) TotalPurchased(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.Credit{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
