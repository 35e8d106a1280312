package repository

import (
	"time"

	"github.com/southeastarchers/club-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{
		db: db,
	}
}

func (r *MembershipRepository) Create(tx *gorm.DB, membership *models.Membership) error {
	return tx.Create(membership).Error
}

func (r *MembershipRepository) GetByUserID(userID uint) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.Where("user_id = ?", userID).First(&membership).Error
	return &membership, err
}

// GetByUserIDForUpdate takes a row lock so that concurrent credit mutations
// against the same membership serialize. Must be called inside a transaction.
// SQLite has no SELECT FOR UPDATE; its transactions already lock the whole
// database, so the clause is skipped there.
func (r *MembershipRepository) GetByUserIDForUpdate(tx *gorm.DB, userID uint) (*models.Membership, error) {
	query := tx.Where("user_id = ?", userID)
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var membership models.Membership
	err := query.First(&membership).Error
	return &membership, err
}

func (r *MembershipRepository) Save(tx *gorm.DB, membership *models.Membership) error {
	return tx.Save(membership).Error
}

// ForfeitExpiredInitialCredits zeroes the annual allotment of every active
// membership whose expiry has passed. A single targeted UPDATE touching only
// initial_credits, so a concurrent booking's used_credits write on the same
// row can never be overwritten by a stale full-row save.
func (r *MembershipRepository) ForfeitExpiredInitialCredits(tx *gorm.DB, now time.Time) (int64, error) {
	result := tx.Model(&models.Membership{}).
		Where("status = ? AND expiry_date < ? AND initial_credits > 0",
			models.MembershipStatusActive, now).
		Update("initial_credits", 0)
	return result.RowsAffected, result.Error
}

func (r *MembershipRepository) GetExpiringSoon(now time.Time, days int) ([]models.Membership, error) {
	var memberships []models.Membership
	cutoff := now.AddDate(0, 0, days)
	err := r.db.Where("status = ? AND expiry_date >= ? AND expiry_date <= ?",
		models.MembershipStatusActive, now, cutoff).
		Order("expiry_date").
		Find(&memberships).Error
	return memberships, err
}
