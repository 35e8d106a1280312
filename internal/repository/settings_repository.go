package repository

import (
	"errors"

	"github.com/southeastarchers/club-backend/internal/models"
	"gorm.io/gorm"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{
		db: db,
	}
}

// Get returns the singleton settings row, creating it with defaults on
// first access.
func (r *SettingsRepository) Get() (*models.ApplicationSettings, error) {
	var settings models.ApplicationSettings
	err := r.db.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.ApplicationSettings{
			MembershipYearStartMonth: 3,
			MembershipYearStartDay:   1,
			AnnualMembershipCost:     10000,
			MembershipShootsIncluded: 20,
			AdditionalShootCost:      500,
			VisitorShootFee:          1000,
			CashPaymentInstructions:  "Please pay cash to a committee member at the next shoot night.",
		}
		if err := r.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepository) Save(settings *models.ApplicationSettings) error {
	return r.db.Save(settings).Error
}
