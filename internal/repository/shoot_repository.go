package repository

import (
	"github.com/southeastarchers/club-backend/internal/models"
	"gorm.io/gorm"
)

type ShootRepository struct {
	db *gorm.DB
}

func NewShootRepository(db *gorm.DB) *ShootRepository {
	return &ShootRepository{
		db: db,
	}
}

func (r *ShootRepository) Create(tx *gorm.DB, shoot *models.Shoot) error {
	return tx.Create(shoot).Error
}

func (r *ShootRepository) Save(tx *gorm.DB, shoot *models.Shoot) error {
	return tx.Save(shoot).Error
}

func (r *ShootRepository) GetByID(id uint) (*models.Shoot, error) {
	var shoot models.Shoot
	err := r.db.Preload("Attendees").First(&shoot, id).Error
	return &shoot, err
}

func (r *ShootRepository) GetAll() ([]models.Shoot, error) {
	var shoots []models.Shoot
	err := r.db.Preload("Attendees").
		Order("date DESC").
		Find(&shoots).Error
	return shoots, err
}

func (r *ShootRepository) AddAttendee(tx *gorm.DB, shoot *models.Shoot, user *models.User) error {
	return tx.Model(shoot).Association("Attendees").Append(user)
}

func (r *ShootRepository) RemoveAttendee(tx *gorm.DB, shoot *models.Shoot, user *models.User) error {
	return tx.Model(shoot).Association("Attendees").Delete(user)
}
