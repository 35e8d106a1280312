package models

import (
	"time"
)

type User struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	FullName   string      `json:"full_name" gorm:"not null"`
	Email      string      `json:"email" gorm:"unique;not null"`
	Password   string      `json:"-" gorm:"not null"`
	IsAdmin    bool        `json:"is_admin" gorm:"not null;default:false"`
	IsActive   bool        `json:"is_active" gorm:"not null;default:true"`
	Membership *Membership `json:"membership,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
