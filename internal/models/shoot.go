package models

import "time"

// Shoot is a recorded club session. Attendance consumes one credit per
// member; removing an attendee on edit restores it.
type Shoot struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Date        time.Time `json:"date" gorm:"not null;index"`
	Location    string    `json:"location" gorm:"not null"`
	Description string    `json:"description"`
	Attendees   []User    `json:"attendees,omitempty" gorm:"many2many:shoot_attendees"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ShootRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Location    string `json:"location" validate:"required"`
	Description string `json:"description"`
	AttendeeIDs []uint `json:"attendee_ids"`
	// AllowNegative lets admin bulk recording push balances below zero
	// with a warning instead of skipping the attendee.
	AllowNegative bool `json:"allow_negative"`
}
