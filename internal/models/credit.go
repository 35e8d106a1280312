package models

import "time"

// Credit is the immutable record of a purchased top-up. It is never updated
// after creation; the membership's PurchasedCredits counter is bumped in the
// same transaction that writes this row.
type Credit struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Amount    int       `json:"amount" gorm:"not null;default:1"`
	PaymentID *uint     `json:"payment_id" gorm:"index"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
