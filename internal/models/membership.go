package models

import (
	"time"
)

const (
	MembershipStatusPending   = "pending"
	MembershipStatusActive    = "active"
	MembershipStatusExpired   = "expired"
	MembershipStatusCancelled = "cancelled"
)

// Membership is the 1:1 record of a user's club membership. The credit
// balance is derived from three counters: InitialCredits is the annual
// allotment (reset on renewal, forfeited at year end), PurchasedCredits
// only ever grows via top-ups, UsedCredits only ever grows via attendance.
type Membership struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Status           string    `json:"status" gorm:"not null;default:'pending';index"`
	StartDate        time.Time `json:"start_date" gorm:"not null"`
	ExpiryDate       time.Time `json:"expiry_date" gorm:"not null;index"`
	InitialCredits   int       `json:"initial_credits" gorm:"not null;default:0"`
	PurchasedCredits int       `json:"purchased_credits" gorm:"not null;default:0"`
	UsedCredits      int       `json:"used_credits" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreditsRemaining may be negative after an allow-negative booking,
// never silently clamped.
func (m *Membership) CreditsRemaining() int {
	return m.InitialCredits + m.PurchasedCredits - m.UsedCredits
}

func (m *Membership) IsActive(now time.Time) bool {
	return m.Status == MembershipStatusActive && !m.ExpiryDate.Before(now)
}
