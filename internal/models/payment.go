package models

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"

	PaymentTypeMembership = "membership"
	PaymentTypeCredits    = "credits"

	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
)

// Payment is one row per attempted payment. Status moves from pending to
// exactly one terminal state and never again; ExternalTransactionID and
// CompletedAt are set once at completion.
type Payment struct {
	ID                    uint       `json:"id" gorm:"primaryKey"`
	UserID                uint       `json:"user_id" gorm:"index;not null"`
	AmountCents           int64      `json:"amount_cents" gorm:"not null"`
	Currency              string     `json:"currency" gorm:"not null;default:'EUR'"`
	PaymentType           string     `json:"payment_type" gorm:"not null"`
	PaymentMethod         string     `json:"payment_method" gorm:"not null;default:'online'"`
	Status                string     `json:"status" gorm:"not null;default:'pending';index"`
	Description           string     `json:"description"`
	Quantity              int        `json:"quantity" gorm:"not null;default:0"`
	PaymentProcessor      string     `json:"payment_processor"`
	ExternalTransactionID *string    `json:"external_transaction_id" gorm:"uniqueIndex"`
	CheckoutReference     string     `json:"checkout_reference" gorm:"index"`
	CompletedAt           *time.Time `json:"completed_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (p *Payment) IsTerminal() bool {
	return p.Status != PaymentStatusPending
}

type CreateCheckoutRequest struct {
	Quantity int `json:"quantity" validate:"omitempty,min=1,max=100"`
}

type CheckoutSession struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	PaymentID uint   `json:"payment_id"`
	Status    string `json:"status"`
}
