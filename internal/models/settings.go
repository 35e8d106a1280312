package models

import "time"

// ApplicationSettings is a singleton row (only one record should exist).
// Prices are integer cents. StripeFeePercentage is nullable: nil means the
// fee split is not configured and online ledger recording must refuse.
type ApplicationSettings struct {
	ID                       uint      `json:"id" gorm:"primaryKey"`
	MembershipYearStartMonth int       `json:"membership_year_start_month" gorm:"not null;default:3"`
	MembershipYearStartDay   int       `json:"membership_year_start_day" gorm:"not null;default:1"`
	AnnualMembershipCost     int64     `json:"annual_membership_cost" gorm:"not null;default:10000"`
	MembershipShootsIncluded int       `json:"membership_shoots_included" gorm:"not null;default:20"`
	AdditionalShootCost      int64     `json:"additional_shoot_cost" gorm:"not null;default:500"`
	VisitorShootFee          int64     `json:"visitor_shoot_fee" gorm:"not null;default:1000"`
	CashPaymentInstructions  string    `json:"cash_payment_instructions" gorm:"not null;default:'Please pay cash to a committee member at the next shoot night.'"`
	StripeFeePercentage      *float64  `json:"stripe_fee_percentage" gorm:"type:decimal(5,2)"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

type UpdateSettingsRequest struct {
	MembershipYearStartMonth int      `json:"membership_year_start_month" validate:"required,min=1,max=12"`
	MembershipYearStartDay   int      `json:"membership_year_start_day" validate:"required,min=1,max=31"`
	AnnualMembershipCost     int64    `json:"annual_membership_cost" validate:"required,gt=0"`
	MembershipShootsIncluded int      `json:"membership_shoots_included" validate:"required,gte=0"`
	AdditionalShootCost      int64    `json:"additional_shoot_cost" validate:"required,gt=0"`
	VisitorShootFee          int64    `json:"visitor_shoot_fee" validate:"required,gte=0"`
	CashPaymentInstructions  string   `json:"cash_payment_instructions"`
	StripeFeePercentage      *float64 `json:"stripe_fee_percentage" validate:"omitempty,gte=0,lte=100"`
}
