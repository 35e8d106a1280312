package models

import "time"

const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Income categories.
const (
	CategoryMembershipFees = "membership_fees"
	CategoryShootFees      = "shoot_fees"
	CategoryEquipmentSales = "equipment_sales"
	CategoryDonations      = "donations"
	CategorySponsorship    = "sponsorship"
	CategoryGrants         = "grants"
	CategoryFundraising    = "fundraising"
)

// Expense categories.
const (
	CategoryEquipment             = "equipment"
	CategoryVenueHire             = "venue_hire"
	CategoryInsurance             = "insurance"
	CategorySupplies              = "supplies"
	CategoryMaintenance           = "maintenance"
	CategoryTravel                = "travel"
	CategoryAffiliationFees       = "affiliation_fees"
	CategoryCoaching              = "coaching"
	CategoryPaymentProcessingFees = "payment_processing_fees"
	CategoryOther                 = "other"
)

// FinancialTransaction is an append-only ledger row. Amounts are integer
// cents; decimal formatting happens at the display boundary only.
type FinancialTransaction struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Type             string    `json:"type" gorm:"not null;index"`
	Date             time.Time `json:"date" gorm:"not null;index"`
	AmountCents      int64     `json:"amount_cents" gorm:"not null"`
	Currency         string    `json:"currency" gorm:"not null;default:'EUR'"`
	Category         string    `json:"category" gorm:"not null"`
	Description      string    `json:"description" gorm:"not null"`
	Source           string    `json:"source"`
	ReceiptReference string    `json:"receipt_reference" gorm:"index"`
	CreatedByID      uint      `json:"created_by_id" gorm:"index;not null"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CreateTransactionRequest struct {
	Type             string `json:"type" validate:"required,oneof=income expense"`
	Date             string `json:"date" validate:"required,datetime=2006-01-02"`
	AmountCents      int64  `json:"amount_cents" validate:"required,gt=0"`
	Category         string `json:"category" validate:"required"`
	Description      string `json:"description" validate:"required"`
	Source           string `json:"source"`
	ReceiptReference string `json:"receipt_reference"`
}

type CategoryTotal struct {
	Category   string `json:"category"`
	TotalCents int64  `json:"total_cents"`
	Count      int    `json:"count"`
}

// FinancialStatement is the read-side aggregation over a date range.
type FinancialStatement struct {
	StartDate          time.Time              `json:"start_date"`
	EndDate            time.Time              `json:"end_date"`
	IncomeItems        []FinancialTransaction `json:"income_items"`
	ExpenseItems       []FinancialTransaction `json:"expense_items"`
	IncomeByCategory   []CategoryTotal        `json:"income_by_category"`
	ExpenseByCategory  []CategoryTotal        `json:"expense_by_category"`
	TotalIncomeCents   int64                  `json:"total_income_cents"`
	TotalExpensesCents int64                  `json:"total_expenses_cents"`
	NetCents           int64                  `json:"net_cents"`
}
