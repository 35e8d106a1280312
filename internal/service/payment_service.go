package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/southeastarchers/club-backend/internal/events"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CheckoutGateway is the narrow slice of the online payment provider the
// core needs: open a checkout, nothing else. Card handling stays on the
// provider's side entirely.
type CheckoutGateway interface {
	CreateCheckout(amountCents int64, currency, description, reference string) (*models.CheckoutSession, error)
}

type PaymentService struct {
	db                *gorm.DB
	paymentRepo       *repository.PaymentRepository
	membershipService *MembershipService
	creditService     *CreditService
	financeService    *FinanceService
	settingsService   *SettingsService
	gateway           CheckoutGateway
	bus               *events.Bus
	logger            *zap.Logger
}

func NewPaymentService(db *gorm.DB, paymentRepo *repository.PaymentRepository, membershipService *MembershipService, creditService *CreditService, financeService *FinanceService, settingsService *SettingsService, gateway CheckoutGateway, bus *events.Bus, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		db:                db,
		paymentRepo:       paymentRepo,
		membershipService: membershipService,
		creditService:     creditService,
		financeService:    financeService,
		settingsService:   settingsService,
		gateway:           gateway,
		bus:               bus,
		logger:            logger,
	}
}

// CreateMembershipCheckout opens an online checkout for the annual
// membership fee and records the pending payment it will settle.
func (s *PaymentService) CreateMembershipCheckout(userID uint) (*models.CheckoutSession, error) {
	settings, err := s.settingsService.Get()
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:            userID,
		AmountCents:       settings.AnnualMembershipCost,
		PaymentType:       models.PaymentTypeMembership,
		PaymentMethod:     models.PaymentMethodOnline,
		Status:            models.PaymentStatusPending,
		Description:       "Annual membership fee",
		CheckoutReference: uuid.NewString(),
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckout(payment.AmountCents, payment.Currency, payment.Description, payment.CheckoutReference)
	if err != nil {
		s.logger.Error("checkout creation failed", zap.Uint("payment_id", payment.ID), zap.Error(err))
		return nil, err
	}
	session.PaymentID = payment.ID
	return session, nil
}

// CreateCreditCheckout opens an online checkout for a credit top-up.
func (s *PaymentService) CreateCreditCheckout(userID uint, quantity int) (*models.CheckoutSession, error) {
	if quantity <= 0 {
		return nil, NewValidationError("Credit quantity must be positive.")
	}
	settings, err := s.settingsService.Get()
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:            userID,
		AmountCents:       settings.AdditionalShootCost * int64(quantity),
		PaymentType:       models.PaymentTypeCredits,
		PaymentMethod:     models.PaymentMethodOnline,
		Status:            models.PaymentStatusPending,
		Description:       fmt.Sprintf("Purchase of %d shoot credits", quantity),
		Quantity:          quantity,
		CheckoutReference: uuid.NewString(),
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckout(payment.AmountCents, payment.Currency, payment.Description, payment.CheckoutReference)
	if err != nil {
		s.logger.Error("checkout creation failed", zap.Uint("payment_id", payment.ID), zap.Error(err))
		return nil, err
	}
	session.PaymentID = payment.ID
	return session, nil
}

// SubmitCashPayment records the member's intent to pay cash. The payment
// stays pending until an admin confirms receipt; the notifier picks up the
// submission event to mail the payment instructions.
func (s *PaymentService) SubmitCashPayment(userID uint, paymentType string, quantity int) (*models.Payment, string, error) {
	settings, err := s.settingsService.Get()
	if err != nil {
		return nil, "", err
	}

	payment := &models.Payment{
		UserID:        userID,
		PaymentMethod: models.PaymentMethodCash,
		Status:        models.PaymentStatusPending,
	}
	switch paymentType {
	case models.PaymentTypeMembership:
		payment.PaymentType = models.PaymentTypeMembership
		payment.AmountCents = settings.AnnualMembershipCost
		payment.Description = "Annual membership fee (cash)"
	case models.PaymentTypeCredits:
		if quantity <= 0 {
			return nil, "", NewValidationError("Credit quantity must be positive.")
		}
		payment.PaymentType = models.PaymentTypeCredits
		payment.AmountCents = settings.AdditionalShootCost * int64(quantity)
		payment.Quantity = quantity
		payment.Description = fmt.Sprintf("Purchase of %d shoot credits (cash)", quantity)
	default:
		return nil, "", NewValidationError("Unknown payment type.")
	}

	// One pending cash payment per type at a time; resubmitting would stack
	// duplicates an admin could confirm twice.
	if _, err := s.paymentRepo.GetPendingCashForUser(userID, payment.PaymentType); err == nil {
		return nil, "", NewValidationError("You already have a pending cash payment for this.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, "", err
	}

	s.bus.Publish(events.CashPaymentSubmitted, events.Payload{
		UserID:    userID,
		PaymentID: payment.ID,
		Quantity:  payment.Quantity,
	})
	return payment, settings.CashPaymentInstructions, nil
}

// HandleCheckoutCompleted settles an online payment identified by its
// checkout reference, carrying the processor's transaction id.
func (s *PaymentService) HandleCheckoutCompleted(reference, transactionID string) error {
	payment, err := s.paymentRepo.GetByCheckoutReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("No payment found for this checkout.")
		}
		return err
	}
	return s.complete(payment, &transactionID, "Stripe")
}

// HandleCheckoutFailed marks the pending payment behind a failed or expired
// checkout as failed. Repeated deliveries are ignored.
func (s *PaymentService) HandleCheckoutFailed(reference string) error {
	payment, err := s.paymentRepo.GetByCheckoutReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("No payment found for this checkout.")
		}
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.paymentRepo.MarkFailed(tx, payment)
	})
	if errors.Is(err, repository.ErrPaymentNotPending) {
		return nil
	}
	return err
}

// ConfirmCashPayment is the admin acknowledging cash in hand. It drives the
// same completion pipeline as an online settlement.
func (s *PaymentService) ConfirmCashPayment(paymentID uint) error {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("Payment not found.")
		}
		return err
	}
	if payment.PaymentMethod != models.PaymentMethodCash {
		return NewValidationError("Only cash payments can be confirmed manually.")
	}
	if payment.IsTerminal() {
		return NewValidationError("Payment has already been processed.")
	}
	return s.complete(payment, nil, "Cash")
}

func (s *PaymentService) CancelPayment(paymentID uint) error {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("Payment not found.")
		}
		return err
	}
	if payment.IsTerminal() {
		return NewValidationError("Payment has already been processed.")
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.paymentRepo.MarkCancelled(tx, payment)
	})
	if errors.Is(err, repository.ErrPaymentNotPending) {
		return NewValidationError("Payment has already been processed.")
	}
	return err
}

// complete is the single settlement path for every payment. One transaction
// covers the status flip, the membership or credit side effect and the
// ledger rows; either the full sequence commits or none of it does. Events
// fire only after the commit so a notifier failure can never roll back or
// block the ledger write.
func (s *PaymentService) complete(payment *models.Payment, transactionID *string, processor string) error {
	now := time.Now().UTC()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.MarkCompleted(tx, payment, transactionID, processor, now); err != nil {
			if errors.Is(err, repository.ErrPaymentNotPending) {
				return NewValidationError("Payment has already been processed.")
			}
			return err
		}

		switch payment.PaymentType {
		case models.PaymentTypeMembership:
			if err := s.membershipService.activateOrRenewTx(tx, payment.UserID, now); err != nil {
				return err
			}
		case models.PaymentTypeCredits:
			if err := s.creditService.addCreditsForUserTx(tx, payment.UserID, payment.Quantity, &payment.ID, "Credit purchase"); err != nil {
				return err
			}
		default:
			return NewValidationError("Unknown payment type.")
		}

		return s.financeService.recordForCompletedPaymentTx(tx, payment)
	})
	if err != nil {
		s.logger.Warn("payment completion rolled back",
			zap.Uint("payment_id", payment.ID),
			zap.Error(err),
		)
		return err
	}

	s.bus.Publish(events.PaymentCompleted, events.Payload{UserID: payment.UserID, PaymentID: payment.ID})
	switch payment.PaymentType {
	case models.PaymentTypeMembership:
		s.bus.Publish(events.MembershipActivated, events.Payload{UserID: payment.UserID, PaymentID: payment.ID})
	case models.PaymentTypeCredits:
		s.bus.Publish(events.CreditPurchased, events.Payload{UserID: payment.UserID, PaymentID: payment.ID, Quantity: payment.Quantity})
	}
	return nil
}

func (s *PaymentService) GetUserPayments(userID uint) ([]models.Payment, error) {
	return s.paymentRepo.GetUserPayments(userID)
}

func (s *PaymentService) GetPendingCashPayments() ([]models.Payment, error) {
	return s.paymentRepo.GetPendingCashPayments()
}
