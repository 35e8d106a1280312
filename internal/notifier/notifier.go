package notifier

import (
	"github.com/southeastarchers/club-backend/internal/events"
	"github.com/southeastarchers/club-backend/internal/repository"
	"github.com/southeastarchers/club-backend/pkg/email"
	"go.uber.org/zap"
)

// Notifier is the only consumer of the domain events the core publishes.
// It resolves the primitive ids in each payload back to records and sends
// the matching email. Every failure is logged and swallowed; nothing here
// can reach back into the publisher.
type Notifier struct {
	emailService *email.EmailService
	userRepo     *repository.UserRepository
	paymentRepo  *repository.PaymentRepository
	settingsRepo *repository.SettingsRepository
	logger       *zap.Logger
}

func New(emailService *email.EmailService, userRepo *repository.UserRepository, paymentRepo *repository.PaymentRepository, settingsRepo *repository.SettingsRepository, logger *zap.Logger) *Notifier {
	return &Notifier{
		emailService: emailService,
		userRepo:     userRepo,
		paymentRepo:  paymentRepo,
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// Register wires the notifier onto the event bus.
func (n *Notifier) Register(bus *events.Bus) {
	bus.Subscribe(events.UserRegistered, n.onUserRegistered)
	bus.Subscribe(events.PaymentCompleted, n.onPaymentCompleted)
	bus.Subscribe(events.CreditPurchased, n.onCreditPurchased)
	bus.Subscribe(events.CashPaymentSubmitted, n.onCashPaymentSubmitted)
}

func (n *Notifier) onUserRegistered(event string, payload events.Payload) {
	user, err := n.userRepo.GetByID(payload.UserID)
	if err != nil {
		n.logger.Error("notifier: user lookup failed", zap.String("event", event), zap.Uint("user_id", payload.UserID), zap.Error(err))
		return
	}
	if err := n.emailService.SendWelcomeEmail(user.Email, user.FullName); err != nil {
		n.logger.Error("notifier: welcome email failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

func (n *Notifier) onPaymentCompleted(event string, payload events.Payload) {
	user, err := n.userRepo.GetByID(payload.UserID)
	if err != nil {
		n.logger.Error("notifier: user lookup failed", zap.String("event", event), zap.Uint("user_id", payload.UserID), zap.Error(err))
		return
	}
	payment, err := n.paymentRepo.GetByID(payload.PaymentID)
	if err != nil {
		n.logger.Error("notifier: payment lookup failed", zap.String("event", event), zap.Uint("payment_id", payload.PaymentID), zap.Error(err))
		return
	}
	reference := payment.CheckoutReference
	if payment.ExternalTransactionID != nil {
		reference = *payment.ExternalTransactionID
	}
	if err := n.emailService.SendPaymentReceipt(user.Email, user.FullName, payment.Description, payment.AmountCents, reference); err != nil {
		n.logger.Error("notifier: receipt email failed", zap.Uint("payment_id", payment.ID), zap.Error(err))
	}
}

func (n *Notifier) onCreditPurchased(event string, payload events.Payload) {
	user, err := n.userRepo.GetByID(payload.UserID)
	if err != nil {
		n.logger.Error("notifier: user lookup failed", zap.String("event", event), zap.Uint("user_id", payload.UserID), zap.Error(err))
		return
	}
	payment, err := n.paymentRepo.GetByID(payload.PaymentID)
	if err != nil {
		n.logger.Error("notifier: payment lookup failed", zap.String("event", event), zap.Uint("payment_id", payload.PaymentID), zap.Error(err))
		return
	}
	if err := n.emailService.SendCreditPurchaseReceipt(user.Email, user.FullName, payload.Quantity, payment.AmountCents); err != nil {
		n.logger.Error("notifier: credit receipt email failed", zap.Uint("payment_id", payment.ID), zap.Error(err))
	}
}

func (n *Notifier) onCashPaymentSubmitted(event string, payload events.Payload) {
	user, err := n.userRepo.GetByID(payload.UserID)
	if err != nil {
		n.logger.Error("notifier: user lookup failed", zap.String("event", event), zap.Uint("user_id", payload.UserID), zap.Error(err))
		return
	}
	payment, err := n.paymentRepo.GetByID(payload.PaymentID)
	if err != nil {
		n.logger.Error("notifier: payment lookup failed", zap.String("event", event), zap.Uint("payment_id", payload.PaymentID), zap.Error(err))
		return
	}
	settings, err := n.settingsRepo.Get()
	if err != nil {
		n.logger.Error("notifier: settings lookup failed", zap.String("event", event), zap.Error(err))
		return
	}
	if err := n.emailService.SendCashPaymentPending(user.Email, user.FullName, payment.Description, settings.CashPaymentInstructions); err != nil {
		n.logger.Error("notifier: cash pending email failed", zap.Uint("payment_id", payment.ID), zap.Error(err))
	}
}
