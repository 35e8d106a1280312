package service

import (
	"errors"

	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreditService owns the credit balance of a membership. The balance is
// derived from three counters on one row, so every mutation runs under a
// row lock: two concurrent bookings must never both spend the last credit.
type CreditService struct {
	db             *gorm.DB
	membershipRepo *repository.MembershipRepository
	creditRepo     *repository.CreditRepository
	logger         *zap.Logger
}

func NewCreditService(db *gorm.DB, membershipRepo *repository.MembershipRepository, creditRepo *repository.CreditRepository, logger *zap.Logger) *CreditService {
	return &CreditService{
		db:             db,
		membershipRepo: membershipRepo,
		creditRepo:     creditRepo,
		logger:         logger,
	}
}

func (s *CreditService) CreditsRemaining(userID uint) (int, error) {
	membership, err := s.membershipRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, NewValidationError("No membership found.")
		}
		return 0, err
	}
	return membership.CreditsRemaining(), nil
}

// UseCredit consumes one credit. It returns false, with no mutation, when
// the balance is empty and allowNegative is not set. With allowNegative the
// booking always succeeds and the resulting balance may go below zero; the
// caller reports that as a warning, not an error.
func (s *CreditService) UseCredit(userID uint, allowNegative bool) (bool, int, error) {
	var used bool
	var remaining int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		membership, err := s.membershipRepo.GetByUserIDForUpdate(tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewValidationError("No membership found.")
			}
			return err
		}
		used, err = s.useCreditTx(tx, membership, allowNegative)
		if err != nil {
			return err
		}
		remaining = membership.CreditsRemaining()
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return used, remaining, nil
}

// useCreditTx mutates an already-locked membership. Callers composing larger
// atomic units (shoot recording) use this inside their own transaction.
func (s *CreditService) useCreditTx(tx *gorm.DB, membership *models.Membership, allowNegative bool) (bool, error) {
	if membership.CreditsRemaining() <= 0 && !allowNegative {
		return false, nil
	}
	membership.UsedCredits++
	if err := s.membershipRepo.Save(tx, membership); err != nil {
		return false, err
	}
	if membership.CreditsRemaining() < 0 {
		s.logger.Warn("membership credit balance went negative",
			zap.Uint("user_id", membership.UserID),
			zap.Int("balance", membership.CreditsRemaining()),
		)
	}
	return true, nil
}

// AddCredits raises the purchased counter and writes the immutable top-up
// record in the same transaction.
func (s *CreditService) AddCredits(userID uint, amount int, paymentID *uint, reason string) error {
	if amount <= 0 {
		return NewValidationError("Credit amount must be positive.")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		membership, err := s.membershipRepo.GetByUserIDForUpdate(tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewValidationError("No membership found.")
			}
			return err
		}
		return s.addCreditsTx(tx, membership, amount, paymentID, reason)
	})
}

// addCreditsForUserTx locks the membership row and applies a top-up inside
// the caller's transaction. Used by the payment completion pipeline.
func (s *CreditService) addCreditsForUserTx(tx *gorm.DB, userID uint, amount int, paymentID *uint, reason string) error {
	if amount <= 0 {
		return NewValidationError("Credit amount must be positive.")
	}
	membership, err := s.membershipRepo.GetByUserIDForUpdate(tx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("No membership found.")
		}
		return err
	}
	return s.addCreditsTx(tx, membership, amount, paymentID, reason)
}

func (s *CreditService) addCreditsTx(tx *gorm.DB, membership *models.Membership, amount int, paymentID *uint, reason string) error {
	membership.PurchasedCredits += amount
	if err := s.membershipRepo.Save(tx, membership); err != nil {
		return err
	}
	credit := &models.Credit{
		UserID:    membership.UserID,
		Amount:    amount,
		PaymentID: paymentID,
		Reason:    reason,
	}
	return s.creditRepo.Create(tx, credit)
}

// RestoreCredit un-uses credits when an attendee is removed from a recorded
// session. UsedCredits is clamped at zero: restoring more than was used is a
// caller bug, not a valid ledger state.
func (s *CreditService) RestoreCredit(userID uint, amount int) error {
	if amount <= 0 {
		return NewValidationError("Restore amount must be positive.")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		membership, err := s.membershipRepo.GetByUserIDForUpdate(tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewValidationError("No membership found.")
			}
			return err
		}
		return s.restoreCreditTx(tx, membership, amount)
	})
}

func (s *CreditService) restoreCreditTx(tx *gorm.DB, membership *models.Membership, amount int) error {
	membership.UsedCredits -= amount
	if membership.UsedCredits < 0 {
		membership.UsedCredits = 0
	}
	return s.membershipRepo.Save(tx, membership)
}

func (s *CreditService) GetPurchaseHistory(userID uint) ([]models.Credit, error) {
	return s.creditRepo.GetByUserID(userID)
}
