package service

import (
	"errors"
	"time"

	"github.com/southeastarchers/club-backend/internal/events"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MembershipService struct {
	db              *gorm.DB
	membershipRepo  *repository.MembershipRepository
	settingsService *SettingsService
	bus             *events.Bus
	logger          *zap.Logger
}

func NewMembershipService(db *gorm.DB, membershipRepo *repository.MembershipRepository, settingsService *SettingsService, bus *events.Bus, logger *zap.Logger) *MembershipService {
	return &MembershipService{
		db:              db,
		membershipRepo:  membershipRepo,
		settingsService: settingsService,
		bus:             bus,
		logger:          logger,
	}
}

func (s *MembershipService) GetByUserID(userID uint) (*models.Membership, error) {
	membership, err := s.membershipRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("No membership found.")
		}
		return nil, err
	}
	return membership, nil
}

// createTx writes a new pending membership for a user at signup. The expiry
// and the annual allotment come from the current settings.
func (s *MembershipService) createTx(tx *gorm.DB, userID uint, startDate time.Time) (*models.Membership, error) {
	settings, err := s.settingsService.Get()
	if err != nil {
		return nil, err
	}
	membership := &models.Membership{
		UserID:         userID,
		Status:         models.MembershipStatusPending,
		StartDate:      startDate,
		ExpiryDate:     CalculateMembershipExpiry(startDate, settings),
		InitialCredits: settings.MembershipShootsIncluded,
	}
	if err := s.membershipRepo.Create(tx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// Activate transitions a pending membership to active. Activating a missing
// or already-active membership is a recoverable failure with a distinct
// message, never a crash.
func (s *MembershipService) Activate(userID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.activateTx(tx, userID)
	})
	if err != nil {
		return err
	}
	s.bus.Publish(events.MembershipActivated, events.Payload{UserID: userID})
	return nil
}

func (s *MembershipService) activateTx(tx *gorm.DB, userID uint) error {
	membership, err := s.membershipRepo.GetByUserIDForUpdate(tx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("No membership found.")
		}
		return err
	}
	if membership.Status == models.MembershipStatusActive {
		return NewValidationError("Membership is already active.")
	}
	if membership.Status != models.MembershipStatusPending {
		return NewValidationError("Membership cannot be activated from its current state.")
	}
	membership.Status = models.MembershipStatusActive
	return s.membershipRepo.Save(tx, membership)
}

// Renew starts a fresh membership year: today becomes the start date, the
// expiry is recomputed, the used counter resets and the annual allotment is
// granted again. Purchased credits are untouched — they never expire.
func (s *MembershipService) Renew(userID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.renewTx(tx, userID, time.Now().UTC())
	})
	if err != nil {
		return err
	}
	s.bus.Publish(events.MembershipActivated, events.Payload{UserID: userID})
	return nil
}

func (s *MembershipService) renewTx(tx *gorm.DB, userID uint, now time.Time) error {
	membership, err := s.membershipRepo.GetByUserIDForUpdate(tx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("No membership to renew.")
		}
		return err
	}
	if membership.Status == models.MembershipStatusCancelled {
		return NewValidationError("A cancelled membership cannot be renewed.")
	}

	settings, err := s.settingsService.Get()
	if err != nil {
		return err
	}
	membership.StartDate = now
	membership.ExpiryDate = CalculateMembershipExpiry(now, settings)
	membership.InitialCredits = settings.MembershipShootsIncluded
	membership.UsedCredits = 0
	membership.Status = models.MembershipStatusActive
	return s.membershipRepo.Save(tx, membership)
}

// activateOrRenewTx is the membership side effect of a completed membership
// payment: a pending membership is activated, an existing one starts a new
// year, and a user with no membership row gets a fresh active one.
func (s *MembershipService) activateOrRenewTx(tx *gorm.DB, userID uint, now time.Time) error {
	membership, err := s.membershipRepo.GetByUserIDForUpdate(tx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created, err := s.createTx(tx, userID, now)
			if err != nil {
				return err
			}
			created.Status = models.MembershipStatusActive
			return s.membershipRepo.Save(tx, created)
		}
		return err
	}
	if membership.Status == models.MembershipStatusPending {
		membership.Status = models.MembershipStatusActive
		return s.membershipRepo.Save(tx, membership)
	}
	return s.renewTx(tx, userID, now)
}

func (s *MembershipService) Cancel(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		membership, err := s.membershipRepo.GetByUserIDForUpdate(tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewValidationError("No membership found.")
			}
			return err
		}
		if membership.Status == models.MembershipStatusCancelled {
			return NewValidationError("Membership is already cancelled.")
		}
		membership.Status = models.MembershipStatusCancelled
		return s.membershipRepo.Save(tx, membership)
	})
}

// ExpireInitialCreditsForYearEnd forfeits the unused annual allotment of
// every active membership whose expiry date has passed. Purchased and used
// counters are untouched and the status stays active: credit expiry is
// distinct from membership expiry. Driven by an external daily trigger.
func (s *MembershipService) ExpireInitialCreditsForYearEnd() (int, error) {
	var count int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		count, err = s.membershipRepo.ForfeitExpiredInitialCredits(tx, time.Now().UTC())
		return err
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("expired initial credits for year end", zap.Int64("memberships", count))
	}
	return int(count), nil
}

func (s *MembershipService) GetExpiringSoon(days int) ([]models.Membership, error) {
	return s.membershipRepo.GetExpiringSoon(time.Now().UTC(), days)
}
