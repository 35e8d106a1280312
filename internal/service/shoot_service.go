package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShootService records club sessions and keeps attendee credits in step:
// adding an attendee spends a credit, removing one restores it, all within
// the shoot's transaction.
type ShootService struct {
	db             *gorm.DB
	shootRepo      *repository.ShootRepository
	userRepo       *repository.UserRepository
	membershipRepo *repository.MembershipRepository
	creditService  *CreditService
	logger         *zap.Logger
}

func NewShootService(db *gorm.DB, shootRepo *repository.ShootRepository, userRepo *repository.UserRepository, membershipRepo *repository.MembershipRepository, creditService *CreditService, logger *zap.Logger) *ShootService {
	return &ShootService{
		db:             db,
		shootRepo:      shootRepo,
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		creditService:  creditService,
		logger:         logger,
	}
}

// CreateShoot records a session and books a credit for every attendee.
// Members who cannot pay are skipped with a warning rather than failing the
// whole recording; with AllowNegative set (admin bulk recording) the booking
// goes through and the negative balance is the warning.
func (s *ShootService) CreateShoot(req models.ShootRequest) (*models.Shoot, []string, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, nil, NewValidationError("Invalid shoot date.")
	}

	var warnings []string
	shoot := &models.Shoot{
		Date:        date,
		Location:    req.Location,
		Description: req.Description,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.shootRepo.Create(tx, shoot); err != nil {
			return err
		}
		for _, userID := range req.AttendeeIDs {
			warning, err := s.bookAttendeeTx(tx, shoot, userID, req.AllowNegative)
			if err != nil {
				return err
			}
			if warning != "" {
				warnings = append(warnings, warning)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return shoot, warnings, nil
}

// UpdateShoot edits a session. Credits are restored for removed attendees
// and spent for added ones; unchanged attendees keep their booking.
func (s *ShootService) UpdateShoot(shootID uint, req models.ShootRequest) (*models.Shoot, []string, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, nil, NewValidationError("Invalid shoot date.")
	}
	shoot, err := s.shootRepo.GetByID(shootID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewValidationError("Shoot not found.")
		}
		return nil, nil, err
	}

	requested := make(map[uint]bool, len(req.AttendeeIDs))
	for _, id := range req.AttendeeIDs {
		requested[id] = true
	}
	current := make(map[uint]bool, len(shoot.Attendees))
	for _, attendee := range shoot.Attendees {
		current[attendee.ID] = true
	}

	var warnings []string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, attendee := range shoot.Attendees {
			if requested[attendee.ID] {
				continue
			}
			membership, err := s.membershipRepo.GetByUserIDForUpdate(tx, attendee.ID)
			if err == nil {
				if err := s.creditService.restoreCreditTx(tx, membership, 1); err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			user := attendee
			if err := s.shootRepo.RemoveAttendee(tx, shoot, &user); err != nil {
				return err
			}
		}

		for _, userID := range req.AttendeeIDs {
			if current[userID] {
				continue
			}
			warning, err := s.bookAttendeeTx(tx, shoot, userID, req.AllowNegative)
			if err != nil {
				return err
			}
			if warning != "" {
				warnings = append(warnings, warning)
			}
		}

		shoot.Date = date
		shoot.Location = req.Location
		shoot.Description = req.Description
		shoot.Attendees = nil
		return s.shootRepo.Save(tx, shoot)
	})
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.shootRepo.GetByID(shootID)
	if err != nil {
		return nil, nil, err
	}
	return updated, warnings, nil
}

// bookAttendeeTx spends one credit and appends the attendee. A non-empty
// warning means the attendee was skipped or went negative; only storage
// failures abort the transaction.
func (s *ShootService) bookAttendeeTx(tx *gorm.DB, shoot *models.Shoot, userID uint, allowNegative bool) (string, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Sprintf("User %d not found.", userID), nil
		}
		return "", err
	}

	membership, err := s.membershipRepo.GetByUserIDForUpdate(tx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Sprintf("%s has no membership.", user.FullName), nil
		}
		return "", err
	}

	used, err := s.creditService.useCreditTx(tx, membership, allowNegative)
	if err != nil {
		return "", err
	}
	if !used {
		return fmt.Sprintf("%s has no credits remaining.", user.FullName), nil
	}
	if err := s.shootRepo.AddAttendee(tx, shoot, user); err != nil {
		return "", err
	}
	if membership.CreditsRemaining() < 0 {
		return fmt.Sprintf("%s now has a negative credit balance (%d).", user.FullName, membership.CreditsRemaining()), nil
	}
	return "", nil
}

func (s *ShootService) GetShootByID(id uint) (*models.Shoot, error) {
	shoot, err := s.shootRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("Shoot not found.")
		}
		return nil, err
	}
	return shoot, nil
}

func (s *ShootService) GetAllShoots() ([]models.Shoot, error) {
	return s.shootRepo.GetAll()
}
