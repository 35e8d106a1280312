package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/southeastarchers/club-backend/internal/events"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/repository"
	"github.com/southeastarchers/club-backend/pkg/bcrypt"
	jwtPkg "github.com/southeastarchers/club-backend/pkg/jwt"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reset tokens are short-lived; login token expiry lives in pkg/jwt.
const TokenExpiryReset = 15 * time.Minute

type AuthService struct {
	db                *gorm.DB
	userRepo          *repository.UserRepository
	paymentRepo       *repository.PaymentRepository
	membershipService *MembershipService
	settingsService   *SettingsService
	bus               *events.Bus
	logger            *zap.Logger
	jwtSecret         []byte
}

func NewAuthService(db *gorm.DB, userRepo *repository.UserRepository, paymentRepo *repository.PaymentRepository, membershipService *MembershipService, settingsService *SettingsService, bus *events.Bus, logger *zap.Logger) *AuthService {
	return &AuthService{
		db:                db,
		userRepo:          userRepo,
		paymentRepo:       paymentRepo,
		membershipService: membershipService,
		settingsService:   settingsService,
		bus:               bus,
		logger:            logger,
		jwtSecret:         []byte(os.Getenv("JWT_SECRET")),
	}
}

// Register signs up a new member: the user row and a pending membership are
// created as one unit. A cash registrant also gets the pending
// membership-fee payment recorded for the admin to confirm; an online
// registrant's payment row is created later when their checkout opens, so
// exactly one pending payment ever exists per fee. The membership stays
// pending until the fee settles.
func (s *AuthService) Register(req models.RegisterRequest) (*models.AuthResponse, *models.Payment, error) {
	exists, err := s.userRepo.EmailExists(req.Email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, NewValidationError("An account with this email already exists.")
	}

	hashedPassword, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Password: hashedPassword,
	}
	var payment *models.Payment

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.CreateTx(tx, user); err != nil {
			return err
		}
		if _, err := s.membershipService.createTx(tx, user.ID, time.Now().UTC()); err != nil {
			return err
		}
		if req.PaymentMethod != models.PaymentMethodCash {
			return nil
		}
		settings, err := s.settingsService.Get()
		if err != nil {
			return err
		}
		payment = &models.Payment{
			UserID:        user.ID,
			AmountCents:   settings.AnnualMembershipCost,
			PaymentType:   models.PaymentTypeMembership,
			PaymentMethod: models.PaymentMethodCash,
			Status:        models.PaymentStatusPending,
			Description:   "Annual membership fee",
		}
		return s.paymentRepo.CreateTx(tx, payment)
	})
	if err != nil {
		return nil, nil, err
	}

	s.bus.Publish(events.UserRegistered, events.Payload{UserID: user.ID})
	if payment != nil {
		s.bus.Publish(events.CashPaymentSubmitted, events.Payload{UserID: user.ID, PaymentID: payment.ID})
	}

	token, err := jwtPkg.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return &models.AuthResponse{Token: token, User: *user}, payment, nil
}

func (s *AuthService) Login(req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewValidationError("Invalid email or password.")
		}
		return nil, err
	}
	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		return nil, NewValidationError("Invalid email or password.")
	}
	if !user.IsActive {
		return nil, NewValidationError("This account has been disabled.")
	}

	token, err := jwtPkg.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}

// GeneratePasswordResetToken issues a short-lived token for the reset link.
func (s *AuthService) GeneratePasswordResetToken(email string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", NewValidationError("No account found for this email.")
		}
		return "", err
	}

	claims := jwt.MapClaims{
		"sub":     user.Email,
		"user_id": user.ID,
		"purpose": "password_reset",
		"exp":     time.Now().Add(TokenExpiryReset).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ResetPassword(tokenString, newPassword string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return NewValidationError("Invalid or expired reset token.")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != "password_reset" {
		return NewValidationError("Invalid or expired reset token.")
	}
	email, _ := claims["sub"].(string)

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return NewValidationError("Invalid or expired reset token.")
	}
	hashed, err := bcrypt.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	return s.userRepo.Update(user)
}
