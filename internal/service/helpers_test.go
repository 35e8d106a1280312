package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/southeastarchers/club-backend/internal/events"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/repository"
	"github.com/southeastarchers/club-backend/pkg/database"
	"github.com/southeastarchers/club-backend/pkg/utils"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testSQLiteDriver is overridden in helpers_cgo_test.go when cgo is enabled.
var testSQLiteDriver = "sqlite3"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: testSQLiteDriver, DSN: dsn}), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

type fakeGateway struct {
	lastAmountCents int64
	lastReference   string
	err             error
}

func (g *fakeGateway) CreateCheckout(amountCents int64, currency, description, reference string) (*models.CheckoutSession, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.lastAmountCents = amountCents
	g.lastReference = reference
	return &models.CheckoutSession{
		ID:     "cs_test",
		URL:    "https://checkout.test/cs_test",
		Status: "open",
	}, nil
}

type fakeUploader struct {
	uploads map[string][]byte
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploads: make(map[string][]byte)}
}

func (u *fakeUploader) Upload(key string, body []byte, contentType string) error {
	u.uploads[key] = body
	return nil
}

type testEnv struct {
	db       *gorm.DB
	bus      *events.Bus
	gateway  *fakeGateway
	uploader *fakeUploader

	userRepo        *repository.UserRepository
	membershipRepo  *repository.MembershipRepository
	paymentRepo     *repository.PaymentRepository
	transactionRepo *repository.FinancialTransactionRepository
	settingsRepo    *repository.SettingsRepository

	settings   *SettingsService
	credits    *CreditService
	membership *MembershipService
	finance    *FinanceService
	payments   *PaymentService
	shoots     *ShootService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	logger := zap.NewNop()
	bus := events.NewBus(logger)

	env := &testEnv{
		db:              db,
		bus:             bus,
		gateway:         &fakeGateway{},
		uploader:        newFakeUploader(),
		userRepo:        repository.NewUserRepository(db),
		membershipRepo:  repository.NewMembershipRepository(db),
		paymentRepo:     repository.NewPaymentRepository(db),
		transactionRepo: repository.NewFinancialTransactionRepository(db),
		settingsRepo:    repository.NewSettingsRepository(db),
	}
	creditRepo := repository.NewCreditRepository(db)
	shootRepo := repository.NewShootRepository(db)

	env.settings = NewSettingsService(env.settingsRepo, utils.NewValidator())
	env.credits = NewCreditService(db, env.membershipRepo, creditRepo, logger)
	env.membership = NewMembershipService(db, env.membershipRepo, env.settings, bus, logger)
	env.finance = NewFinanceService(db, env.transactionRepo, env.settings, env.uploader, logger)
	env.payments = NewPaymentService(db, env.paymentRepo, env.membership, env.credits, env.finance, env.settings, env.gateway, bus, logger)
	env.shoots = NewShootService(db, shootRepo, env.userRepo, env.membershipRepo, env.credits, logger)
	return env
}

func (env *testEnv) seedUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{
		FullName: "Test Member",
		Email:    email,
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env *testEnv) seedMembership(t *testing.T, userID uint, status string, initial, purchased, used int) *models.Membership {
	t.Helper()
	now := time.Now().UTC()
	membership := &models.Membership{
		UserID:           userID,
		Status:           status,
		StartDate:        now.AddDate(0, -1, 0),
		ExpiryDate:       now.AddDate(0, 6, 0),
		InitialCredits:   initial,
		PurchasedCredits: purchased,
		UsedCredits:      used,
	}
	require.NoError(t, env.db.Create(membership).Error)
	return membership
}

func (env *testEnv) setStripeFee(t *testing.T, pct float64) {
	t.Helper()
	settings, err := env.settings.Get()
	require.NoError(t, err)
	settings.StripeFeePercentage = &pct
	require.NoError(t, env.settingsRepo.Save(settings))
}

func (env *testEnv) reloadMembership(t *testing.T, userID uint) *models.Membership {
	t.Helper()
	membership, err := env.membershipRepo.GetByUserID(userID)
	require.NoError(t, err)
	return membership
}

func (env *testEnv) ledgerRows(t *testing.T) []models.FinancialTransaction {
	t.Helper()
	rows, err := env.transactionRepo.GetAll()
	require.NoError(t, err)
	return rows
}
