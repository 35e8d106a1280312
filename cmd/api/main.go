package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/southeastarchers/club-backend/internal/config"
	"github.com/southeastarchers/club-backend/internal/events"
	"github.com/southeastarchers/club-backend/internal/handler"
	"github.com/southeastarchers/club-backend/internal/middleware"
	"github.com/southeastarchers/club-backend/internal/notifier"
	"github.com/southeastarchers/club-backend/internal/repository"
	"github.com/southeastarchers/club-backend/internal/service"
	"github.com/southeastarchers/club-backend/pkg/database"
	"github.com/southeastarchers/club-backend/pkg/email"
	"github.com/southeastarchers/club-backend/pkg/payment"
	"github.com/southeastarchers/club-backend/pkg/storage"
	"github.com/southeastarchers/club-backend/pkg/utils"
)

func main() {
	// .env is optional in production where the environment is set directly.
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	transactionRepo := repository.NewFinancialTransactionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	shootRepo := repository.NewShootRepository(db)

	// Storage
	r2Storage, err := storage.NewR2Storage(cfg)
	if err != nil {
		log.Fatal("Failed to initialize R2 storage:", err)
	}

	// Email service
	emailService := email.NewEmailService(cfg.ResendAPIKey, cfg.EmailFromAddress, cfg.EmailFromName, logger)

	// Event bus with the notifier as its consumer
	bus := events.NewBus(logger)
	notifier.New(emailService, userRepo, paymentRepo, settingsRepo, logger).Register(bus)

	validator := utils.NewValidator()

	// Stripe service
	stripeService := payment.NewStripeService(cfg.StripeSecretKey, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)

	// Services
	settingsService := service.NewSettingsService(settingsRepo, validator)
	creditService := service.NewCreditService(db, membershipRepo, creditRepo, logger)
	membershipService := service.NewMembershipService(db, membershipRepo, settingsService, bus, logger)
	financeService := service.NewFinanceService(db, transactionRepo, settingsService, r2Storage, logger)
	paymentService := service.NewPaymentService(db, paymentRepo, membershipService, creditService, financeService, settingsService, stripeService, bus, logger)
	authService := service.NewAuthService(db, userRepo, paymentRepo, membershipService, settingsService, bus, logger)
	userService := service.NewUserService(userRepo)
	shootService := service.NewShootService(db, shootRepo, userRepo, membershipRepo, creditService, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, validator)
	userHandler := handler.NewUserHandler(userService, creditService, validator)
	membershipHandler := handler.NewMembershipHandler(membershipService)
	paymentHandler := handler.NewPaymentHandler(paymentService, cfg.StripeWebhookSecret, logger)
	financeHandler := handler.NewFinanceHandler(financeService, validator)
	shootHandler := handler.NewShootHandler(shootService, validator)
	settingsHandler := handler.NewSettingsHandler(settingsService)

	// Router
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "https://southeastarchers.org.uk, https://www.southeastarchers.org.uk, http://localhost:5173",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(fiberLogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	api := app.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Stripe webhook (public, signature verified)
	api.Post("/payments/webhook", paymentHandler.HandleStripeWebhook)

	// Protected routes
	api.Use(middleware.AuthMiddleware())
	{
		user := api.Group("/user")
		user.Get("/profile", userHandler.GetProfile)
		user.Put("/profile", userHandler.UpdateProfile)
		user.Post("/change-password", userHandler.ChangePassword)
		user.Get("/credits", userHandler.GetMyCredits)

		membership := api.Group("/membership")
		membership.Get("/", membershipHandler.GetMyMembership)

		payments := api.Group("/payments")
		payments.Get("/", paymentHandler.GetMyPayments)
		payments.Post("/checkout/membership", paymentHandler.CreateMembershipCheckout)
		payments.Post("/checkout/credits", paymentHandler.CreateCreditCheckout)
		payments.Post("/cash", paymentHandler.SubmitCashPayment)

		// Admin routes
		admin := api.Group("/admin", middleware.AdminMiddleware(userRepo))
		admin.Get("/members", userHandler.GetActiveMembers)
		admin.Get("/memberships/expiring", membershipHandler.GetExpiringSoon)
		admin.Post("/memberships/:userId/activate", membershipHandler.Activate)
		admin.Post("/memberships/:userId/renew", membershipHandler.Renew)
		admin.Post("/memberships/:userId/cancel", membershipHandler.Cancel)
		admin.Post("/memberships/year-end", membershipHandler.RunYearEndRollover)

		admin.Get("/payments/cash/pending", paymentHandler.GetPendingCashPayments)
		admin.Post("/payments/:id/confirm", paymentHandler.ConfirmCashPayment)
		admin.Post("/payments/:id/cancel", paymentHandler.CancelPayment)

		admin.Post("/shoots", shootHandler.CreateShoot)
		admin.Get("/shoots", shootHandler.GetShoots)
		admin.Get("/shoots/:id", shootHandler.GetShoot)
		admin.Put("/shoots/:id", shootHandler.UpdateShoot)

		admin.Post("/finance/transactions", financeHandler.CreateTransaction)
		admin.Get("/finance/transactions", financeHandler.GetTransactions)
		admin.Get("/finance/transactions/:id", financeHandler.GetTransaction)
		admin.Put("/finance/transactions/:id", financeHandler.UpdateTransaction)
		admin.Delete("/finance/transactions/:id", financeHandler.DeleteTransaction)
		admin.Get("/finance/statement", financeHandler.GetStatement)
		admin.Post("/finance/statement/export", financeHandler.ExportStatement)

		admin.Get("/settings", settingsHandler.GetSettings)
		admin.Put("/settings", settingsHandler.UpdateSettings)
	}

	log.Fatal(app.Listen(":" + cfg.Port))
}
