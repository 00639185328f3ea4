package routes

import (
	"time"

	"natillera-miahorro/internal/adapters/http/handlers"
	"natillera-miahorro/internal/adapters/http/middleware"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/config"
	"natillera-miahorro/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Dependencies are the collaborators built outside the HTTP layer
type Dependencies struct {
	Notifier services.Notifier
	Renderer services.ReceiptRenderer
	Channel  handlers.ChannelStatus
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Dependencies) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	raffleRepo := repositories.NewRaffleRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	whatsappLogRepo := repositories.NewWhatsappLogRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg)
	memberService := services.NewMemberService(db, memberRepo, paymentRepo)
	paymentService := services.NewPaymentService(db, memberRepo, paymentRepo, deps.Renderer, deps.Notifier)
	loanService := services.NewLoanService(db, memberRepo, loanRepo, deps.Renderer, deps.Notifier)
	raffleService := services.NewRaffleService(db, raffleRepo, memberRepo, deps.Notifier, cfg.Raffle.TicketPrice, nil)
	eventService := services.NewEventService(eventRepo)
	dashboardService := services.NewDashboardService(db, memberRepo, paymentRepo, loanRepo, eventRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	memberHandler := handlers.NewMemberHandler(memberService, paymentService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	loanHandler := handlers.NewLoanHandler(loanService)
	raffleHandler := handlers.NewRaffleHandler(raffleService)
	eventHandler := handlers.NewEventHandler(eventService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	whatsappHandler := handlers.NewWhatsappHandler(deps.Channel, whatsappLogRepo)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")

	// Auth routes (public)
	setupAuthRoutes(api.Group("/auth"), authHandler, cfg)

	// Everything else requires a session
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	setupMemberRoutes(protected.Group("/socios"), memberHandler)
	setupPaymentRoutes(protected.Group("/pagos"), paymentHandler)
	setupLoanRoutes(protected.Group("/prestamos"), loanHandler)
	setupRaffleRoutes(protected.Group("/rifas"), raffleHandler)
	setupEventRoutes(protected.Group("/eventos"), eventHandler)

	dashboardRoutes := protected.Group("/dashboard")
	dashboardRoutes.Get("/summary", middleware.PrivateCacheHeaders(30*time.Second), dashboardHandler.Summary)

	whatsappRoutes := protected.Group("/whatsapp")
	whatsappRoutes.Get("/status", whatsappHandler.Status)
	whatsappRoutes.Get("/logs", middleware.AdminOnly(), whatsappHandler.Logs)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/logout", handler.Logout)

	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
}

// setupMemberRoutes configures socio routes
func setupMemberRoutes(router fiber.Router, handler *handlers.MemberHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Put("/:id/estado", handler.SetStatus)
	router.Get("/:id/pagos", handler.Payments)
}

// setupPaymentRoutes configures weekly payment routes
func setupPaymentRoutes(router fiber.Router, handler *handlers.PaymentHandler) {
	router.Post("/", handler.Upsert)
	router.Put("/:id", handler.Update)
	router.Get("/:id/historial", handler.History)
	router.Get("/:id/recibo", middleware.NoCacheHeaders(), handler.Receipt)
}

// setupLoanRoutes configures loan routes. The installment receipt path is
// registered before /:id so "pagos" is never read as a loan id.
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	router.Get("/pagos/:id/recibo", middleware.NoCacheHeaders(), handler.InstallmentReceipt)

	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
	router.Post("/:id/pagos", handler.RegisterInstallment)
	router.Get("/:id/pagos", handler.ListInstallments)
	router.Get("/:id/paz-y-salvo", middleware.NoCacheHeaders(), handler.Certificate)
}

// setupRaffleRoutes configures raffle routes
func setupRaffleRoutes(router fiber.Router, handler *handlers.RaffleHandler) {
	router.Get("/tickets-by-doc/:documento", handler.TicketsByDocument)
	router.Put("/tickets/:id", handler.UpdateTicket)

	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id/tickets", handler.Tickets)
	router.Post("/:id/distribute", handler.Distribute)
	router.Post("/:id/winner", handler.SetWinner)
}

// setupEventRoutes configures event routes
func setupEventRoutes(router fiber.Router, handler *handlers.EventHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
}
