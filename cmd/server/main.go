package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"natillera-miahorro/internal/adapters/http/middleware"
	"natillera-miahorro/internal/adapters/http/routes"
	"natillera-miahorro/internal/adapters/mailer"
	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/adapters/receipts"
	"natillera-miahorro/internal/adapters/whatsapp"
	"natillera-miahorro/internal/config"
	"natillera-miahorro/internal/core/services"
	"natillera-miahorro/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "natillera-miahorro/docs" // Swagger docs
)

// @title Natillera MiAhorro API
// @version 1.0
// @description Back office de la natillera: socios, ahorro semanal, préstamos, rifas y eventos.

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.AppMode); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		logger.Log.Fatal("Failed to auto migrate", zap.Error(err))
	}
	logger.Log.Info("Database migration completed")

	if err := config.NewSeeder(db, cfg).Run(); err != nil {
		logger.Log.Warn("Failed to seed data", zap.Error(err))
	}

	// Outbound channels
	renderer := receipts.NewRenderer(receipts.Org{
		Name: cfg.Org.Name,
		City: cfg.Org.City,
		NIT:  cfg.Org.NIT,
	})

	var mail services.Mailer = mailer.Disabled{}
	if cfg.Mail.Enabled() {
		mail = mailer.New(mailer.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			User:     cfg.Mail.User,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			FromName: cfg.Org.Name,
		})
	} else {
		logger.Log.Warn("Email disabled: EMAIL_HOST or EMAIL_USER not set")
	}

	chat := whatsapp.New(whatsapp.Config{
		AccountSID: cfg.WhatsApp.AccountSID,
		AuthToken:  cfg.WhatsApp.AuthToken,
		From:       cfg.WhatsApp.From,
	}, repositories.NewWhatsappLogRepository(db))

	connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := chat.Connect(connectCtx); err != nil {
		logger.Log.Warn("WhatsApp not connected", zap.Error(err))
	}
	cancel()
	defer chat.Disconnect()

	notifier := services.NewNotificationService(mail, chat, renderer, services.NotificationConfig{
		Workers:     cfg.Notify.Workers,
		QueueSize:   cfg.Notify.QueueSize,
		TaskTimeout: cfg.Notify.TaskTimeout,
		OrgName:     cfg.Org.Name,
	})
	notifier.Start()
	defer notifier.Stop()

	// Scheduled jobs
	memberRepo := repositories.NewMemberRepository(db)
	loanService := services.NewLoanService(db, memberRepo, repositories.NewLoanRepository(db), renderer, notifier)
	cronService, err := services.NewCronService(memberRepo, loanService, services.CronSchedule{
		DailyReport:  cfg.Cron.DailyReport,
		OverdueSweep: cfg.Cron.OverdueSweep,
	})
	if err != nil {
		logger.Log.Fatal("Invalid cron schedule", zap.Error(err))
	}
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Natillera MiAhorro API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	middleware.Setup(app, cfg)

	routes.Setup(app, db, cfg, routes.Dependencies{
		Notifier: notifier,
		Renderer: renderer,
		Channel:  chat,
	})

	go gracefulShutdown(app)

	logger.Log.Info("Server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Log.Error("Server stopped with error", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logger.Log.Error("Error during shutdown", zap.Error(err))
	}
	logger.Log.Info("Server stopped gracefully")
}
