package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"communitypulse/config"
	"communitypulse/internal/adapters/auth"
	"communitypulse/internal/adapters/email"
	deliveryhttp "communitypulse/internal/delivery/http"
	"communitypulse/internal/delivery/http/controllers"
	"communitypulse/internal/delivery/http/middleware"
	"communitypulse/internal/repository/postgres"
	"communitypulse/internal/scheduler"
	"communitypulse/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title Community Pulse API
// @version 1.0
// @description Hyper-local community events platform: event publishing with moderation, RSVPs, and email notifications.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()

	notificationService := services.NewNotificationService(eventRepo, rsvpRepo, userRepo, mailer, renderer, logger, serviceTimeout)
	authService := services.NewAuthService(userRepo, hasher, jwtManager, cfg.JWTExpiry, notificationService)
	eventService := services.NewEventService(eventRepo, userRepo, notificationService, serviceTimeout)
	rsvpService := services.NewRSVPService(eventRepo, rsvpRepo, userRepo, serviceTimeout)
	moderationService := services.NewModerationService(eventRepo, userRepo, notificationService, serviceTimeout)

	authController := controllers.NewAuthController(logger, authService)
	eventController := controllers.NewEventController(logger, eventService)
	rsvpController := controllers.NewRSVPController(logger, rsvpService)
	adminController := controllers.NewAdminController(logger, moderationService)

	mux := deliveryhttp.NewRouter(jwtManager, authController, eventController, rsvpController, adminController)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.Logging(logger, mux))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reminders := scheduler.NewReminderScheduler(notificationService, logger, cfg.ReminderInterval)
	go reminders.Run(ctx)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
