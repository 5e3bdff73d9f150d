package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"farrier-backend/internal/auth"
	"farrier-backend/internal/cache"
	"farrier-backend/internal/config"
	"farrier-backend/internal/database"
	"farrier-backend/internal/db"
	"farrier-backend/internal/handlers"
	"farrier-backend/internal/health"
	"farrier-backend/internal/middleware"
	"farrier-backend/internal/repositories"
	"farrier-backend/internal/routes"
	"farrier-backend/internal/services"
	"farrier-backend/internal/storage"
	"farrier-backend/internal/ws"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	if err := cache.Init(); err != nil {
		log.Printf("[Cache] Redis unavailable, running without cache: %v", err)
	}

	migrator := database.NewMigrator(pool, "migrations")
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	horseRepo := repositories.NewHorseRepository(pool)
	linkRepo := repositories.NewCustomerHorseRepository(pool)
	shoeingRepo := repositories.NewShoeingRepository(pool)
	noteRepo := repositories.NewNoteRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)
	priceRepo := repositories.NewPriceRepository(pool)
	tokenRepo := repositories.NewAccountingTokenRepository(pool)

	// Infrastructure
	jwtManager := auth.NewJWTManager(cfg)
	hub := ws.NewHub()
	archiver, err := storage.NewArchiver(cfg)
	if err != nil {
		log.Fatalf("archive setup failed: %v", err)
	}
	if archiver == nil {
		log.Println("[Archive] Object storage not configured, PDFs will not be archived")
	}

	// Services
	totpService := services.NewTOTPService(userRepo, cfg.JWT.Issuer)
	userService := services.NewUserService(userRepo, jwtManager, totpService)
	notificationService := services.NewNotificationService(notificationRepo, hub)
	noteService := services.NewNoteService(noteRepo, userRepo, notificationService)
	customerService := services.NewCustomerService(customerRepo, linkRepo)
	horseService := services.NewHorseService(horseRepo, linkRepo)
	shoeingService := services.NewShoeingService(shoeingRepo, horseRepo)
	accountingService := services.NewAccountingService(cfg, tokenRepo)
	approvalService := services.NewApprovalService(
		shoeingRepo, linkRepo, customerRepo, horseRepo, accountingService, notificationService)
	dashboardService := services.NewDashboardService(shoeingRepo)
	priceService := services.NewPriceService(priceRepo)
	reportService := services.NewReportService(shoeingRepo, archiver)

	// Background token refresh keeps interactive calls off the refresh path
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 30m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		accountingService.RefreshExpiring(ctx)
	}); err != nil {
		log.Fatalf("scheduler setup failed: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	h := &routes.Handlers{
		Auth:         handlers.NewAuthHandler(userService, totpService),
		Customer:     handlers.NewCustomerHandler(customerService),
		Horse:        handlers.NewHorseHandler(horseService, shoeingService, noteService),
		Shoeing:      handlers.NewShoeingHandler(shoeingService),
		Approval:     handlers.NewApprovalHandler(approvalService),
		Accounting:   handlers.NewAccountingHandler(accountingService),
		Note:         handlers.NewNoteHandler(noteService),
		Notification: handlers.NewNotificationHandler(notificationService, hub),
		Price:        handlers.NewPriceHandler(priceService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		Report:       handlers.NewReportHandler(reportService),
		Monitoring:   handlers.NewMonitoringHandler(),
		Health:       handlers.NewHealthHandler(health.NewHealthChecker(pool)),
	}

	authMw := middleware.NewAuthMiddleware(jwtManager, userRepo)
	router := routes.New(h, authMw)

	handler := middleware.PanicRecovery(
		middleware.MetricsMiddleware(
			middleware.NewCORS(cfg)(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("[Server] Listening on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
