package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/juajobs/juajobs-backend/internal/cache"
	"github.com/juajobs/juajobs-backend/internal/config"
	"github.com/juajobs/juajobs-backend/internal/db"
	httpHandlers "github.com/juajobs/juajobs-backend/internal/http/handlers"
	httpRouter "github.com/juajobs/juajobs-backend/internal/http/router"
	"github.com/juajobs/juajobs-backend/internal/logger"
	"github.com/juajobs/juajobs-backend/internal/mpesa"
	"github.com/juajobs/juajobs-backend/internal/repository"
	"github.com/juajobs/juajobs-backend/internal/service"
	"github.com/juajobs/juajobs-backend/internal/storage"
	"github.com/juajobs/juajobs-backend/internal/ws"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: cannot load configuration: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: cannot connect to database: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: migrations failed: %v", err)
	}

	// The cache is optional: a missing Redis degrades reads to the
	// database but never blocks startup in development.
	var jobCache *cache.Cache
	redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		if cfg.Env == "production" {
			log.Fatalf("main: cannot connect to redis: %v", err)
		}
		logger.Log.WithField("error", err.Error()).Warn("main: redis unavailable, caching disabled")
		redisClient = nil
	} else {
		jobCache = cache.New(redisClient, cfg.CacheTTL)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: cannot prepare media storage: %v", err)
	}

	mpesaClient := mpesa.NewClient(cfg.Mpesa)

	// Repositories.
	userRepo := repository.NewUserRepository(dbConn)
	locationRepo := repository.NewLocationRepository(dbConn)
	skillRepo := repository.NewSkillRepository(dbConn)
	categoryRepo := repository.NewCategoryRepository(dbConn)
	jobRepo := repository.NewJobRepository(dbConn)
	applicationRepo := repository.NewApplicationRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// WebSocket hub. Services push through it, it persists via the
	// notification service.
	hub := ws.NewHub(ctx)
	go hub.Run()

	// Services.
	notificationService := service.NewNotificationService(notificationRepo)
	hub.SetNotificationSaver(notificationService)

	authService := service.NewAuthService(userRepo, tokenManager)
	userService := service.NewUserService(userRepo, skillRepo, photoStorage)
	catalogService := service.NewCatalogService(locationRepo, skillRepo, categoryRepo)
	jobService := service.NewJobService(jobRepo, categoryRepo, locationRepo, jobCache, hub)
	applicationService := service.NewApplicationService(applicationRepo, jobRepo, jobCache, hub)
	paymentService := service.NewPaymentService(paymentRepo, userRepo, mpesaClient, jobCache, hub)
	reviewService := service.NewReviewService(reviewRepo, jobRepo, hub)

	// HTTP handlers.
	authHandler := httpHandlers.NewAuthHandler(authService)
	userHandler := httpHandlers.NewUserHandler(userService)
	catalogHandler := httpHandlers.NewCatalogHandler(catalogService)
	jobHandler := httpHandlers.NewJobHandler(jobService, applicationService)
	applicationHandler := httpHandlers.NewApplicationHandler(applicationService)
	paymentHandler := httpHandlers.NewPaymentHandler(paymentService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, redisClient)

	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		userHandler,
		catalogHandler,
		jobHandler,
		applicationHandler,
		paymentHandler,
		reviewHandler,
		notificationHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: http server shutdown error: %v", err)
		}
	}()

	logger.Log.WithField("port", cfg.HTTPPort).Info("main: HTTP server started")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: server stopped with error: %v", err)
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: cannot close database: %v", err)
	}
}
