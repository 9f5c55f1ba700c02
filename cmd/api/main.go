package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/fitlab-service/internal/api/http"
	"github.com/spec-kit/fitlab-service/internal/api/http/handlers"
	"github.com/spec-kit/fitlab-service/internal/auth"
	"github.com/spec-kit/fitlab-service/internal/config"
	"github.com/spec-kit/fitlab-service/internal/events"
	"github.com/spec-kit/fitlab-service/internal/observability"
	"github.com/spec-kit/fitlab-service/internal/persistence"
	"github.com/spec-kit/fitlab-service/internal/repository"
	"github.com/spec-kit/fitlab-service/internal/service"
	"github.com/spec-kit/fitlab-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if !cfg.Admin.Configured() {
		logger.Warn("admin principal not configured; admin login disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	labTestRepo := repository.NewLabTestRepository(pool)
	bookingRepo := repository.NewLabBookingRepository(pool)
	historyRepo := repository.NewBookingHistoryRepository(pool)
	blogRepo := repository.NewBlogRepository(pool)
	sessionRepo := repository.NewSessionRepository(redis.Client)
	txManager := repository.NewTxManager(pool)

	metrics := observability.NewMetrics(nil)
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(logger, cfg.Notification)
	notifier := worker.StartNotificationWorker(ctx, dispatcher, notificationService, logger, 256)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Logger:      logger,
	})
	approvalService := service.NewApprovalService(service.ApprovalDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		LabTestRepo: labTestRepo,
		UserRepo:    userRepo,
		TxManager:   txManager,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	bookingService := service.NewBookingService(service.BookingDependencies{
		BookingRepo:       bookingRepo,
		LabTestRepo:       labTestRepo,
		UserRepo:          userRepo,
		HistoryRepo:       historyRepo,
		TxManager:         txManager,
		Dispatcher:        dispatcher,
		Metrics:           metrics,
		Logger:            logger,
		StrictTransitions: cfg.Booking.StrictTransitions,
	})
	reportingService := service.NewReportingService(userRepo)
	blogService := service.NewBlogService(service.BlogDependencies{BlogRepo: blogRepo, Logger: logger})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, sessionRepo, authService.AdminVerifier())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Admin:          handlers.NewAdminHandler(authService, approvalService, reportingService),
		LabPartners:    handlers.NewLabPartnersHandler(approvalService, catalogService),
		Bookings:       handlers.NewBookingsHandler(bookingService),
		Trainers:       handlers.NewTrainersHandler(approvalService),
		Blogs:          handlers.NewBlogsHandler(blogService),
		Metrics:        promhttp.Handler(),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	cancel()
	notifier.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
