package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-import/internal/api/http"
	"github.com/spec-kit/ticket-import/internal/api/http/handlers"
	"github.com/spec-kit/ticket-import/internal/auth"
	"github.com/spec-kit/ticket-import/internal/config"
	"github.com/spec-kit/ticket-import/internal/events"
	"github.com/spec-kit/ticket-import/internal/observability"
	"github.com/spec-kit/ticket-import/internal/persistence"
	"github.com/spec-kit/ticket-import/internal/repository"
	"github.com/spec-kit/ticket-import/internal/service"
	"github.com/spec-kit/ticket-import/internal/worker"
)

// multipartOverhead leaves room for form fields next to the uploaded file.
const multipartOverhead = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	rightsRepo := repository.NewRightsRepository(pool)

	var runRepo repository.ImportRunRepository
	if client := redis.Handle(); client != nil {
		runRepo = repository.NewImportRunRepository(client, cfg.Import.RunTTL(), cfg.Import.RunHistoryLength)
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		RightsRepo: rightsRepo,
	})
	importService := service.NewImportService(cfg.Import, service.ImportDependencies{
		TicketRepo:       repository.NewTicketRepository(pool),
		FollowupRepo:     repository.NewFollowupRepository(pool),
		UserRepo:         userRepo,
		CatalogRepo:      repository.NewCatalogRepository(pool),
		ImportConfigRepo: repository.NewImportConfigRepository(pool),
		RightsRepo:       rightsRepo,
		RunRepo:          runRepo,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    int(cfg.Import.MaxUploadBytes) + multipartOverhead,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	health := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         health,
		Auth:           handlers.NewAuthHandler(authService),
		Imports:        handlers.NewImportsHandler(importService, logger),
		AuthMiddleware: authMiddleware,
		Rights:         rightsRepo,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
