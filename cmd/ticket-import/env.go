package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/ticket-import/internal/config"
	"github.com/spec-kit/ticket-import/internal/events"
	"github.com/spec-kit/ticket-import/internal/observability"
	"github.com/spec-kit/ticket-import/internal/persistence"
	"github.com/spec-kit/ticket-import/internal/repository"
	"github.com/spec-kit/ticket-import/internal/service"
	"github.com/spec-kit/ticket-import/internal/worker"
)

// cliEnv holds the services a command works with.
type cliEnv struct {
	users   repository.UserRepository
	catalog repository.CatalogRepository
	imports *service.ImportService
	auth    *service.AuthService
	close   func()
}

type envOpener func(ctx context.Context) (*cliEnv, error)

func openEnv(ctx context.Context) (*cliEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	// stdout carries command output
	cfg.Logger.Output = "stderr"
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("init logger: %w", err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if errors.Is(err, persistence.ErrDSNRequired) {
		return nil, withCode(exitUsage, err)
	}
	if err != nil {
		return nil, withCode(exitDB, err)
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			pg.Close()
			return nil, withCode(exitDB, err)
		}
	}
	redis := persistence.NewRedis(ctx, cfg.Redis, logger)

	pool := pg.PoolHandle()
	users := repository.NewUserRepository(pool)
	rights := repository.NewRightsRepository(pool)
	catalog := repository.NewCatalogRepository(pool)

	var runs repository.ImportRunRepository
	if client := redis.Handle(); client != nil {
		runs = repository.NewImportRunRepository(client, cfg.Import.RunTTL(), cfg.Import.RunHistoryLength)
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), logger)

	env := &cliEnv{
		users:   users,
		catalog: catalog,
		imports: service.NewImportService(cfg.Import, service.ImportDependencies{
			TicketRepo:       repository.NewTicketRepository(pool),
			FollowupRepo:     repository.NewFollowupRepository(pool),
			UserRepo:         users,
			CatalogRepo:      catalog,
			ImportConfigRepo: repository.NewImportConfigRepository(pool),
			RightsRepo:       rights,
			RunRepo:          runs,
			Dispatcher:       dispatcher,
			Metrics:          observability.NewMetrics(),
			Logger:           logger,
		}),
		auth: service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: users, RightsRepo: rights}),
		close: func() {
			redis.Close()
			pg.Close()
			_ = logger.Sync()
		},
	}
	return env, nil
}
