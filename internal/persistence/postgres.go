package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-import/internal/config"
)

// Postgres wraps access to the pgx pool holding tickets, follow-ups,
// lookup tables, rights and import configuration.
type Postgres struct {
	Pool *pgxpool.Pool
}

// ErrDSNRequired is returned when no connection string is configured.
var ErrDSNRequired = errors.New("POSTGRES_DSN is required")

// connectBackoff is multiplied by the attempt number between connection
// attempts.
var connectBackoff = time.Second

// NewPostgres opens the pool and pings it, retrying up to
// cfg.ConnectAttempts times while the server comes up.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, ErrDSNRequired
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		pool, err := connect(ctx, poolCfg)
		if err == nil {
			logger.Info("connected to postgres",
				zap.Int32("max_conns", poolCfg.MaxConns),
				zap.Int32("min_conns", poolCfg.MinConns),
				zap.Int("attempt", attempt))
			return &Postgres{Pool: pool}, nil
		}
		if attempt >= attempts {
			return nil, fmt.Errorf("connect postgres after %d attempts: %w", attempt, err)
		}
		logger.Warn("postgres not reachable; retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * connectBackoff):
		}
	}
}

func connect(ctx context.Context, poolCfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.Pool.Ping(ctx)
}

// PoolHandle returns the underlying pgx pool.
func (p *Postgres) PoolHandle() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.Pool
}
