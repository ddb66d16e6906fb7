package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// Open creates a pgx pool for the members database.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database DSN", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "membership-workflow"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return pool.Ping(ctx)
}
