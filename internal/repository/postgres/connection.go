package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dtroode/heartcare-server/database"
	"github.com/dtroode/heartcare-server/internal/logger"
)

// connectTimeout bounds how long NewConnection waits for the server.
const connectTimeout = 30 * time.Second

type Connection struct {
	*pgxpool.Pool
	dsn string
}

// NewConnection opens a pool, waits for the server to accept connections
// and applies migrations.
func NewConnection(ctx context.Context, dsn string, logger *logger.Logger) (*Connection, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = connectTimeout

	err = backoff.RetryNotify(func() error {
		return pool.Ping(ctx)
	}, backoff.WithContext(bo, ctx), func(err error, next time.Duration) {
		logger.Warn("Postgres: database not ready, retrying",
			"error", err.Error(),
			"retry_in", next)
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	c := &Connection{
		Pool: pool,
		dsn:  dsn,
	}

	if err := c.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return c, nil
}

// Migrate applies pending schema migrations. It is safe to call repeatedly.
func (s *Connection) Migrate(ctx context.Context) error {
	return database.Migrate(ctx, s.dsn)
}

func (s *Connection) Close() error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	return nil
}

func (s *Connection) Ping(ctx context.Context) error {
	if s.Pool == nil {
		return fmt.Errorf("connection pool is nil")
	}
	return s.Pool.Ping(ctx)
}
