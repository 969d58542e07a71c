// Package postgres is the remote relational tier. Every row carries the
// owning user id and every query is scoped by it.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/creatorlogic/internal/common"
)

// Store implements interfaces.RemoteStorage on a pgx connection pool
type Store struct {
	pool   *pgxpool.Pool
	logger arbor.ILogger
}

// NewStore opens the pool, verifies connectivity and applies migrations
func NewStore(ctx context.Context, logger arbor.ILogger, config *common.PostgresConfig) (*Store, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	cfg, err := pgxpool.ParseConfig(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
	}
	if config.MaxConns > 0 {
		cfg.MaxConns = config.MaxConns
	}
	cfg.ConnConfig.ConnectTimeout = common.ParseDuration(config.ConnectTimeout, 10*time.Second)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	store := &Store{pool: pool, logger: logger}

	if err := store.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info().Int("max_conns", int(cfg.MaxConns)).Msg("Postgres remote store initialized")
	return store, nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
