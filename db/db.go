// Package db owns the PostgreSQL connection pool and schema migrations for
// the document store.
package db

import (
	"context"
	"fmt"

	"github.com/SaveNTravel/saventravel-backend/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect builds a pgx connection pool from the database configuration and
// verifies connectivity.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
