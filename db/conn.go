package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool constructs a bounded pgx connection pool. Acquisition blocks when
// the pool is exhausted.
func NewPool(ctx context.Context, connString string, maxSize int) (*pgxpool.Pool, error) {
	if connString == "" {
		return nil, fmt.Errorf("db: empty connection string")
	}

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("db: parse config: %w", err)
	}
	if maxSize > 0 {
		cfg.MaxConns = int32(maxSize)
	}

	return pgxpool.NewWithConfig(ctx, cfg)
}
