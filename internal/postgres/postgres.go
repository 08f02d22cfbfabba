// Package postgres implements the durable-store interfaces on PostgreSQL.
//
// Row-level locks provide the atomic units the engagement state machine
// needs: one vote row per (user, answer) pair and one question row per
// acceptance swap. Every call carries a bounded timeout; a timeout rolls the
// transaction back and surfaces as domain.ErrStoreUnavailable.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
)

type DB struct {
	Pool    *pgxpool.Pool
	timeout time.Duration
}

func Connect(ctx context.Context, databaseURL string, timeout time.Duration) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected", "min_conns", poolCfg.MinConns, "max_conns", poolCfg.MaxConns)
	return &DB{Pool: pool, timeout: timeout}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// opCtx bounds a single store operation.
func (db *DB) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.timeout)
}

// mapErr translates driver timeouts into the unavailable sentinel so callers
// can report them without inspecting driver internals.
func mapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, domain.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
