// internal/database/db.go
package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guesswho-live/guesswho/internal/game"
)

// queryTimeout bounds every individual gateway call so no engine operation
// can block indefinitely on the database.
const queryTimeout = 3 * time.Second

// Store is the PostgreSQL implementation of game.Gateway, backed by a pgx
// connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ game.Gateway = (*Store)(nil)

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect builds a pool from the POSTGRES_USER, POSTGRES_PASSWORD, PG_HOST,
// PG_PORT, and PG_DATABASE environment variables and verifies connectivity.
func Connect(ctx context.Context) (*Store, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %v: %w", err, game.ErrUnavailable)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// mapErr translates pgx failures into the core's sentinel errors: missing
// rows to ErrNotFound, unique violations to ErrConflict, broken foreign keys
// to ErrNotFound, and timeouts or connectivity loss to the retryable
// ErrUnavailable.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, game.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", op, game.ErrConflict)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", op, game.ErrNotFound)
		}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %v: %w", op, err, game.ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
