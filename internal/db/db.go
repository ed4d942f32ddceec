// Package db provides PostgreSQL storage for the link-event log.
//
// Persistence is write-behind and best-effort: the in-memory store is the
// source of truth while the process runs, and the event log exists so a
// restart (or the snapshot CLI) can rebuild it.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the event-log table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS link_events (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			source_url TEXT NOT NULL,
			target_url TEXT NOT NULL,
			anchor_text TEXT NOT NULL DEFAULT '',
			context TEXT NOT NULL DEFAULT '',
			conversion_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			bounce_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
			time_on_page_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			occurred_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create link_events table: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_link_events_occurred_at ON link_events (occurred_at)`)
	if err != nil {
		return fmt.Errorf("failed to create link_events index: %w", err)
	}
	return nil
}
