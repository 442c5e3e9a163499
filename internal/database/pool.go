// Package database provides PostgreSQL connection pooling
// using pgx, and bootstraps the complaint-desk schema.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a new PostgreSQL connection pool with optimized settings
func NewPool(databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return pool, nil
}

// Schema is the DDL applied by EnsureSchema. Every statement is idempotent.
// resolve_history and complaint_feedback deliberately carry no foreign key:
// both outlive a deleted complaint.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS complaints (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL,
		content          TEXT NOT NULL,
		category         TEXT NOT NULL,
		source           TEXT NOT NULL,
		level            TEXT NOT NULL,
		area             TEXT NOT NULL CHECK (area IN ('A区', 'B区')),
		complainant_name TEXT NOT NULL,
		contact          TEXT NOT NULL DEFAULT '',
		assignee         TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL CHECK (status IN ('pending', 'processing', 'completed')),
		processing_notes TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		CHECK (updated_at >= created_at)
	)`,
	`CREATE INDEX IF NOT EXISTS complaints_created_at_idx ON complaints (created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS complaints_status_idx ON complaints (status)`,
	`CREATE TABLE IF NOT EXISTS resolve_history (
		id          TEXT PRIMARY KEY,
		ticket_no   TEXT NOT NULL,
		status      TEXT NOT NULL,
		operator    TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS resolve_history_ticket_idx ON resolve_history (ticket_no, created_at, id)`,
	`CREATE TABLE IF NOT EXISTS complaint_feedback (
		id                TEXT PRIMARY KEY,
		survey_code       TEXT NOT NULL,
		ticket_no         TEXT NOT NULL,
		investigator_name TEXT NOT NULL,
		contact_info      TEXT NOT NULL DEFAULT '',
		processing_speed  TEXT NOT NULL,
		staff_attitude    TEXT NOT NULL,
		resolution_effect TEXT NOT NULL,
		other_suggestions TEXT NOT NULL DEFAULT '',
		score             DOUBLE PRECISION NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS complaint_feedback_ticket_idx ON complaint_feedback (ticket_no)`,
	`CREATE TABLE IF NOT EXISTS sys_dict (
		kind       TEXT NOT NULL,
		code       TEXT NOT NULL,
		label      TEXT NOT NULL,
		score      DOUBLE PRECISION,
		sort_order INT NOT NULL DEFAULT 0,
		PRIMARY KEY (kind, code)
	)`,
}

// EnsureSchema creates any missing tables and indexes
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range Schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
