// Package db provides PostgreSQL access for document, classification,
// processing-record, and weekly-summary storage.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
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

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Setup creates the schema if it does not exist. Safe to run repeatedly.
func (db *DB) Setup(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS source_documents (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL,
			content       TEXT NOT NULL DEFAULT '',
			url           TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL,
			edited_at     TIMESTAMPTZ NOT NULL,
			ingested_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_seen_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS classifications (
			id            UUID PRIMARY KEY,
			document_id   TEXT NOT NULL UNIQUE REFERENCES source_documents(id) ON DELETE CASCADE,
			category      TEXT NOT NULL,
			subcategory   TEXT NOT NULL,
			confidence    DOUBLE PRECISION NOT NULL,
			rationale     TEXT NOT NULL DEFAULT '',
			model         TEXT NOT NULL DEFAULT '',
			classified_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS processing_records (
			document_id        TEXT PRIMARY KEY REFERENCES source_documents(id) ON DELETE CASCADE,
			extract_status     TEXT NOT NULL DEFAULT 'pending',
			classify_status    TEXT NOT NULL DEFAULT 'pending',
			summarize_status   TEXT NOT NULL DEFAULT 'pending',
			classify_attempts  INT NOT NULL DEFAULT 0,
			summarize_attempts INT NOT NULL DEFAULT 0,
			last_error         TEXT,
			extracted_at       TIMESTAMPTZ,
			classified_at      TIMESTAMPTZ,
			summarized_at      TIMESTAMPTZ,
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_processing_records_classify
			ON processing_records (classify_status, classify_attempts)`,
		`CREATE TABLE IF NOT EXISTS weekly_summaries (
			week_id            TEXT PRIMARY KEY,
			document_ids       TEXT[] NOT NULL DEFAULT '{}',
			category_counts    JSONB NOT NULL,
			subcategory_counts JSONB NOT NULL,
			mindset_indicators JSONB NOT NULL,
			summary_text       TEXT NOT NULL,
			key_insights       TEXT[] NOT NULL DEFAULT '{}',
			generated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run setup statement: %w", err)
		}
	}
	return nil
}
