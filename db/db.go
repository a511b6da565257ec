package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitDB initializes the PostgreSQL database connection pool
func InitDB(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL database!")
	return pool, nil
}

// CreateSchema sets up the tables for paperforge.
// In a production environment, use a proper migration tool (e.g., golang-migrate).
func CreateSchema(pool *pgxpool.Pool) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS papers (
		id UUID PRIMARY KEY,
		owner_id VARCHAR(255) NOT NULL,
		subject VARCHAR(255) NOT NULL,
		department VARCHAR(255) NOT NULL,
		section VARCHAR(50),
		year INT,
		exam_type VARCHAR(20) NOT NULL CHECK (exam_type IN ('Mid', 'Final', 'Internal', 'Quiz')),
		total_marks INT NOT NULL,
		request JSONB NOT NULL,
		questions JSONB NOT NULL,
		distribution JSONB NOT NULL,
		status VARCHAR(20) NOT NULL CHECK (status IN ('draft', 'approved')),
		regeneration_count INT NOT NULL DEFAULT 0,
		is_edit_copy BOOLEAN NOT NULL DEFAULT FALSE,
		source_paper_id UUID,
		question_paper_pdf UUID,
		answer_key_pdf UUID,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		approved_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_papers_owner ON papers (owner_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_papers_owner_status ON papers (owner_id, status);

	CREATE TABLE IF NOT EXISTS prompt_history (
		id UUID PRIMARY KEY,
		owner_id VARCHAR(255) NOT NULL,
		status VARCHAR(20) NOT NULL CHECK (status IN ('in_progress', 'success', 'failed')),
		parameters JSONB NOT NULL,
		feedback TEXT,
		paper_id UUID,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_history_owner ON prompt_history (owner_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS artifacts (
		id UUID PRIMARY KEY,
		paper_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		content_type VARCHAR(100) NOT NULL,
		data BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_paper ON artifacts (paper_id);
	`
	_, err := pool.Exec(context.Background(), schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	log.Println("Database schema created/verified successfully.")
	return nil
}
