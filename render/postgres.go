package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paperforge-server/apperr"
)

// PostgresStore persists artifacts in the artifacts table, data as bytea.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Put(ctx context.Context, a *Artifact) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO artifacts (id, paper_id, name, content_type, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.PaperID, a.Name, a.ContentType, a.Data, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert artifact: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Artifact, error) {
	var a Artifact
	err := s.pool.QueryRow(ctx, `
		SELECT id, paper_id, name, content_type, data, created_at
		FROM artifacts WHERE id = $1
	`, id).Scan(&a.ID, &a.PaperID, &a.Name, &a.ContentType, &a.Data, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("artifact %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artifact: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM artifacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("artifact %s not found", id)
	}
	return nil
}
