
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paperforge-server/apperr"
	"paperforge-server/models"
)

// PostgresStore persists ledger entries in the prompt_history table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Insert(ctx context.Context, entry *models.HistoryEntry) error {
	params, err := json.Marshal(entry.Parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal history parameters: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO prompt_history (id, owner_id, status, parameters, feedback, paper_id, error_message, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)
	`, entry.ID, entry.OwnerID, entry.Status, params, entry.Feedback, entry.PaperID, entry.ErrorMessage, entry.CreatedAt, entry.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.HistoryEntry, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, status, parameters, COALESCE(feedback, ''), COALESCE(paper_id, ''), COALESCE(error_message, ''), created_at, completed_at
		FROM prompt_history WHERE id = $1
	`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("history entry %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch history entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) Update(ctx context.Context, entry *models.HistoryEntry) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE prompt_history
		SET status = $2, paper_id = NULLIF($3, ''), error_message = NULLIF($4, ''), completed_at = $5
		WHERE id = $1
	`, entry.ID, entry.Status, entry.PaperID, entry.ErrorMessage, entry.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update history entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("history entry %s not found", entry.ID)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM prompt_history WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("history entry %s not found", id)
	}
	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context, ownerID string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM prompt_history WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) List(ctx context.Context, ownerID string) ([]models.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, status, parameters, COALESCE(feedback, ''), COALESCE(paper_id, ''), COALESCE(error_message, ''), created_at, completed_at
		FROM prompt_history WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*models.HistoryEntry, error) {
	var entry models.HistoryEntry
	var params []byte
	if err := row.Scan(&entry.ID, &entry.OwnerID, &entry.Status, &params, &entry.Feedback,
		&entry.PaperID, &entry.ErrorMessage, &entry.CreatedAt, &entry.CompletedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, &entry.Parameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history parameters: %w", err)
	}
	return &entry, nil
}
