
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"paperforge-server/apperr"
	"paperforge-server/models"
)

// Store persists ledger entries. Implementations must treat each entry as
// independent: no cross-entry locking, no cascade to papers.
type Store interface {
	Insert(ctx context.Context, entry *models.HistoryEntry) error
	Get(ctx context.Context, id string) (*models.HistoryEntry, error)
	Update(ctx context.Context, entry *models.HistoryEntry) error
	Delete(ctx context.Context, ownerID, id string) error
	DeleteAll(ctx context.Context, ownerID string) (int, error)
	List(ctx context.Context, ownerID string) ([]models.HistoryEntry, error)
}

// Ledger is the append-only record of every generation and regeneration
// attempt. Entries outlive the papers they produced.
type Ledger struct {
	store Store
}

// NewLedger wraps a store.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Open records a new in-progress attempt and returns its entry ID.
func (l *Ledger) Open(ctx context.Context, ownerID string, params models.GenerationRequest, feedback string) (string, error) {
	entry := &models.HistoryEntry{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Status:     models.HistoryInProgress,
		Parameters: params,
		Feedback:   feedback,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.store.Insert(ctx, entry); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// Complete marks an in-progress entry successful and links the paper it
// produced. Entries already completed or failed are immutable.
func (l *Ledger) Complete(ctx context.Context, entryID, paperID string) error {
	return l.close(ctx, entryID, func(entry *models.HistoryEntry) {
		entry.Status = models.HistorySuccess
		entry.PaperID = paperID
	})
}

// Fail marks an in-progress entry failed with the collaborator's error text.
func (l *Ledger) Fail(ctx context.Context, entryID, errorMessage string) error {
	return l.close(ctx, entryID, func(entry *models.HistoryEntry) {
		entry.Status = models.HistoryFailed
		entry.ErrorMessage = errorMessage
	})
}

func (l *Ledger) close(ctx context.Context, entryID string, apply func(*models.HistoryEntry)) error {
	entry, err := l.store.Get(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Status != models.HistoryInProgress {
		return apperr.NotFoundf("history entry %s is already %s", entryID, entry.Status)
	}
	apply(entry)
	now := time.Now().UTC()
	entry.CompletedAt = &now
	return l.store.Update(ctx, entry)
}

// Delete removes a single entry. The paper it references is never touched.
func (l *Ledger) Delete(ctx context.Context, ownerID, entryID string) error {
	return l.store.Delete(ctx, ownerID, entryID)
}

// ClearAll removes every entry belonging to an owner and reports how many
// were deleted. Papers are unaffected.
func (l *Ledger) ClearAll(ctx context.Context, ownerID string) (int, error) {
	return l.store.DeleteAll(ctx, ownerID)
}

// List returns an owner's entries, newest first.
func (l *Ledger) List(ctx context.Context, ownerID string) ([]models.HistoryEntry, error) {
	return l.store.List(ctx, ownerID)
}
