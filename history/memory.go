
package history

import (
	"context"
	"sort"
	"sync"

	"paperforge-server/apperr"
	"paperforge-server/models"
)

// MemoryStore keeps ledger entries in process memory. Used by tests and
// by dev mode when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]models.HistoryEntry
}

// NewMemoryStore returns an empty in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]models.HistoryEntry)}
}

func (s *MemoryStore) Insert(ctx context.Context, entry *models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = *entry
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, apperr.NotFoundf("history entry %s not found", id)
	}
	copied := entry
	return &copied, nil
}

func (s *MemoryStore) Update(ctx context.Context, entry *models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return apperr.NotFoundf("history entry %s not found", entry.ID)
	}
	s.entries[entry.ID] = *entry
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || entry.OwnerID != ownerID {
		return apperr.NotFoundf("history entry %s not found", id)
	}
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) DeleteAll(ctx context.Context, ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, entry := range s.entries {
		if entry.OwnerID == ownerID {
			delete(s.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) List(ctx context.Context, ownerID string) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []models.HistoryEntry
	for _, entry := range s.entries {
		if entry.OwnerID == ownerID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}
