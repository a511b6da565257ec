package render

import (
	"context"
	"sync"

	"paperforge-server/apperr"
)

// MemoryStore keeps artifacts in a map. Used by tests and dev mode.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]*Artifact
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{artifacts: make(map[string]*Artifact)}
}

func (s *MemoryStore) Put(ctx context.Context, a *Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *a
	stored.Data = append([]byte(nil), a.Data...)
	s.artifacts[a.ID] = &stored
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[id]
	if !ok {
		return nil, apperr.NotFoundf("artifact %s not found", id)
	}
	out := *a
	out.Data = append([]byte(nil), a.Data...)
	return &out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artifacts[id]; !ok {
		return apperr.NotFoundf("artifact %s not found", id)
	}
	delete(s.artifacts, id)
	return nil
}
