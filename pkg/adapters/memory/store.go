package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/windrose-ai/windrose/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save persists the snapshot in memory. Snapshots are stored serialized so a
// caller can never mutate stored state through a retained pointer.
func (s *Store) Save(ctx context.Context, conversationID string, snap *domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[conversationID] = data
	return nil
}

// Load retrieves the snapshot from memory.
func (s *Store) Load(ctx context.Context, conversationID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	data, ok := s.data[conversationID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Delete removes the snapshot.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, conversationID)
	return nil
}
