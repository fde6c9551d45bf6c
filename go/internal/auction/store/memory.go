package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/bracketbid/calcutta/go/internal/auction/session"
	"github.com/google/uuid"
)

// MemoryStore is an in-process SnapshotStore for tests and single-node
// development. Blobs are stored serialized so the round-trip matches the
// durable implementation.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// Load returns the snapshot for a league, or ErrNotFound.
func (m *MemoryStore) Load(_ context.Context, leagueID uuid.UUID) (*session.Snapshot, error) {
	m.mu.RLock()
	blob, ok := m.blobs[Key(leagueID)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var snap session.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save serializes and stores the snapshot for a league.
func (m *MemoryStore) Save(_ context.Context, leagueID uuid.UUID, snap *session.Snapshot) error {
	blob, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blobs[Key(leagueID)] = blob
	m.mu.Unlock()
	return nil
}
