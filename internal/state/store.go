package state

import (
	"context"
	"sync"
)

// Store persists snapshots across process restarts. Scope separates
// state between authenticated users so a shared device never leaks
// one account's notification history into another's.
//
// Save must be all-or-nothing: either the whole snapshot is persisted
// or the prior one remains intact.
type Store interface {
	Load(ctx context.Context, scope string) (Snapshot, error)
	Save(ctx context.Context, scope string, snap Snapshot) error
}

// MemoryStore is a mutex-guarded in-memory Store for tests and
// redis-less development.
type MemoryStore struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

// Load returns the stored snapshot for the scope, or an empty one.
func (m *MemoryStore) Load(_ context.Context, scope string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.snaps[scope]
	if !ok {
		return New(), nil
	}
	return snap.Clone(), nil
}

// Save replaces the stored snapshot for the scope.
func (m *MemoryStore) Save(_ context.Context, scope string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snaps[scope] = snap.Clone()
	return nil
}
