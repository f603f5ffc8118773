package session

import (
	"context"
	"sync"
)

// Store persists the session identity between runs.
type Store interface {
	// Load returns the persisted identity, or the zero Identity if none.
	Load(ctx context.Context) (Identity, error)
	Save(ctx context.Context, id Identity) error
	Clear(ctx context.Context) error
}

// MemoryStore is a Store that forgets everything on exit.
type MemoryStore struct {
	mu sync.Mutex
	id Identity
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, nil
}

func (m *MemoryStore) Save(ctx context.Context, id Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = Identity{}
	return nil
}
