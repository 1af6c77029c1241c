package selection

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store, used when Redis is not configured and
// in tests.
type MemoryStore struct {
	mu        sync.RWMutex
	selectors map[string]Selector
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{selectors: make(map[string]Selector)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Selector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sel, ok := m.selectors[sessionID]
	if !ok {
		return nil, nil
	}
	out := sel
	return &out, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, sel *Selector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectors[sessionID] = *sel
	return nil
}
