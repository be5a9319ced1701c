package session

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu    sync.RWMutex
	items map[string]*State
}

func NewMemoryStore() Store {
	return &memoryStore{items: make(map[string]*State)}
}

func (m *memoryStore) Get(_ context.Context, id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (m *memoryStore) Save(_ context.Context, st *State) error {
	st.UpdatedAt = time.Now()

	m.mu.Lock()
	m.items[st.ID] = st.Clone()
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

// Sweep удаляет сессии, не менявшиеся дольше olderThan, и возвращает их,
// чтобы вызывающий освободил временные файлы.
func (m *memoryStore) Sweep(_ context.Context, olderThan time.Duration) ([]*State, error) {
	cutoff := time.Now().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []*State
	for id, st := range m.items {
		if st.UpdatedAt.Before(cutoff) {
			expired = append(expired, st)
			delete(m.items, id)
		}
	}
	return expired, nil
}
