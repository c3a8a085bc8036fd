package store

import (
	"maps"
	"sync"
)

const MemoryStoreName = "memory"

var _ Store = (*MemoryStore)(nil)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewMemoryStore returns a store seeded with a copy of initial.
func NewMemoryStore(initial map[string]any) *MemoryStore {
	data := make(map[string]any, len(initial))
	maps.Copy(data, initial)
	return &MemoryStore{data: data}
}

func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, found := m.data[key]
	return found
}

func (m *MemoryStore) Get(key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, found := m.data[key]
	if !found {
		return nil, ErrNotFound
	}

	return value, nil
}

func (m *MemoryStore) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, found := m.data[key]; !found {
		return ErrNotFound
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) All() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.data)
}

func (m *MemoryStore) UpdateExisting(values map[string]any) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := 0
	for k, v := range values {
		if _, found := m.data[k]; found {
			m.data[k] = v
			updated++
		}
	}
	return updated
}
