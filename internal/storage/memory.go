package storage

import (
	"context"
	"sync"
)

// Memory is a map-backed KV used in tests and when no database is
// configured. Values survive for the process lifetime only.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, visitorID, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[visitorID][key]; ok {
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil
	}
	return nil, ErrNotFound
}

func (m *Memory) Set(_ context.Context, visitorID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[visitorID] == nil {
		m.data[visitorID] = make(map[string][]byte)
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[visitorID][key] = v
	return nil
}

func (m *Memory) Delete(_ context.Context, visitorID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[visitorID], key)
	return nil
}
