package storage

import (
	"context"
	"sync"
)

// Memory is a process-local Store for tests and throwaway dev runs.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
	// FailPuts makes every Put return this error when set.
	FailPuts error
}

func NewMemory() *Memory { return &Memory{records: map[string][]byte{}} }

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPuts != nil {
		return m.FailPuts
	}
	m.records[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Close() error { return nil }
