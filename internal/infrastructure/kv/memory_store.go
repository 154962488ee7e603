package kv

import (
	"context"
	"sync"

	"github.com/ibrahimkeyboad/agrilink/domain"
)

// MemoryStore is an in-process domain.KeyValueStore. It backs tests and the
// example client; data lives for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty in-memory key-value store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get implements domain.KeyValueStore
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return val, nil
}

// Set implements domain.KeyValueStore
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Remove implements domain.KeyValueStore
func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

var _ domain.KeyValueStore = (*MemoryStore)(nil)
