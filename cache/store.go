package cache

import (
	"sync"
)

// Store is the persistent mirror of cached values.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Read never errors; it returns (nil, false) on miss.
// - Ownership: callers receive and hand over byte slices they must not
//   retain and mutate.
type Store interface {
	// Read retrieves the persisted value for key. Returns (nil, false) on miss.
	Read(key string) ([]byte, bool)

	// Write persists value under key, replacing any previous value.
	Write(key string, value []byte) error

	// Delete removes the persisted value. Idempotent - no error on miss.
	Delete(key string) error
}

// MemoryStore is an in-memory Store. Useful for tests and for hosts that
// accept losing cache state across restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Read retrieves a value. Returns (nil, false) on miss.
func (s *MemoryStore) Read(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), value...), true
}

// Write stores a copy of value under key.
func (s *MemoryStore) Write(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes a value. Idempotent.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

var _ Store = (*MemoryStore)(nil)
