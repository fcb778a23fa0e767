package storage

import (
	"context"
	"sync"
)

type memoryEntry struct {
	value   string
	version uint
}

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, _, ok, err := s.GetVersioned(ctx, key)
	return value, ok, err
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key]
	s.entries[key] = memoryEntry{value: value, version: e.version + 1}
	return nil
}

func (s *MemoryStore) GetVersioned(ctx context.Context, key string) (string, uint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return "", 0, false, nil
	}
	return e.value, e.version, true, nil
}

func (s *MemoryStore) SetIfVersion(ctx context.Context, key, value string, version uint) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key]
	if e.version != version {
		return e.version, ErrOptimisticLock
	}

	next := memoryEntry{value: value, version: version + 1}
	s.entries[key] = next
	return next.version, nil
}
