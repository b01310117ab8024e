package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemoryBackendSize = 10000

// MemoryBackend keeps entries in process memory, bounded by an LRU.
type MemoryBackend struct {
	entries *lru.Cache[string, string]
}

func NewMemoryBackend(size int) (*MemoryBackend, error) {
	if size <= 0 {
		size = defaultMemoryBackendSize
	}
	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &MemoryBackend{entries: entries}, nil
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	value, ok := m.entries.Get(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value string) error {
	m.entries.Add(key, value)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.entries.Remove(key)
	return nil
}

func (m *MemoryBackend) Len() int {
	return m.entries.Len()
}
