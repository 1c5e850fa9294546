package storage

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// MemoryStore is an in-process implementation of Store. It is used when no
// Redis backend is configured, typically for local development, and is
// explicitly non-durable across process restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	mappings map[string]string
	log      zerolog.Logger
}

// NewMemoryStore creates a new in-memory mapping store.
func NewMemoryStore(log zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		mappings: make(map[string]string),
		log:      log.With().Str("component", "storage").Str("backend", "memory").Logger(),
	}
}

// Put saves an identifier -> URL mapping.
func (m *MemoryStore) Put(_ context.Context, id, url string) error {
	if id == "" || url == "" {
		m.log.Warn().Str("corex_id", id).Msg("ignoring mapping with empty identifier or url")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.mappings[id] = url
	return nil
}

// Get retrieves the original URL for an identifier.
func (m *MemoryStore) Get(_ context.Context, id string) (string, bool, error) {
	if id == "" {
		return "", false, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	url, ok := m.mappings[id]
	return url, ok, nil
}

// Size returns the number of stored mappings.
func (m *MemoryStore) Size(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.mappings)
}

// Ping always succeeds for the in-memory backend.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close releases resources. The in-memory store holds none.
func (m *MemoryStore) Close() error {
	return nil
}
