package storage

import "testing"

// TestMemoryStore_Interface ensures MemoryStore implements Store
func TestMemoryStore_Interface(t *testing.T) {
	var _ Store = (*MemoryStore)(nil)
}

// TestRedisStore_Interface ensures RedisStore implements Store
func TestRedisStore_Interface(t *testing.T) {
	var _ Store = (*RedisStore)(nil)
}
