// Package storage provides the mapping store that persists Corex
// identifier to original-URL entries.
package storage

import "context"

// Store defines the interface for persisting identifier-to-URL mappings.
// Mappings are immutable once written and have no expiry. Implementations
// must be safe for concurrent use.
type Store interface {
	// Put saves an identifier -> URL mapping. Calls with an empty
	// identifier or URL are tolerated as a logged no-op: malformed
	// upstream calls must not fail the request.
	Put(ctx context.Context, id, url string) error

	// Get retrieves the original URL for an identifier. The boolean
	// reports whether the identifier was ever registered; the error
	// surfaces backend I/O failures only.
	Get(ctx context.Context, id string) (string, bool, error)

	// Size returns the number of stored mappings.
	Size(ctx context.Context) int

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources.
	Close() error
}
