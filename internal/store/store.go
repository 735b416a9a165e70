// Package store persists the volume totalizer across restarts.
// The real implementation is a bbolt file; the fake implementation is an
// in-memory map for tests.
//
// The measurement pipeline treats the store as fire-and-forget: write
// failures are logged by the caller and never stop a cycle.
package store

// KeyTotal is the stable key under which the cumulative volume is saved.
const KeyTotal = "total_l"

// DefaultPath is where the daemon keeps its state file.
const DefaultPath = "/var/lib/flowmeterd/state.db"

// Store is a named-float key-value interface.
type Store interface {
	// GetFloat returns the stored value for key, or def if the key has
	// never been written or cannot be decoded.
	GetFloat(key string, def float64) float64

	// PutFloat stores the value under key.
	PutFloat(key string, value float64) error

	// Close releases the store.
	Close() error
}
