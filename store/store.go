package store

import "errors"

var ErrNotFound = errors.New("store: key not found")

// Store is a key/value container owned by the host and handed to handlers by
// reference. Implementations must be safe for concurrent use because every
// connection is served on its own goroutine.
type Store interface {
	Has(key string) bool
	Get(key string) (any, error)
	Set(key string, value any)
	Delete(key string) error
	// All returns a snapshot; changing it does not change the store.
	All() map[string]any
	// UpdateExisting overwrites the keys of values that are already present and
	// ignores the others. It returns how many keys were updated.
	UpdateExisting(values map[string]any) int
}
