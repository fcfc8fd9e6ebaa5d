package storage

import "errors"

// ErrKeyNotFound is returned when a requested key has never been set or
// has been deleted.
var ErrKeyNotFound = errors.New("key not found")

// KV is a durable string-keyed store. Implementations must be safe for
// concurrent use.
type KV interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(key string) (string, error)
	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Close releases underlying resources.
	Close() error
}
