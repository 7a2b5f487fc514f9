package database

import "context"

// Store defines the key-value persistence contract the brew log is built on.
// Values are opaque strings; implementations must be durable across restarts
// unless documented otherwise.
type Store interface {
	// Get returns the value stored under key. The bool is false when the key
	// has never been set or was removed; that is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases the underlying resources
	Close() error
}
