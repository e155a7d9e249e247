// Package cache provides a small byte cache used to remember what was
// last installed into an environment.
//
// The install command fingerprints the resolved closure (lockfile content,
// environment facts, root set) and records it per virtualenv; when the
// fingerprint is unchanged on the next run, installation is skipped
// entirely. Entries are stored as files under the user cache directory.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional per-entry expiration.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl stores it without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
