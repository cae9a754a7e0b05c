package cache

import (
	"context"
	"time"
)

// NullCache discards every write and misses every read. It backs the
// --no-cache flag and the "none" cache backend, so pipeline code can
// always call through a Cache without nil checks.
type NullCache struct{}

// NewNullCache creates a cache that never stores anything.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get reports a miss for every key.
func (c *NullCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the entry.
func (c *NullCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

// Delete is a no-op.
func (c *NullCache) Delete(_ context.Context, _ string) error {
	return nil
}

// Close is a no-op.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
