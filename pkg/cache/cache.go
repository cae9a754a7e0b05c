// Package cache provides caching for road network snapshots and analysis
// results, with implementations for different backends:
//   - memory-less null: caching disabled (tests, one-shot runs)
//   - file: file-based storage for CLI usage
//   - redis: Redis-backed storage for multi-instance server deployments
//
// Cached values are opaque byte slices; callers are responsible for
// serialization. Keys are generated through the Keyer interface so that
// the same extent and criteria always map to the same entry regardless
// of which component asks.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached artifact. Snapshots change when the upstream
// map data changes; computed networks only when snapshots or criteria do.
const (
	TTLSnapshot = 24 * time.Hour
	TTLNetwork  = 6 * time.Hour
)

// Cache is the interface for caching backends.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in the cache with a TTL.
	// A TTL of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// SnapshotKeyOpts identifies a road network snapshot request.
// Either the bounding box or the point+distance fields are set,
// depending on how the extent was specified.
type SnapshotKeyOpts struct {
	West     float64 `json:"west"`
	South    float64 `json:"south"`
	East     float64 `json:"east"`
	North    float64 `json:"north"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	Distance float64 `json:"distance"`
}

// NetworkKeyOpts identifies a compliant network computation.
type NetworkKeyOpts struct {
	Mode          string  `json:"mode"`
	Criteria      any     `json:"criteria"`
	SnapTolerance float64 `json:"snap_tolerance"`
}

// Keyer generates cache keys for the different cached artifacts.
type Keyer interface {
	// SnapshotKey generates a key for a raw road network snapshot.
	SnapshotKey(source string, opts SnapshotKeyOpts) string

	// NetworkKey generates a key for a computed compliant network.
	NetworkKey(snapshotHash string, opts NetworkKeyOpts) string
}

// DefaultKeyer generates unscoped cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer without any prefix.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SnapshotKey generates a key for a raw road network snapshot.
func (k *DefaultKeyer) SnapshotKey(source string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", source, opts)
}

// NetworkKey generates a key for a computed compliant network.
func (k *DefaultKeyer) NetworkKey(snapshotHash string, opts NetworkKeyOpts) string {
	return hashKey("network", snapshotHash, opts)
}
