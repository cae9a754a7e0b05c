package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Useful when several deployments or data sources share one cache
// backend and their entries must not collide.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SnapshotKey generates a prefixed key for a road network snapshot.
func (k *ScopedKeyer) SnapshotKey(source string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(source, opts)
}

// NetworkKey generates a prefixed key for a compliant network.
func (k *ScopedKeyer) NetworkKey(snapshotHash string, opts NetworkKeyOpts) string {
	return k.prefix + k.inner.NetworkKey(snapshotHash, opts)
}
