// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about analysis runs, compliance
// evaluation, cache operations, and snapshot fetches.
//
// The package uses a simple hooks pattern: hook interfaces per event
// category, no-op defaults, registration at startup. Hooks are
// registered by main, not by libraries, which avoids import cycles and
// keeps the core packages free of observability framework imports.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAnalysisHooks(&myAnalysisHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Analysis().OnAnalyzeStart(ctx, nodeCount)
//	// ... analyze ...
//	observability.Analysis().OnAnalyzeComplete(ctx, junctionCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Analysis Hooks
// =============================================================================

// AnalysisHooks receives events from the analysis and network pipeline.
type AnalysisHooks interface {
	// Junction analysis events
	OnAnalyzeStart(ctx context.Context, nodeCount int)
	OnAnalyzeComplete(ctx context.Context, junctionCount int, duration time.Duration, err error)

	// Compliance evaluation events
	OnEvaluateStart(ctx context.Context, edgeCount int)
	OnEvaluateComplete(ctx context.Context, compliantEdges int, duration time.Duration, err error)

	// Network selection events
	OnSelectStart(ctx context.Context, edgeCount int)
	OnSelectComplete(ctx context.Context, polylineCount int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Snapshot Hooks
// =============================================================================

// SnapshotHooks receives events from snapshot provider operations.
type SnapshotHooks interface {
	// OnFetchStart records an outgoing snapshot request.
	OnFetchStart(ctx context.Context, source string)

	// OnFetchComplete records a finished snapshot fetch.
	OnFetchComplete(ctx context.Context, source string, nodeCount, edgeCount int, duration time.Duration)

	// OnFetchError records a failed snapshot fetch.
	OnFetchError(ctx context.Context, source string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAnalysisHooks is a no-op implementation of AnalysisHooks.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnAnalyzeStart(context.Context, int)                            {}
func (NoopAnalysisHooks) OnAnalyzeComplete(context.Context, int, time.Duration, error)   {}
func (NoopAnalysisHooks) OnEvaluateStart(context.Context, int)                           {}
func (NoopAnalysisHooks) OnEvaluateComplete(context.Context, int, time.Duration, error)  {}
func (NoopAnalysisHooks) OnSelectStart(context.Context, int)                             {}
func (NoopAnalysisHooks) OnSelectComplete(context.Context, int, time.Duration)           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSnapshotHooks is a no-op implementation of SnapshotHooks.
type NoopSnapshotHooks struct{}

func (NoopSnapshotHooks) OnFetchStart(context.Context, string)                           {}
func (NoopSnapshotHooks) OnFetchComplete(context.Context, string, int, int, time.Duration) {}
func (NoopSnapshotHooks) OnFetchError(context.Context, string, error)                    {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	analysisHooks AnalysisHooks = NoopAnalysisHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	snapshotHooks SnapshotHooks = NoopSnapshotHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalysisHooks registers custom analysis hooks.
// This should be called once at application startup before any analysis runs.
func SetAnalysisHooks(h AnalysisHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analysisHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetSnapshotHooks registers custom snapshot hooks.
// This should be called once at application startup before any snapshot fetches.
func SetSnapshotHooks(h SnapshotHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		snapshotHooks = h
	}
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analysisHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Snapshot returns the registered snapshot hooks.
func Snapshot() SnapshotHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return snapshotHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	analysisHooks = NoopAnalysisHooks{}
	cacheHooks = NoopCacheHooks{}
	snapshotHooks = NoopSnapshotHooks{}
}
