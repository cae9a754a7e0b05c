package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Analysis hooks
	a := NoopAnalysisHooks{}
	a.OnAnalyzeStart(ctx, 100)
	a.OnAnalyzeComplete(ctx, 12, time.Second, nil)
	a.OnEvaluateStart(ctx, 250)
	a.OnEvaluateComplete(ctx, 180, time.Second, nil)
	a.OnSelectStart(ctx, 180)
	a.OnSelectComplete(ctx, 3, time.Second)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "snapshot")
	c.OnCacheMiss(ctx, "network")
	c.OnCacheSet(ctx, "snapshot", 1024)

	// Snapshot hooks
	s := NoopSnapshotHooks{}
	s.OnFetchStart(ctx, "overpass")
	s.OnFetchComplete(ctx, "overpass", 100, 250, time.Second)
	s.OnFetchError(ctx, "overpass", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Analysis() should return NoopAnalysisHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Snapshot().(NoopSnapshotHooks); !ok {
		t.Error("Snapshot() should return NoopSnapshotHooks by default")
	}

	// Set custom hooks
	customAnalysis := &testAnalysisHooks{}
	SetAnalysisHooks(customAnalysis)
	if Analysis() != customAnalysis {
		t.Error("SetAnalysisHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customSnapshot := &testSnapshotHooks{}
	SetSnapshotHooks(customSnapshot)
	if Snapshot() != customSnapshot {
		t.Error("SetSnapshotHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Analysis().(NoopAnalysisHooks); !ok {
		t.Error("Reset() should restore NoopAnalysisHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testAnalysisHooks{}
	SetAnalysisHooks(custom)

	// Setting nil should be ignored
	SetAnalysisHooks(nil)

	if Analysis() != custom {
		t.Error("SetAnalysisHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testAnalysisHooks struct{ NoopAnalysisHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testSnapshotHooks struct{ NoopSnapshotHooks }
