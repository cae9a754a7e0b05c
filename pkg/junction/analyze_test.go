package junction

import (
	"context"
	"testing"

	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

func TestAnalyzeGraphCoversEveryNode(t *testing.T) {
	g := buildStar(t, 0, 90, 180, 270)
	results, err := AnalyzeGraph(context.Background(), g, Config{})
	if err != nil {
		t.Fatalf("AnalyzeGraph: %v", err)
	}
	if len(results) != g.NodeCount() {
		t.Fatalf("got %d results, want %d", len(results), g.NodeCount())
	}

	center := results[1]
	if center.Type != TypeCrossroad {
		t.Errorf("center type = %v, want %v", center.Type, TypeCrossroad)
	}
	if center.Conflicts.Total() != 6 {
		t.Errorf("center conflicts = %d, want 6", center.Conflicts.Total())
	}
	if center.Point != testCenter {
		t.Errorf("center point = %v, want %v", center.Point, testCenter)
	}

	// Leaf nodes fall back to OTHER with zero conflict pairs.
	leaf := results[2]
	if leaf.Type != TypeOther {
		t.Errorf("leaf type = %v, want %v", leaf.Type, TypeOther)
	}
	if leaf.Conflicts.Total() != 0 {
		t.Errorf("leaf conflicts = %d, want 0", leaf.Conflicts.Total())
	}
}

func TestAnalyzeGraphDeterministic(t *testing.T) {
	g := buildStar(t, 0, 90, 180, 270)

	first, err := AnalyzeGraph(context.Background(), g, Config{Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 3; run++ {
		again, err := AnalyzeGraph(context.Background(), g, Config{Workers: 2})
		if err != nil {
			t.Fatal(err)
		}
		for id, want := range first {
			got, ok := again[id]
			if !ok {
				t.Fatalf("run %d: node %d missing", run, id)
			}
			if got.Type != want.Type || got.Conflicts.Total() != want.Conflicts.Total() {
				t.Errorf("run %d: node %d = (%v, %d), want (%v, %d)",
					run, id, got.Type, got.Conflicts.Total(), want.Type, want.Conflicts.Total())
			}
		}
	}
}

func TestAnalyzeGraphCanceledContext(t *testing.T) {
	g := buildStar(t, 0, 90, 180, 270)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := AnalyzeGraph(ctx, g, Config{}); err == nil {
		t.Error("AnalyzeGraph with canceled context = nil error, want context error")
	}
}

func TestAnalyzeGraphEmpty(t *testing.T) {
	results, err := AnalyzeGraph(context.Background(), roadnet.New(), Config{})
	if err != nil {
		t.Fatalf("AnalyzeGraph: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}
