package store

import (
	"context"
	"testing"

	"github.com/paulmach/orb"

	"github.com/urbanpilot/oddnet/pkg/junction"
	"github.com/urbanpilot/oddnet/pkg/odd"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

func testJunction(node roadnet.NodeID) *junction.Result {
	return &junction.Result{
		Node:  node,
		Point: orb.Point{137.95, 36.11},
		Type:  junction.TypeCrossroad,
		Conflicts: junction.Counts{
			junction.ConflictIntersect: 1,
			junction.ConflictMerge:     3,
			junction.ConflictNoConflict:      2,
		},
	}
}

func testEdge(u, v roadnet.NodeID) *roadnet.Edge {
	return &roadnet.Edge{
		ID: roadnet.EdgeID{U: u, V: v, Seq: 0},
		Geometry: orb.LineString{
			{137.95, 36.11},
			{137.951, 36.11},
		},
		Attr: roadnet.Attributes{
			HighwayType: "residential",
			SpeedLimit:  30,
		},
	}
}

func TestMemoryJunctionRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.PutJunction(ctx, testJunction(1)); err != nil {
		t.Fatalf("PutJunction failed: %v", err)
	}
	if err := s.PutJunction(ctx, testJunction(2)); err != nil {
		t.Fatalf("PutJunction failed: %v", err)
	}

	got, err := s.Junctions(ctx)
	if err != nil {
		t.Fatalf("Junctions failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 junctions, got %d", len(got))
	}
	if got[0].Node != 1 || got[1].Node != 2 {
		t.Errorf("expected sorted node IDs [1 2], got [%d %d]", got[0].Node, got[1].Node)
	}
	if got[0].Type != junction.TypeCrossroad {
		t.Errorf("expected crossroad, got %s", got[0].Type)
	}
	if got[0].Conflicts[junction.ConflictMerge] != 3 {
		t.Errorf("expected 3 merges, got %d", got[0].Conflicts[junction.ConflictMerge])
	}
}

func TestMemoryPutJunctionReplaces(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.PutJunction(ctx, testJunction(1)); err != nil {
		t.Fatalf("PutJunction failed: %v", err)
	}
	updated := testJunction(1)
	updated.Type = junction.TypeRoundabout
	if err := s.PutJunction(ctx, updated); err != nil {
		t.Fatalf("PutJunction failed: %v", err)
	}

	got, err := s.Junctions(ctx)
	if err != nil {
		t.Fatalf("Junctions failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 junction after replace, got %d", len(got))
	}
	if got[0].Type != junction.TypeRoundabout {
		t.Errorf("expected roundabout after replace, got %s", got[0].Type)
	}
}

func TestMemoryNodeFeatureSetSemantics(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	zone := odd.SchoolZoneFeature{Name: "North Elementary", Distance: 120}
	for i := 0; i < 3; i++ {
		if err := s.AppendNodeFeature(ctx, 1, zone); err != nil {
			t.Fatalf("AppendNodeFeature failed: %v", err)
		}
	}
	if err := s.AppendNodeFeature(ctx, 1, odd.TrafficSignalFeature{}); err != nil {
		t.Fatalf("AppendNodeFeature failed: %v", err)
	}
	if err := s.AppendNodeFeature(ctx, 2, odd.ParkingLotFeature{Distance: 40}); err != nil {
		t.Fatalf("AppendNodeFeature failed: %v", err)
	}

	got, err := s.NodeFeatures(ctx)
	if err != nil {
		t.Fatalf("NodeFeatures failed: %v", err)
	}
	if len(got[1]) != 2 {
		t.Errorf("expected 2 distinct features for node 1, got %d", len(got[1]))
	}
	if len(got[2]) != 1 {
		t.Errorf("expected 1 feature for node 2, got %d", len(got[2]))
	}

	foundZone := false
	for _, f := range got[1] {
		if sz, ok := f.(odd.SchoolZoneFeature); ok {
			foundZone = true
			if sz.Name != "North Elementary" {
				t.Errorf("expected school zone name to survive, got %q", sz.Name)
			}
		}
	}
	if !foundZone {
		t.Error("expected school zone feature for node 1")
	}
}

func TestMemoryEdgeRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.PutEdge(ctx, testEdge(2, 1)); err != nil {
		t.Fatalf("PutEdge failed: %v", err)
	}
	if err := s.PutEdge(ctx, testEdge(1, 2)); err != nil {
		t.Fatalf("PutEdge failed: %v", err)
	}
	// Same ID again: replaced, not duplicated.
	if err := s.PutEdge(ctx, testEdge(1, 2)); err != nil {
		t.Fatalf("PutEdge failed: %v", err)
	}

	got, err := s.Edges(ctx)
	if err != nil {
		t.Fatalf("Edges failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(got))
	}
	if got[0].Attr.HighwayType != "residential" {
		t.Errorf("expected highway type to survive, got %q", got[0].Attr.HighwayType)
	}
	if got[0].Attr.SpeedLimit != 30 {
		t.Errorf("expected speed limit 30, got %v", got[0].Attr.SpeedLimit)
	}
	if len(got[0].Geometry) != 2 {
		t.Errorf("expected 2-point geometry, got %d points", len(got[0].Geometry))
	}
}

func TestMemoryDrop(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.PutJunction(ctx, testJunction(1)); err != nil {
		t.Fatalf("PutJunction failed: %v", err)
	}
	if err := s.PutEdge(ctx, testEdge(1, 2)); err != nil {
		t.Fatalf("PutEdge failed: %v", err)
	}
	if err := s.AppendNodeFeature(ctx, 1, odd.TrafficSignalFeature{}); err != nil {
		t.Fatalf("AppendNodeFeature failed: %v", err)
	}

	if err := s.Drop(ctx); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}

	junctions, err := s.Junctions(ctx)
	if err != nil {
		t.Fatalf("Junctions failed: %v", err)
	}
	edges, err := s.Edges(ctx)
	if err != nil {
		t.Fatalf("Edges failed: %v", err)
	}
	features, err := s.NodeFeatures(ctx)
	if err != nil {
		t.Fatalf("NodeFeatures failed: %v", err)
	}
	if len(junctions) != 0 || len(edges) != 0 || len(features) != 0 {
		t.Errorf("expected empty store after drop, got %d junctions, %d edges, %d feature nodes",
			len(junctions), len(edges), len(features))
	}
}

func TestMemoryClosed(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := s.PutJunction(ctx, testJunction(1)); err != ErrClosed {
		t.Errorf("expected ErrClosed from PutJunction, got %v", err)
	}
	if err := s.PutEdge(ctx, testEdge(1, 2)); err != ErrClosed {
		t.Errorf("expected ErrClosed from PutEdge, got %v", err)
	}
	if _, err := s.Junctions(ctx); err != ErrClosed {
		t.Errorf("expected ErrClosed from Junctions, got %v", err)
	}
	if err := s.Drop(ctx); err != ErrClosed {
		t.Errorf("expected ErrClosed from Drop, got %v", err)
	}
}
