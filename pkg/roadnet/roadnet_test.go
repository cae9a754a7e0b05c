package roadnet

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func buildCross(t *testing.T) *Graph {
	t.Helper()
	g := New()
	nodes := []Node{
		{ID: 1, Point: orb.Point{137.95, 36.11}},
		{ID: 2, Point: orb.Point{137.95, 36.112}},  // north
		{ID: 3, Point: orb.Point{137.952, 36.11}},  // east
		{ID: 4, Point: orb.Point{137.95, 36.108}},  // south
		{ID: 5, Point: orb.Point{137.948, 36.11}},  // west
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%d): %v", n.ID, err)
		}
	}
	for _, id := range []EdgeID{
		{U: 1, V: 2, Seq: 0},
		{U: 1, V: 3, Seq: 0},
		{U: 4, V: 1, Seq: 0},
		{U: 1, V: 5, Seq: 0},
	} {
		if err := g.AddEdge(Edge{ID: id}); err != nil {
			t.Fatalf("AddEdge(%s): %v", id, err)
		}
	}
	return g
}

func TestEdgeIDString(t *testing.T) {
	id := EdgeID{U: 12, V: 34, Seq: 2}
	if got := id.String(); got != "12_34_2" {
		t.Errorf("String() = %q, want %q", got, "12_34_2")
	}
	parsed, err := ParseEdgeID("12_34_2")
	if err != nil {
		t.Fatalf("ParseEdgeID: %v", err)
	}
	if parsed != id {
		t.Errorf("ParseEdgeID = %+v, want %+v", parsed, id)
	}
}

func TestParseEdgeIDRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "1_2", "a_b_c", "1_2_3_4"} {
		if _, err := ParseEdgeID(s); !errors.Is(err, ErrBadEdgeID) {
			t.Errorf("ParseEdgeID(%q) error = %v, want ErrBadEdgeID", s, err)
		}
	}
}

func TestAddNodeRejectsDuplicate(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: 1}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(Node{ID: 1}); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("second AddNode error = %v, want ErrDuplicateNode", err)
	}
}

func TestAddEdgeValidation(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: 1, Point: orb.Point{0, 0}})
	_ = g.AddNode(Node{ID: 2, Point: orb.Point{0, 0.001}})

	if err := g.AddEdge(Edge{ID: EdgeID{U: 1, V: 9, Seq: 0}}); !errors.Is(err, ErrUnknownEndpoint) {
		t.Errorf("missing endpoint error = %v, want ErrUnknownEndpoint", err)
	}
	if err := g.AddEdge(Edge{ID: EdgeID{U: 1, V: 2, Seq: 0}}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge(Edge{ID: EdgeID{U: 1, V: 2, Seq: 0}}); !errors.Is(err, ErrDuplicateEdge) {
		t.Errorf("duplicate edge error = %v, want ErrDuplicateEdge", err)
	}
	// Parallel edge with a fresh sequence is allowed.
	if err := g.AddEdge(Edge{ID: EdgeID{U: 1, V: 2, Seq: 1}}); err != nil {
		t.Errorf("parallel edge: %v", err)
	}
}

func TestAddEdgeSynthesizesGeometry(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: 1, Point: orb.Point{137.95, 36.11}})
	_ = g.AddNode(Node{ID: 2, Point: orb.Point{137.96, 36.12}})
	_ = g.AddEdge(Edge{ID: EdgeID{U: 1, V: 2, Seq: 0}})

	e, ok := g.Edge(EdgeID{U: 1, V: 2, Seq: 0})
	if !ok {
		t.Fatal("edge not found")
	}
	if len(e.Geometry) != 2 {
		t.Fatalf("geometry has %d points, want 2", len(e.Geometry))
	}
	if e.Geometry[0] != (orb.Point{137.95, 36.11}) || e.Geometry[1] != (orb.Point{137.96, 36.12}) {
		t.Errorf("geometry = %v, want straight line between endpoints", e.Geometry)
	}
}

func TestIncidentEdgesOrderedByBearing(t *testing.T) {
	g := buildCross(t)
	edges := g.IncidentEdges(1)
	if len(edges) != 4 {
		t.Fatalf("got %d incident edges, want 4", len(edges))
	}
	// Departure bearings from node 1: north 0, east 90, south 180, west 270.
	want := []NodeID{2, 3, 4, 5}
	for i, e := range edges {
		if got := e.Other(1); got != want[i] {
			t.Errorf("incident[%d] leads to %d, want %d", i, got, want[i])
		}
	}
}

func TestIncidentEdgesDeterministic(t *testing.T) {
	g := buildCross(t)
	first := g.IncidentEdges(1)
	second := g.IncidentEdges(1)
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("ordering changed between calls at index %d", i)
		}
	}
}

func TestDegreeAndCounts(t *testing.T) {
	g := buildCross(t)
	if got := g.Degree(1); got != 4 {
		t.Errorf("Degree(1) = %d, want 4", got)
	}
	if got := g.Degree(2); got != 1 {
		t.Errorf("Degree(2) = %d, want 1", got)
	}
	if g.NodeCount() != 5 || g.EdgeCount() != 4 {
		t.Errorf("counts = (%d, %d), want (5, 4)", g.NodeCount(), g.EdgeCount())
	}
}

func TestEdgeOther(t *testing.T) {
	e := &Edge{ID: EdgeID{U: 7, V: 9, Seq: 0}}
	if got := e.Other(7); got != 9 {
		t.Errorf("Other(7) = %d, want 9", got)
	}
	if got := e.Other(9); got != 7 {
		t.Errorf("Other(9) = %d, want 7", got)
	}
}

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"50", 50, true},
		{"30 mph", 30 * 1.60934, true},
		{"40km/h", 40, true},
		{"none", 0, false},
		{"unlimited", 0, false},
		{"signals", 0, false},
		{"", 0, false},
		{"walk", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseSpeed(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseSpeed(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseSpeed(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseWidthMeters(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"12m", 12, true},
		{"12 m", 12, true},
		{"40ft", 40 * 0.3048, true},
		{`16'3"`, 16*0.3048 + 3*0.0254, true},
		{"2km", 2000, true},
		{"5 mi", 5 * 1609.344, true},
		{"6.5", 6.5, true},
		{"wide", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseWidthMeters(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseWidthMeters(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseWidthMeters(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTurnLanes(t *testing.T) {
	got := ParseTurnLanes("left|through;right")
	want := []Turn{TurnLeft, TurnThrough, TurnRight}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("turn[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseTurnLanesDeduplicatesAndSkipsUnknown(t *testing.T) {
	got := ParseTurnLanes("through|through|wiggle;left")
	want := []Turn{TurnThrough, TurnLeft}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("turn[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if ParseTurnLanes("") != nil {
		t.Error("empty marking should yield nil")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := buildCross(t)
	e, _ := g.Edge(EdgeID{U: 1, V: 2, Seq: 0})
	e.Attr = Attributes{
		HighwayType:  "residential",
		SpeedLimit:   40,
		LaneWidth:    3.5,
		LaneMarkings: []Turn{TurnLeft, TurnThrough},
		Oneway:       true,
		IsMajorRoad:  false,
	}
	n, _ := g.Node(2)
	n.Tags[TagHighway] = HighwayTrafficSignals

	data, err := MarshalSnapshot(g)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}
	back, err := ReadSnapshot(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Fatalf("counts = (%d, %d), want (%d, %d)",
			back.NodeCount(), back.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
	be, ok := back.Edge(EdgeID{U: 1, V: 2, Seq: 0})
	if !ok {
		t.Fatal("edge missing after round trip")
	}
	if be.Attr.HighwayType != "residential" || be.Attr.SpeedLimit != 40 || !be.Attr.Oneway {
		t.Errorf("attributes lost: %+v", be.Attr)
	}
	if len(be.Attr.LaneMarkings) != 2 {
		t.Errorf("lane markings = %v, want 2 entries", be.Attr.LaneMarkings)
	}
	bn, _ := back.Node(2)
	if bn.Tags[TagHighway] != HighwayTrafficSignals {
		t.Errorf("node tags lost: %v", bn.Tags)
	}
}

func TestReadSnapshotRejectsDanglingEndpoint(t *testing.T) {
	data := []byte(`{"nodes":[{"id":1,"lon":0,"lat":0}],"edges":[{"u":1,"v":2,"seq":0}]}`)
	if _, err := ReadSnapshot(bytes.NewReader(data)); !errors.Is(err, ErrUnknownEndpoint) {
		t.Errorf("error = %v, want ErrUnknownEndpoint", err)
	}
}
