package junction

import (
	"testing"

	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

func TestCorridorCoversEveryLeg(t *testing.T) {
	g := buildStar(t, 0, 90, 180, 270)
	corridor := Corridor(g, 1, testConfig(t))
	if len(corridor) != 4 {
		t.Fatalf("corridor has %d polygons, want 4", len(corridor))
	}
	for i, poly := range corridor {
		if len(poly) == 0 || len(poly[0]) < 4 {
			t.Errorf("polygon %d is degenerate: %v", i, poly)
		}
	}
}

func TestCorridorUsesLaneWidth(t *testing.T) {
	g := buildStar(t, 0, 180)
	e, _ := g.Edge(roadnet.EdgeID{U: 1, V: 2, Seq: 0})
	e.Attr.LaneWidth = 8.0

	corridor := Corridor(g, 1, testConfig(t))
	if len(corridor) != 2 {
		t.Fatalf("corridor has %d polygons, want 2", len(corridor))
	}
}

func TestCorridorUnknownNodeIsEmpty(t *testing.T) {
	g := roadnet.New()
	if got := Corridor(g, 7, testConfig(t)); len(got) != 0 {
		t.Errorf("corridor for missing node = %v, want empty", got)
	}
}

func TestCorridorDegenerateGeometry(t *testing.T) {
	g := roadnet.New()
	_ = g.AddNode(roadnet.Node{ID: 1, Point: testCenter})
	_ = g.AddNode(roadnet.Node{ID: 2, Point: testCenter})
	// Zero-length edge between coincident nodes.
	_ = g.AddEdge(roadnet.Edge{ID: roadnet.EdgeID{U: 1, V: 2, Seq: 0}})

	if got := Corridor(g, 1, testConfig(t)); len(got) != 0 {
		t.Errorf("corridor over zero-length edge = %v, want empty", got)
	}
}
