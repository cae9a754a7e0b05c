package odd

import (
	"fmt"
	"testing"

	"github.com/paulmach/orb"

	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

func edgeFrom(id roadnet.EdgeID, coords ...orb.Point) *roadnet.Edge {
	return &roadnet.Edge{ID: id, Geometry: orb.LineString(coords)}
}

func TestSelectLargestPicksLongestComponent(t *testing.T) {
	// A three-segment chain and a single detached short edge.
	chain := []*roadnet.Edge{
		edgeFrom(roadnet.EdgeID{U: 1, V: 2, Seq: 0}, orb.Point{137.950, 36.110}, orb.Point{137.951, 36.110}),
		edgeFrom(roadnet.EdgeID{U: 2, V: 3, Seq: 0}, orb.Point{137.951, 36.110}, orb.Point{137.952, 36.110}),
		edgeFrom(roadnet.EdgeID{U: 3, V: 4, Seq: 0}, orb.Point{137.952, 36.110}, orb.Point{137.953, 36.110}),
	}
	detached := edgeFrom(roadnet.EdgeID{U: 5, V: 6, Seq: 0}, orb.Point{137.960, 36.120}, orb.Point{137.9601, 36.120})

	got := SelectLargest(append(chain, detached), 0)
	if len(got) != 3 {
		t.Fatalf("selected %d polylines, want 3", len(got))
	}
	for _, line := range got {
		if line[0][1] != 36.110 {
			t.Errorf("polyline %v does not belong to the chain", line)
		}
	}
}

func TestSelectLargestFavorsLengthOverCount(t *testing.T) {
	// Many tiny connected fragments versus one long edge.
	var tiny []*roadnet.Edge
	for i := 0; i < 5; i++ {
		x := 137.95 + float64(i)*0.00001
		tiny = append(tiny, edgeFrom(
			roadnet.EdgeID{U: roadnet.NodeID(i + 1), V: roadnet.NodeID(i + 2), Seq: 0},
			orb.Point{x, 36.11}, orb.Point{x + 0.00001, 36.11},
		))
	}
	long := edgeFrom(roadnet.EdgeID{U: 10, V: 11, Seq: 0}, orb.Point{138.0, 36.2}, orb.Point{138.05, 36.2})

	got := SelectLargest(append(tiny, long), 0)
	if len(got) != 1 {
		t.Fatalf("selected %d polylines, want the single long edge", len(got))
	}
	if got[0][0] != (orb.Point{138.0, 36.2}) {
		t.Errorf("selected %v, want the long edge", got[0])
	}
}

func TestSelectLargestEmptyInput(t *testing.T) {
	if got := SelectLargest(nil, 0); got != nil {
		t.Errorf("SelectLargest(nil) = %v, want nil", got)
	}
	if got := SelectLargest([]*roadnet.Edge{}, 0); got != nil {
		t.Errorf("SelectLargest(empty) = %v, want nil", got)
	}
}

func TestSelectLargestExactCoordinatesDoNotMerge(t *testing.T) {
	// Two edges whose shared endpoint differs in the last decimal: without a
	// snap tolerance they stay separate components.
	a := edgeFrom(roadnet.EdgeID{U: 1, V: 2, Seq: 0}, orb.Point{137.95, 36.11}, orb.Point{137.9510000001, 36.11})
	b := edgeFrom(roadnet.EdgeID{U: 2, V: 3, Seq: 0}, orb.Point{137.9510000002, 36.11}, orb.Point{137.96, 36.11})

	got := SelectLargest([]*roadnet.Edge{a, b}, 0)
	if len(got) != 1 {
		t.Fatalf("selected %d polylines, want 1 (the longer fragment)", len(got))
	}

	// With a one-meter snap tolerance the near-duplicates merge and both
	// edges belong to one component.
	got = SelectLargest([]*roadnet.Edge{a, b}, 1.0)
	if len(got) != 2 {
		t.Fatalf("with snapping, selected %d polylines, want 2", len(got))
	}
}

func TestSelectLargestConnectivity(t *testing.T) {
	edges := []*roadnet.Edge{
		edgeFrom(roadnet.EdgeID{U: 1, V: 2, Seq: 0}, orb.Point{137.950, 36.110}, orb.Point{137.951, 36.110}),
		edgeFrom(roadnet.EdgeID{U: 2, V: 3, Seq: 0}, orb.Point{137.951, 36.110}, orb.Point{137.951, 36.111}),
		edgeFrom(roadnet.EdgeID{U: 4, V: 5, Seq: 0}, orb.Point{138.0, 36.2}, orb.Point{138.0001, 36.2}),
	}
	got := SelectLargest(edges, 0)

	// Every output vertex must be reachable from every other using output
	// segments only: rebuild the adjacency and walk it.
	adj := make(map[orb.Point][]orb.Point)
	for _, line := range got {
		for i := 0; i+1 < len(line); i++ {
			adj[line[i]] = append(adj[line[i]], line[i+1])
			adj[line[i+1]] = append(adj[line[i+1]], line[i])
		}
	}
	if len(adj) == 0 {
		t.Fatal("no output vertices")
	}
	var start orb.Point
	for p := range adj {
		start = p
		break
	}
	visited := map[orb.Point]bool{start: true}
	queue := []orb.Point{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, q := range adj[p] {
			if !visited[q] {
				visited[q] = true
				queue = append(queue, q)
			}
		}
	}
	if len(visited) != len(adj) {
		t.Errorf("output spans %d vertices but only %d are reachable", len(adj), len(visited))
	}
}

func TestSelectLargestIdempotent(t *testing.T) {
	edges := []*roadnet.Edge{
		edgeFrom(roadnet.EdgeID{U: 1, V: 2, Seq: 0}, orb.Point{137.950, 36.110}, orb.Point{137.951, 36.110}),
		edgeFrom(roadnet.EdgeID{U: 2, V: 3, Seq: 0}, orb.Point{137.951, 36.110}, orb.Point{137.952, 36.110}),
		edgeFrom(roadnet.EdgeID{U: 4, V: 5, Seq: 0}, orb.Point{138.0, 36.2}, orb.Point{138.001, 36.2}),
	}
	first := SelectLargest(edges, 0)
	// Reversed input order selects the same set of polylines.
	reversed := []*roadnet.Edge{edges[2], edges[1], edges[0]}
	second := SelectLargest(reversed, 0)

	if len(first) != len(second) {
		t.Fatalf("selected %d then %d polylines", len(first), len(second))
	}
	seen := make(map[string]bool)
	for _, line := range first {
		seen[fmt.Sprint(line)] = true
	}
	for _, line := range second {
		if !seen[fmt.Sprint(line)] {
			t.Errorf("polyline %v missing from first run", line)
		}
	}
}
