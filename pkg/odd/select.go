package odd

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// meters per degree of latitude, used to turn the snap tolerance into a
// quantization cell.
const metersPerDeg = 111320.0

// SelectLargest extracts the largest connected subnetwork from the compliant
// edges: connectivity is computed over the edges' endpoint coordinates, and
// the component maximizing total geodesic length wins. Long contiguous
// corridors beat clusters of short fragments regardless of edge count.
//
// snapTol is the coordinate snap tolerance in meters. Zero keeps the exact
// floating-point coordinates, so two segments only connect where their
// coordinates are bit-identical; a positive tolerance merges vertices within
// roughly that distance.
//
// Zero compliant edges yield an empty collection, which callers report as
// "no compliant network" rather than an error. The result is a pure function
// of the input set: edge order does not change which component wins.
func SelectLargest(edges []*roadnet.Edge, snapTol float64) []orb.LineString {
	if len(edges) == 0 {
		return nil
	}

	cell := 0.0
	if snapTol > 0 {
		cell = snapTol / metersPerDeg
	}
	quantize := func(p orb.Point) orb.Point {
		if cell == 0 {
			return p
		}
		return orb.Point{
			math.Floor(p[0]/cell+0.5) * cell,
			math.Floor(p[1]/cell+0.5) * cell,
		}
	}

	uf := newUnionFind()
	lengths := make(map[orb.Point]float64) // accumulated on component roots later

	// Chain every consecutive coordinate pair of every edge.
	for _, e := range edges {
		for i := 0; i+1 < len(e.Geometry); i++ {
			u := quantize(e.Geometry[i])
			v := quantize(e.Geometry[i+1])
			uf.union(u, v)
			lengths[u] += geo.Distance(e.Geometry[i], e.Geometry[i+1])
		}
	}

	// Roll segment lengths up to component roots, and track each component's
	// lexicographically smallest vertex as its canonical identity.
	componentLen := make(map[orb.Point]float64)
	for p, l := range lengths {
		componentLen[uf.find(p)] += l
	}
	minVertex := make(map[orb.Point]orb.Point)
	for p := range uf.parent {
		root := uf.find(p)
		if cur, ok := minVertex[root]; !ok || lessPoint(p, cur) {
			minVertex[root] = p
		}
	}

	// Pick the heaviest component; exact-length ties break on the canonical
	// vertex so the winner does not depend on iteration order.
	var winner orb.Point
	best := -1.0
	found := false
	for root, l := range componentLen {
		if l > best || (l == best && found && lessPoint(minVertex[root], minVertex[winner])) {
			best, winner, found = l, root, true
		}
	}
	if !found {
		return nil
	}

	var out []orb.LineString
	for _, e := range edges {
		if len(e.Geometry) < 2 {
			continue
		}
		if uf.find(quantize(e.Geometry[0])) == winner {
			out = append(out, e.Geometry)
		}
	}
	return out
}

func lessPoint(a, b orb.Point) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

// unionFind is a coordinate-keyed disjoint-set forest with path compression
// and union by size.
type unionFind struct {
	parent map[orb.Point]orb.Point
	size   map[orb.Point]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[orb.Point]orb.Point),
		size:   make(map[orb.Point]int),
	}
}

func (uf *unionFind) find(p orb.Point) orb.Point {
	root, ok := uf.parent[p]
	if !ok {
		uf.parent[p] = p
		uf.size[p] = 1
		return p
	}
	if root == p {
		return p
	}
	top := uf.find(root)
	uf.parent[p] = top
	return top
}

func (uf *unionFind) union(a, b orb.Point) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	// Merge the smaller tree into the larger; break ties deterministically.
	if uf.size[ra] < uf.size[rb] || (uf.size[ra] == uf.size[rb] && lessPoint(rb, ra)) {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}
