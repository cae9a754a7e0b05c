package junction

import (
	"math"
	"sort"

	"github.com/urbanpilot/oddnet/pkg/geomath"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// Classify assigns a topology label to a node from its tags and the bearings
// of its incident roads.
//
// An explicit circular-loop marker on the node or any incident road wins
// immediately as ROUNDABOUT. Otherwise the label is decided by the number of
// legs and the angular separations between consecutive departure bearings:
//
//   - fewer than 3 legs: OTHER (dead end or pass-through)
//   - 3 legs, one separation near 180°: T_JUNCTION
//   - 3 legs, all separations near 120°: Y_JUNCTION
//   - 4 legs, all separations near 90°: CROSSROAD
//   - anything else: OTHER
//
// "Near" means within Config.TypeAngleTol degrees. Classify always returns a
// label; OTHER is the fallback for every shape it cannot name.
func Classify(g *roadnet.Graph, id roadnet.NodeID, cfg Config) Type {
	node, ok := g.Node(id)
	if !ok {
		return TypeOther
	}

	if isCircular(node.Tags[roadnet.TagJunction]) {
		return TypeRoundabout
	}

	edges := g.IncidentEdges(id)
	for _, e := range edges {
		if e.Attr.Roundabout {
			return TypeRoundabout
		}
	}

	if len(edges) < 3 {
		return TypeOther
	}

	seps := legSeparations(g, id)

	switch len(edges) {
	case 3:
		for _, s := range seps {
			if math.Abs(s-180) <= cfg.TypeAngleTol {
				return TypeT
			}
		}
		if allNear(seps, 120, cfg.TypeAngleTol) {
			return TypeY
		}
	case 4:
		if allNear(seps, 90, cfg.TypeAngleTol) {
			return TypeCrossroad
		}
	}
	return TypeOther
}

func isCircular(tag string) bool {
	return tag == roadnet.JunctionRoundabout || tag == roadnet.JunctionCircular
}

// legSeparations returns the angular gaps between consecutive departure
// bearings at the node, sorted around the full circle. The gaps sum to 360.
func legSeparations(g *roadnet.Graph, id roadnet.NodeID) []float64 {
	node, _ := g.Node(id)
	edges := g.IncidentEdges(id)

	bearings := make([]float64, len(edges))
	for i, e := range edges {
		bearings[i] = geomath.DepartureBearing(e.Geometry, node.Point)
	}
	sort.Float64s(bearings)

	seps := make([]float64, len(bearings))
	for i := range bearings {
		next := bearings[(i+1)%len(bearings)]
		gap := next - bearings[i]
		if gap < 0 {
			gap += 360
		}
		seps[i] = gap
	}
	return seps
}

func allNear(vals []float64, target, tol float64) bool {
	for _, v := range vals {
		if math.Abs(v-target) > tol {
			return false
		}
	}
	return true
}
