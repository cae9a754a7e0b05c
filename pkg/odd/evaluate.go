package odd

import (
	"slices"

	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// Evaluation is the outcome of applying a Criteria to a graph: the nodes
// that violate the policy and the edges that survive it.
type Evaluation struct {
	IncompliantNodes map[roadnet.NodeID]bool
	CompliantEdges   []*roadnet.Edge
}

// Evaluate partitions the graph against the criteria.
//
// The node pass runs first: a node is incompliant as soon as any one of its
// features violates the policy; a node with no violating features (or no
// features at all) is compliant. The edge pass then keeps an edge only when
// both endpoints are compliant and every edge-attribute check passes.
//
// A nil criteria means no restriction: every edge is compliant. Features
// referencing nodes absent from the graph are skipped, not treated as
// errors. The result depends only on (graph, features, criteria), never on
// iteration order.
func Evaluate(g *roadnet.Graph, features map[roadnet.NodeID][]Feature, criteria *Criteria) Evaluation {
	eval := Evaluation{IncompliantNodes: make(map[roadnet.NodeID]bool)}

	if criteria == nil {
		eval.CompliantEdges = g.Edges()
		return eval
	}

	for id, list := range features {
		if _, ok := g.Node(id); !ok {
			continue
		}
		for _, f := range list {
			if violates(f, criteria) {
				eval.IncompliantNodes[id] = true
				break
			}
		}
	}

	for _, e := range g.Edges() {
		if eval.IncompliantNodes[e.ID.U] || eval.IncompliantNodes[e.ID.V] {
			continue
		}
		if edgeCompliant(&e.Attr, criteria) {
			eval.CompliantEdges = append(eval.CompliantEdges, e)
		}
	}
	return eval
}

// violates reports whether a single feature breaks the policy.
func violates(f Feature, c *Criteria) bool {
	switch f := f.(type) {
	case JunctionFeature:
		return junctionViolates(f, c)
	case *JunctionFeature:
		return junctionViolates(*f, c)
	case SchoolZoneFeature, *SchoolZoneFeature:
		return c.SchoolZone != nil && !*c.SchoolZone
	case ParkingLotFeature, *ParkingLotFeature:
		return c.ParkingLot != nil && !*c.ParkingLot
	case TrafficSignalFeature, *TrafficSignalFeature:
		return c.TrafficSignals != nil && !*c.TrafficSignals
	default:
		// Unknown records are tolerated, not fatal.
		return false
	}
}

func junctionViolates(f JunctionFeature, c *Criteria) bool {
	if len(c.JunctionTypes) > 0 && !slices.Contains(c.JunctionTypes, f.Type) {
		return true
	}
	if len(c.JunctionConflicts) > 0 {
		for kind, count := range f.Conflicts {
			if count > 0 && !slices.Contains(c.JunctionConflicts, kind) {
				return true
			}
		}
	}
	return false
}

// edgeCompliant applies the edge-attribute predicates. Unknown speed or
// width fails a restrictive threshold rather than passing it.
func edgeCompliant(attr *roadnet.Attributes, c *Criteria) bool {
	if len(c.HighwayTypes) > 0 && !slices.Contains(c.HighwayTypes, attr.HighwayType) {
		return false
	}
	if c.MaxSpeedLimit != nil {
		if attr.SpeedLimit <= 0 || attr.SpeedLimit > *c.MaxSpeedLimit {
			return false
		}
	}
	if c.MinLaneWidth != nil {
		if attr.LaneWidth < *c.MinLaneWidth {
			return false
		}
	}
	if c.MajorRoads != nil && !*c.MajorRoads && attr.IsMajorRoad {
		return false
	}
	if c.Oneway != nil && !*c.Oneway && attr.Oneway {
		return false
	}
	return true
}
