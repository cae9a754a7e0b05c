package junction

import (
	"github.com/paulmach/orb"

	"github.com/urbanpilot/oddnet/pkg/geomath"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// Corridor builds a representative polygon for the junction: each incident
// road is cut to Config.TrimDist meters from the node, widened to its lane
// width (or the configured default), and the shapes are merged.
//
// The corridor is a display aid only. Degenerate inputs (zero-length roads,
// missing geometry, an unknown node) yield an empty result, never an error.
func Corridor(g *roadnet.Graph, id roadnet.NodeID, cfg Config) orb.MultiPolygon {
	node, ok := g.Node(id)
	if !ok {
		return nil
	}

	var polys []orb.Polygon
	for _, e := range g.IncidentEdges(id) {
		trimmed := geomath.TrimNear(e.Geometry, node.Point, cfg.TrimDist)
		if len(trimmed) < 2 {
			continue
		}
		width := e.Attr.LaneWidth
		if width <= 0 {
			width = cfg.LaneWidth
		}
		poly := geomath.BufferLine(trimmed, width)
		if len(poly) > 0 {
			polys = append(polys, poly)
		}
	}
	return geomath.MergePolygons(polys)
}
