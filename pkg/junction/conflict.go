package junction

import (
	"math"

	"github.com/urbanpilot/oddnet/pkg/geomath"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// =============================================================================
// Conflict Table
// =============================================================================

// TableKey addresses one cell of the conflict policy: the movements of two
// vehicles and where the second vehicle's road sits relative to the first.
type TableKey struct {
	This  Movement
	Other Movement
	Pos   Position
}

// ConflictTable is the conflict policy: a total function over every
// (movement, movement, position) combination. Lookups outside the table
// resolve to NO_CONFLICT, but a complete table never relies on that.
type ConflictTable map[TableKey]ConflictKind

// Lookup resolves a combination to its conflict kind.
func (t ConflictTable) Lookup(this, other Movement, pos Position) ConflictKind {
	if kind, ok := t[TableKey{This: this, Other: other, Pos: pos}]; ok {
		return kind
	}
	return ConflictNoConflict
}

// Complete reports whether the table covers every combination.
func (t ConflictTable) Complete() bool {
	for _, this := range Movements {
		for _, other := range Movements {
			for _, pos := range Positions {
				if _, ok := t[TableKey{This: this, Other: other, Pos: pos}]; !ok {
					return false
				}
			}
		}
	}
	return true
}

// policyRow expresses conflict policy in driving-side-neutral terms: a "near"
// turn bends toward the driving side (right under right-hand traffic), a
// "far" turn bends away from it.
type policyRow struct {
	this, other string // "thru", "near", "far", "reverse"
	pos         Position
	kind        ConflictKind
}

var defaultPolicy = []policyRow{
	{"thru", "thru", PositionOpposite, ConflictNoConflict},
	{"thru", "thru", PositionNear, ConflictIntersect},
	{"thru", "thru", PositionFar, ConflictIntersect},

	{"thru", "near", PositionOpposite, ConflictNoConflict},
	{"thru", "near", PositionNear, ConflictMerge},
	{"thru", "near", PositionFar, ConflictNoConflict},

	{"thru", "far", PositionOpposite, ConflictIntersect},
	{"thru", "far", PositionNear, ConflictIntersect},
	{"thru", "far", PositionFar, ConflictMerge},

	{"thru", "reverse", PositionOpposite, ConflictMerge},
	{"thru", "reverse", PositionNear, ConflictIntersect},
	{"thru", "reverse", PositionFar, ConflictIntersect},

	{"near", "thru", PositionOpposite, ConflictNoConflict},
	{"near", "thru", PositionNear, ConflictNoConflict},
	{"near", "thru", PositionFar, ConflictMerge},

	{"near", "near", PositionOpposite, ConflictNoConflict},
	{"near", "near", PositionNear, ConflictNoConflict},
	{"near", "near", PositionFar, ConflictNoConflict},

	{"near", "far", PositionOpposite, ConflictMerge},
	{"near", "far", PositionNear, ConflictNoConflict},
	{"near", "far", PositionFar, ConflictNoConflict},

	{"near", "reverse", PositionOpposite, ConflictNoConflict},
	{"near", "reverse", PositionNear, ConflictMerge},
	{"near", "reverse", PositionFar, ConflictNoConflict},

	{"far", "thru", PositionOpposite, ConflictIntersect},
	{"far", "thru", PositionNear, ConflictMerge},
	{"far", "thru", PositionFar, ConflictIntersect},

	{"far", "near", PositionOpposite, ConflictMerge},
	{"far", "near", PositionNear, ConflictNoConflict},
	{"far", "near", PositionFar, ConflictNoConflict},

	{"far", "far", PositionOpposite, ConflictIntersect},
	{"far", "far", PositionNear, ConflictIntersect},
	{"far", "far", PositionFar, ConflictIntersect},

	{"far", "reverse", PositionOpposite, ConflictIntersect},
	{"far", "reverse", PositionNear, ConflictIntersect},
	{"far", "reverse", PositionFar, ConflictMerge},

	{"reverse", "thru", PositionOpposite, ConflictMerge},
	{"reverse", "thru", PositionNear, ConflictIntersect},
	{"reverse", "thru", PositionFar, ConflictIntersect},

	{"reverse", "near", PositionOpposite, ConflictNoConflict},
	{"reverse", "near", PositionNear, ConflictNoConflict},
	{"reverse", "near", PositionFar, ConflictMerge},

	{"reverse", "far", PositionOpposite, ConflictIntersect},
	{"reverse", "far", PositionNear, ConflictMerge},
	{"reverse", "far", PositionFar, ConflictIntersect},

	{"reverse", "reverse", PositionOpposite, ConflictIntersect},
	{"reverse", "reverse", PositionNear, ConflictIntersect},
	{"reverse", "reverse", PositionFar, ConflictIntersect},
}

// DefaultConflictTable builds the standard conflict policy for the given
// driving side. Under right-hand traffic a near turn is a right turn; under
// left-hand traffic the sides swap.
func DefaultConflictTable(leftHandTraffic bool) ConflictTable {
	near, far := MovementRightTurn, MovementLeftTurn
	if leftHandTraffic {
		near, far = MovementLeftTurn, MovementRightTurn
	}
	resolve := func(s string) Movement {
		switch s {
		case "thru":
			return MovementThrough
		case "near":
			return near
		case "far":
			return far
		default:
			return MovementCross
		}
	}
	table := make(ConflictTable, len(defaultPolicy))
	for _, row := range defaultPolicy {
		key := TableKey{This: resolve(row.this), Other: resolve(row.other), Pos: row.pos}
		table[key] = row.kind
	}
	return table
}

// =============================================================================
// Per-Node Conflict Analysis
// =============================================================================

// Analyze counts the conflicts between every unordered pair of roads meeting
// at the node. Each pair contributes exactly one count, so the totals sum to
// k*(k-1)/2 for a node of degree k. The result does not depend on processing
// order.
func Analyze(g *roadnet.Graph, id roadnet.NodeID, cfg Config) Counts {
	counts := Counts{
		ConflictIntersect:  0,
		ConflictMerge:      0,
		ConflictNoConflict: 0,
	}
	node, ok := g.Node(id)
	if !ok {
		return counts
	}

	edges := g.IncidentEdges(id)
	axis := throughAxis(g, id, cfg)

	for i := 0; i < len(edges); i++ {
		for j := i + 1; j < len(edges); j++ {
			e1, e2 := edges[i], edges[j]

			// An outbound-only leg carries no traffic into the junction.
			if outboundOnly(e1, id) || outboundOnly(e2, id) {
				counts[ConflictNoConflict]++
				continue
			}

			b1 := geomath.DepartureBearing(e1.Geometry, node.Point)
			b2 := geomath.DepartureBearing(e2.Geometry, node.Point)

			m1 := movementOf(e1, b1, axis, cfg)
			m2 := movementOf(e2, b2, axis, cfg)
			pos := relativePosition(b1, b2, cfg)

			counts[cfg.Table.Lookup(m1, m2, pos)]++
		}
	}
	return counts
}

// outboundOnly reports whether the edge is a one-way segment leading away
// from the node.
func outboundOnly(e *roadnet.Edge, at roadnet.NodeID) bool {
	return e.Attr.Oneway && e.ID.U == at
}

// axisResult is the junction's dominant straight-through bearing, when one
// exists.
type axisResult struct {
	bearing float64
	ok      bool
}

// throughAxis finds the bearing of the junction's dominant straight-through
// road: the pair of legs whose bearings most nearly oppose each other. ok is
// false when no pair of legs comes within Config.TypeAngleTol of straight.
func throughAxis(g *roadnet.Graph, id roadnet.NodeID, cfg Config) axisResult {
	node, found := g.Node(id)
	if !found {
		return axisResult{}
	}
	edges := g.IncidentEdges(id)

	var axis float64
	best := -1.0
	for i := 0; i < len(edges); i++ {
		bi := geomath.DepartureBearing(edges[i].Geometry, node.Point)
		for j := i + 1; j < len(edges); j++ {
			bj := geomath.DepartureBearing(edges[j].Geometry, node.Point)
			sep := geomath.Separation(bi, bj)
			if sep > best {
				best = sep
				axis = bi
			}
		}
	}
	return axisResult{bearing: axis, ok: best >= 180-cfg.TypeAngleTol}
}

// movementOf derives a single movement for the edge. Signposted turn-lane
// markings win; otherwise the movement follows from the edge's bearing
// relative to the junction's through-axis.
func movementOf(e *roadnet.Edge, bearing float64, axis axisResult, cfg Config) Movement {
	if m, ok := movementFromMarkings(e.Attr.LaneMarkings, cfg.LeftHandTraffic); ok {
		return m
	}
	if !axis.ok {
		return MovementThrough
	}
	sep := geomath.Separation(bearing, axis.bearing)
	if sep <= cfg.TypeAngleTol || sep >= 180-cfg.TypeAngleTol {
		return MovementThrough
	}
	// Clockwise offset from the axis puts the leg on the right side.
	cw := math.Mod(bearing-axis.bearing+360, 360)
	if cw < 180 {
		return MovementRightTurn
	}
	return MovementLeftTurn
}

// movementFromMarkings resolves turn-lane markings to one movement. When a
// road is signed for several movements the most permissive one for junction
// traversal is kept: straight-through first, then the turn toward the driving
// side, then the turn across it, then a reversing movement.
func movementFromMarkings(turns []roadnet.Turn, leftHandTraffic bool) (Movement, bool) {
	if len(turns) == 0 {
		return "", false
	}
	var hasLeft, hasRight, hasReverse bool
	for _, t := range turns {
		switch t {
		case roadnet.TurnThrough:
			return MovementThrough, true
		case roadnet.TurnLeft, roadnet.TurnSlightLeft, roadnet.TurnSharpLeft, roadnet.TurnMergeToLeft:
			hasLeft = true
		case roadnet.TurnRight, roadnet.TurnSlightRight, roadnet.TurnSharpRight, roadnet.TurnMergeToRight:
			hasRight = true
		case roadnet.TurnReverse:
			hasReverse = true
		}
	}
	near, farSide := hasRight, hasLeft
	nearMove, farMove := MovementRightTurn, MovementLeftTurn
	if leftHandTraffic {
		near, farSide = hasLeft, hasRight
		nearMove, farMove = MovementLeftTurn, MovementRightTurn
	}
	switch {
	case near:
		return nearMove, true
	case farSide:
		return farMove, true
	case hasReverse:
		return MovementCross, true
	}
	return "", false
}

// relativePosition decides where the second road sits relative to the first:
// opposite when the bearings nearly oppose, near or far when roughly
// perpendicular (by driving side), far otherwise.
func relativePosition(b1, b2 float64, cfg Config) Position {
	sep := geomath.Separation(b1, b2)
	if sep > 180-cfg.PositionTol {
		return PositionOpposite
	}
	if math.Abs(sep-90) < cfg.PositionTol {
		cw := math.Mod(b2-b1+360, 360)
		onRight := cw < 180
		if onRight != cfg.LeftHandTraffic {
			return PositionNear
		}
		return PositionFar
	}
	return PositionFar
}
