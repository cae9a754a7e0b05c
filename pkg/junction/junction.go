// Package junction classifies road junctions and quantifies the driving
// conflicts they present.
//
// Given a road-network graph, the package assigns each node a topology label
// (T-junction, Y-junction, crossroad, roundabout, or other), counts the
// potential vehicle-path conflicts between every pair of roads meeting at the
// node, and builds a representative corridor polygon for map display.
//
// All analysis functions are pure: they read the graph and a Config and never
// mutate either, so nodes can be processed concurrently. [AnalyzeGraph] does
// exactly that with a worker pool.
package junction

import (
	"github.com/paulmach/orb"

	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// =============================================================================
// Enumerations
// =============================================================================

// Type is a junction topology label.
type Type string

// Junction topology labels.
const (
	TypeT          Type = "T_JUNCTION"
	TypeY          Type = "Y_JUNCTION"
	TypeCrossroad  Type = "CROSSROAD"
	TypeRoundabout Type = "ROUNDABOUT"
	TypeOther      Type = "OTHER"
)

// Movement is the maneuver a vehicle performs through a junction, relative to
// the road it arrives on.
type Movement string

// Vehicle movements.
const (
	MovementThrough   Movement = "THROUGH"
	MovementLeftTurn  Movement = "LEFT_TURN"
	MovementRightTurn Movement = "RIGHT_TURN"
	MovementCross     Movement = "CROSS"
)

// Position is where a second road sits relative to a first at a junction.
type Position string

// Relative road positions.
const (
	PositionOpposite Position = "OPPOSITE"
	PositionNear     Position = "NEAR"
	PositionFar      Position = "FAR"
)

// ConflictKind classifies the risk between two vehicle paths at a junction.
type ConflictKind string

// Conflict kinds.
const (
	ConflictIntersect  ConflictKind = "INTERSECT"
	ConflictMerge      ConflictKind = "MERGE"
	ConflictNoConflict ConflictKind = "NO_CONFLICT"
)

// Movements and Positions enumerate the full domain, used to verify table
// totality and to iterate deterministically.
var (
	Movements = []Movement{MovementThrough, MovementLeftTurn, MovementRightTurn, MovementCross}
	Positions = []Position{PositionOpposite, PositionNear, PositionFar}
)

// Counts maps each conflict kind to its occurrence count at one node.
type Counts map[ConflictKind]int

// Total returns the sum over all kinds. For a node of degree k this equals
// k*(k-1)/2, one entry per unordered pair of incident roads.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// =============================================================================
// Configuration
// =============================================================================

// Default analysis parameters.
const (
	DefaultTrimDist       = 10.0 // corridor trim distance, meters
	DefaultTypeAngleTol   = 20.0 // topology shape tolerance, degrees
	DefaultPositionTol    = 30.0 // neighbor position tolerance, degrees
	DefaultLaneWidth      = 4.0  // assumed lane width when untagged, meters
	DefaultAnalyzeWorkers = 8
)

// Config holds the tunable analysis parameters. The zero value is usable
// after ValidateAndSetDefaults.
type Config struct {
	// TrimDist is how far along each road the corridor extends, in meters.
	TrimDist float64

	// TypeAngleTol is the angular tolerance, in degrees, when matching a
	// junction's leg separations against the ideal T, Y and crossroad shapes.
	TypeAngleTol float64

	// PositionTol is the angular tolerance, in degrees, when deciding whether
	// two roads sit opposite or adjacent to each other.
	PositionTol float64

	// LaneWidth is the assumed lane width, in meters, for roads without a
	// width attribute.
	LaneWidth float64

	// LeftHandTraffic selects the driving side. The default is right-hand
	// traffic.
	LeftHandTraffic bool

	// Table is the conflict policy. Nil selects the default table for the
	// configured driving side.
	Table ConflictTable

	// Workers bounds the concurrency of AnalyzeGraph.
	Workers int
}

// ValidateAndSetDefaults fills zero-valued fields with defaults.
// It is idempotent and safe to call multiple times.
func (c *Config) ValidateAndSetDefaults() error {
	if c.TrimDist == 0 {
		c.TrimDist = DefaultTrimDist
	}
	if c.TypeAngleTol == 0 {
		c.TypeAngleTol = DefaultTypeAngleTol
	}
	if c.PositionTol == 0 {
		c.PositionTol = DefaultPositionTol
	}
	if c.LaneWidth == 0 {
		c.LaneWidth = DefaultLaneWidth
	}
	if c.Table == nil {
		c.Table = DefaultConflictTable(c.LeftHandTraffic)
	}
	if c.Workers <= 0 {
		c.Workers = DefaultAnalyzeWorkers
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// Result is the complete analysis of one junction node.
type Result struct {
	Node      roadnet.NodeID
	Point     orb.Point
	Type      Type
	Conflicts Counts
	Corridor  orb.MultiPolygon // may be empty, display aid only
}
