// Package roadnet models a directed road-network multigraph: junction nodes
// with geographic coordinates and raw source tags, and road-segment edges with
// polyline geometry and drivability attributes.
//
// A Graph is built once per queried extent from a provider snapshot and is
// read-only afterwards; the analysis stages treat it as immutable input.
// Multiple edges may join the same two nodes (dual carriageways, loops), so
// edges are identified by their endpoint pair plus a disambiguating sequence
// number.
package roadnet

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/urbanpilot/oddnet/pkg/geomath"
)

var (
	// ErrDuplicateNode is returned by [Graph.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrDuplicateEdge is returned by [Graph.AddEdge] when an edge with the
	// same (U, V, Seq) identity already exists.
	ErrDuplicateEdge = errors.New("duplicate edge ID")

	// ErrUnknownEndpoint is returned by [Graph.AddEdge] when an edge
	// references a node that is not in the graph.
	ErrUnknownEndpoint = errors.New("unknown edge endpoint")

	// ErrBadEdgeID is returned when parsing a malformed edge ID string.
	ErrBadEdgeID = errors.New("malformed edge ID")
)

// NodeID identifies a junction node within one extent.
type NodeID int64

// EdgeID identifies a road segment. Seq disambiguates parallel edges between
// the same endpoint pair.
type EdgeID struct {
	U   NodeID
	V   NodeID
	Seq int
}

// String renders the ID in the canonical "u_v_seq" form used as a storage key.
func (id EdgeID) String() string {
	return fmt.Sprintf("%d_%d_%d", id.U, id.V, id.Seq)
}

// ParseEdgeID parses the canonical "u_v_seq" form.
func ParseEdgeID(s string) (EdgeID, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return EdgeID{}, fmt.Errorf("%w: %q", ErrBadEdgeID, s)
	}
	u, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return EdgeID{}, fmt.Errorf("%w: %q", ErrBadEdgeID, s)
	}
	v, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return EdgeID{}, fmt.Errorf("%w: %q", ErrBadEdgeID, s)
	}
	seq, err := strconv.Atoi(parts[2])
	if err != nil {
		return EdgeID{}, fmt.Errorf("%w: %q", ErrBadEdgeID, s)
	}
	return EdgeID{U: NodeID(u), V: NodeID(v), Seq: seq}, nil
}

// Tags holds raw source attributes (e.g. an explicit roundabout marker).
type Tags map[string]string

// Well-known tag keys and values.
const (
	TagJunction = "junction"
	TagHighway  = "highway"
	TagAmenity  = "amenity"
	TagName     = "name"

	JunctionRoundabout = "roundabout"
	JunctionCircular   = "circular"

	HighwayTrafficSignals = "traffic_signals"

	AmenitySchool       = "school"
	AmenityKindergarten = "kindergarten"
	AmenityParking      = "parking"
)

// Attributes are the drivability attributes of a road segment.
type Attributes struct {
	HighwayType  string  // enumerated road class, e.g. "residential"
	SpeedLimit   float64 // km/h; 0 means unknown
	LaneWidth    float64 // meters per lane; 0 means unknown
	LaneMarkings []Turn  // per-lane turn permissions, empty means untagged
	Oneway       bool
	IsMajorRoad  bool
	Roundabout   bool // segment is part of a circular one-way loop
}

// Node is a junction: a point where road segments meet.
type Node struct {
	ID    NodeID
	Point orb.Point // (lon, lat)
	Tags  Tags
}

// Edge is a road segment between two nodes.
type Edge struct {
	ID       EdgeID
	Geometry orb.LineString
	Attr     Attributes
}

// Length returns the edge's geodesic length in meters.
func (e *Edge) Length() float64 { return geomath.Length(e.Geometry) }

// Other returns the endpoint opposite to n. Returns n itself for self-loops.
func (e *Edge) Other(n NodeID) NodeID {
	if e.ID.U == n {
		return e.ID.V
	}
	return e.ID.U
}

// Graph is a directed road-network multigraph. It is not safe for concurrent
// mutation; once built it may be read from any number of goroutines.
type Graph struct {
	nodes    map[NodeID]*Node
	edges    map[EdgeID]*Edge
	incident map[NodeID][]*Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[NodeID]*Node),
		edges:    make(map[EdgeID]*Edge),
		incident: make(map[NodeID][]*Edge),
	}
}

// AddNode adds a junction node. Returns ErrDuplicateNode if the ID is taken.
// A nil Tags map is initialized to an empty one.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, n.ID)
	}
	if n.Tags == nil {
		n.Tags = Tags{}
	}
	g.nodes[n.ID] = &n
	return nil
}

// AddEdge adds a road segment between two existing nodes. A missing geometry
// is synthesized as the straight line between the endpoints. Returns
// ErrUnknownEndpoint if either endpoint node is absent, or ErrDuplicateEdge
// if the (U, V, Seq) identity is already used.
func (g *Graph) AddEdge(e Edge) error {
	u, okU := g.nodes[e.ID.U]
	v, okV := g.nodes[e.ID.V]
	if !okU || !okV {
		return fmt.Errorf("%w: %s", ErrUnknownEndpoint, e.ID)
	}
	if _, exists := g.edges[e.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEdge, e.ID)
	}
	if len(e.Geometry) < 2 {
		e.Geometry = orb.LineString{u.Point, v.Point}
	}
	edge := &e
	g.edges[e.ID] = edge
	g.incident[e.ID.U] = append(g.incident[e.ID.U], edge)
	if e.ID.V != e.ID.U {
		g.incident[e.ID.V] = append(g.incident[e.ID.V], edge)
	}
	return nil
}

// Node returns the node with the given ID, if present.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given ID, if present.
func (g *Graph) Edge(id EdgeID) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Nodes returns all nodes sorted by ID for deterministic iteration.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Edges returns all edges sorted by ID for deterministic iteration.
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return lessEdgeID(edges[i].ID, edges[j].ID) })
	return edges
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// IncidentEdges returns the edges having the node as an endpoint, ordered by
// the bearing at which each edge departs the node (ties broken by edge ID).
// The ordering is a pure function of the geometry, so repeated calls and
// rebuilt graphs yield the same sequence.
func (g *Graph) IncidentEdges(id NodeID) []*Edge {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	edges := make([]*Edge, len(g.incident[id]))
	copy(edges, g.incident[id])
	sort.Slice(edges, func(i, j int) bool {
		bi := geomath.DepartureBearing(edges[i].Geometry, n.Point)
		bj := geomath.DepartureBearing(edges[j].Geometry, n.Point)
		if bi != bj {
			return bi < bj
		}
		return lessEdgeID(edges[i].ID, edges[j].ID)
	})
	return edges
}

// Degree returns the number of incident edges at the node.
func (g *Graph) Degree(id NodeID) int { return len(g.incident[id]) }

func lessEdgeID(a, b EdgeID) bool {
	if a.U != b.U {
		return a.U < b.U
	}
	if a.V != b.V {
		return a.V < b.V
	}
	return a.Seq < b.Seq
}
