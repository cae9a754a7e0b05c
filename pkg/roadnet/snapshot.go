package roadnet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
)

// =============================================================================
// Snapshot - Road Network Serialization
// =============================================================================

// Snapshot is the canonical serialization format for a road-network extent.
// Used for API responses, file-based providers, storage, and caching.
//
// Coordinates are [lon, lat] pairs, matching GeoJSON position order.
type Snapshot struct {
	Nodes []SnapshotNode `json:"nodes" bson:"nodes"`
	Edges []SnapshotEdge `json:"edges" bson:"edges"`
}

// SnapshotNode is a serialized junction node.
type SnapshotNode struct {
	ID   int64             `json:"id" bson:"id"`
	Lon  float64           `json:"lon" bson:"lon"`
	Lat  float64           `json:"lat" bson:"lat"`
	Tags map[string]string `json:"tags,omitempty" bson:"tags,omitempty"`
}

// SnapshotEdge is a serialized road segment.
type SnapshotEdge struct {
	U            int64       `json:"u" bson:"u"`
	V            int64       `json:"v" bson:"v"`
	Seq          int         `json:"seq" bson:"seq"`
	Geometry     [][]float64 `json:"geometry,omitempty" bson:"geometry,omitempty"`
	HighwayType  string      `json:"highway_type,omitempty" bson:"highway_type,omitempty"`
	SpeedLimit   float64     `json:"speed_limit,omitempty" bson:"speed_limit,omitempty"`
	LaneWidth    float64     `json:"lane_width,omitempty" bson:"lane_width,omitempty"`
	LaneMarkings []string    `json:"lane_markings,omitempty" bson:"lane_markings,omitempty"`
	Oneway       bool        `json:"oneway,omitempty" bson:"oneway,omitempty"`
	IsMajorRoad  bool        `json:"is_major_road,omitempty" bson:"is_major_road,omitempty"`
	Roundabout   bool        `json:"roundabout,omitempty" bson:"roundabout,omitempty"`
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalSnapshot converts a graph to JSON bytes.
// Nodes and edges are sorted by ID for deterministic output.
func MarshalSnapshot(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeSnapshotTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSnapshot writes a graph as JSON to an io.Writer.
func WriteSnapshot(g *Graph, w io.Writer) error {
	return writeSnapshotTo(g, w)
}

// WriteSnapshotFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteSnapshotFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeSnapshotTo(g, f)
}

// ReadSnapshot decodes a JSON snapshot from an io.Reader into a graph.
// Returns validation errors for dangling endpoints or duplicate IDs.
func ReadSnapshot(r io.Reader) (*Graph, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToGraph(snap)
}

// ReadSnapshotFile reads a JSON file and returns the decoded graph.
func ReadSnapshotFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

func writeSnapshotTo(g *Graph, w io.Writer) error {
	out := FromGraph(g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// =============================================================================
// Graph ↔ Snapshot Conversion
// =============================================================================

// FromGraph converts a graph to its serialization format.
// Nodes and edges are sorted by ID for deterministic output.
func FromGraph(g *Graph) Snapshot {
	nodes := g.Nodes()
	edges := g.Edges()

	out := Snapshot{
		Nodes: make([]SnapshotNode, len(nodes)),
		Edges: make([]SnapshotEdge, len(edges)),
	}
	for i, n := range nodes {
		sn := SnapshotNode{ID: int64(n.ID), Lon: n.Point[0], Lat: n.Point[1]}
		if len(n.Tags) > 0 {
			sn.Tags = n.Tags
		}
		out.Nodes[i] = sn
	}
	for i, e := range edges {
		out.Edges[i] = FromGraphEdge(e)
	}
	return out
}

// FromGraphEdge converts one edge to its serialization format.
func FromGraphEdge(e *Edge) SnapshotEdge {
	se := SnapshotEdge{
		U:           int64(e.ID.U),
		V:           int64(e.ID.V),
		Seq:         e.ID.Seq,
		Geometry:    lineToCoords(e.Geometry),
		HighwayType: e.Attr.HighwayType,
		SpeedLimit:  e.Attr.SpeedLimit,
		LaneWidth:   e.Attr.LaneWidth,
		Oneway:      e.Attr.Oneway,
		IsMajorRoad: e.Attr.IsMajorRoad,
		Roundabout:  e.Attr.Roundabout,
	}
	for _, t := range e.Attr.LaneMarkings {
		se.LaneMarkings = append(se.LaneMarkings, string(t))
	}
	return se
}

// ToGraphEdge converts the serialization format back to a standalone edge.
// Edges restored this way carry their stored geometry but are not attached
// to any graph.
func ToGraphEdge(se SnapshotEdge) (*Edge, error) {
	e := &Edge{
		ID:       EdgeID{U: NodeID(se.U), V: NodeID(se.V), Seq: se.Seq},
		Geometry: coordsToLine(se.Geometry),
		Attr: Attributes{
			HighwayType: se.HighwayType,
			SpeedLimit:  se.SpeedLimit,
			LaneWidth:   se.LaneWidth,
			Oneway:      se.Oneway,
			IsMajorRoad: se.IsMajorRoad,
			Roundabout:  se.Roundabout,
		},
	}
	for _, name := range se.LaneMarkings {
		if t, ok := turnNames[name]; ok {
			e.Attr.LaneMarkings = append(e.Attr.LaneMarkings, t)
		}
	}
	return e, nil
}

// ToGraph converts the serialization format back to a graph.
func ToGraph(snap Snapshot) (*Graph, error) {
	g := New()
	for _, sn := range snap.Nodes {
		n := Node{ID: NodeID(sn.ID), Point: orb.Point{sn.Lon, sn.Lat}, Tags: sn.Tags}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, se := range snap.Edges {
		e, err := ToGraphEdge(se)
		if err != nil {
			return nil, err
		}
		if err := g.AddEdge(*e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func lineToCoords(line orb.LineString) [][]float64 {
	if len(line) == 0 {
		return nil
	}
	coords := make([][]float64, len(line))
	for i, p := range line {
		coords[i] = []float64{p[0], p[1]}
	}
	return coords
}

func coordsToLine(coords [][]float64) orb.LineString {
	if len(coords) == 0 {
		return nil
	}
	line := make(orb.LineString, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		line = append(line, orb.Point{c[0], c[1]})
	}
	return line
}
