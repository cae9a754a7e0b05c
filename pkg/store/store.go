// Package store persists per-extent analysis output: junction results,
// typed node features, and compliant-candidate edge records.
//
// Two backends implement the Store interface:
//   - memory: in-process storage for development and testing
//   - mongo: MongoDB-backed storage for deployments
//
// Writes are idempotent upserts keyed by node or edge ID, so re-analyzing an
// extent never duplicates documents and concurrent analysis of the same
// extent converges on the same state.
package store

import (
	"context"
	"errors"

	"github.com/paulmach/orb/geojson"

	"github.com/urbanpilot/oddnet/pkg/junction"
	"github.com/urbanpilot/oddnet/pkg/odd"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store is the persistence boundary for analysis output.
type Store interface {
	// PutJunction upserts one junction analysis result, keyed by node ID.
	PutJunction(ctx context.Context, r *junction.Result) error

	// AppendNodeFeature attaches a feature to a node. Appending an identical
	// feature twice leaves a single copy (set semantics).
	AppendNodeFeature(ctx context.Context, id roadnet.NodeID, f odd.Feature) error

	// PutEdge upserts one road-segment record, keyed by its "u_v_seq" ID.
	PutEdge(ctx context.Context, e *roadnet.Edge) error

	// NodeFeatures returns every persisted feature grouped by node ID.
	NodeFeatures(ctx context.Context) (map[roadnet.NodeID][]odd.Feature, error)

	// Edges returns every persisted road segment.
	Edges(ctx context.Context) ([]*roadnet.Edge, error)

	// Junctions returns every persisted junction result.
	Junctions(ctx context.Context) ([]*junction.Result, error)

	// Drop clears all persisted data for the extent.
	Drop(ctx context.Context) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// =============================================================================
// Serialized Documents
// =============================================================================

// junctionDoc is the stored form of a junction result.
type junctionDoc struct {
	NodeID    int64             `bson:"_id" json:"node_id"`
	Lon       float64           `bson:"lon" json:"lon"`
	Lat       float64           `bson:"lat" json:"lat"`
	Type      string            `bson:"junc_type" json:"junc_type"`
	Conflicts map[string]int    `bson:"conflict_counter" json:"conflict_counter"`
	Corridor  *geojson.Geometry `bson:"corridor,omitempty" json:"corridor,omitempty"`
}

func toJunctionDoc(r *junction.Result) junctionDoc {
	doc := junctionDoc{
		NodeID:    int64(r.Node),
		Lon:       r.Point[0],
		Lat:       r.Point[1],
		Type:      string(r.Type),
		Conflicts: make(map[string]int, len(r.Conflicts)),
	}
	for kind, count := range r.Conflicts {
		doc.Conflicts[string(kind)] = count
	}
	if len(r.Corridor) > 0 {
		doc.Corridor = geojson.NewGeometry(r.Corridor)
	}
	return doc
}

func (d junctionDoc) toResult() *junction.Result {
	r := &junction.Result{
		Node:      roadnet.NodeID(d.NodeID),
		Type:      junction.Type(d.Type),
		Conflicts: make(junction.Counts, len(d.Conflicts)),
	}
	r.Point[0], r.Point[1] = d.Lon, d.Lat
	for name, count := range d.Conflicts {
		r.Conflicts[junction.ConflictKind(name)] = count
	}
	return r
}

// featureDoc is the stored form of one typed node feature. Exactly one
// variant field is set, matching the feature kind.
type featureDoc struct {
	Kind          string                    `bson:"feature_type" json:"feature_type"`
	Junction      *odd.JunctionFeature      `bson:"junction,omitempty" json:"junction,omitempty"`
	SchoolZone    *odd.SchoolZoneFeature    `bson:"school_zone,omitempty" json:"school_zone,omitempty"`
	ParkingLot    *odd.ParkingLotFeature    `bson:"parking_lot,omitempty" json:"parking_lot,omitempty"`
	TrafficSignal *odd.TrafficSignalFeature `bson:"traffic_signal,omitempty" json:"traffic_signal,omitempty"`
}

func toFeatureDoc(f odd.Feature) featureDoc {
	doc := featureDoc{Kind: string(f.Kind())}
	switch f := f.(type) {
	case odd.JunctionFeature:
		doc.Junction = &f
	case *odd.JunctionFeature:
		doc.Junction = f
	case odd.SchoolZoneFeature:
		doc.SchoolZone = &f
	case *odd.SchoolZoneFeature:
		doc.SchoolZone = f
	case odd.ParkingLotFeature:
		doc.ParkingLot = &f
	case *odd.ParkingLotFeature:
		doc.ParkingLot = f
	case odd.TrafficSignalFeature:
		doc.TrafficSignal = &f
	case *odd.TrafficSignalFeature:
		doc.TrafficSignal = f
	}
	return doc
}

// toFeature decodes the stored form. ok is false for records whose kind this
// version does not know, which callers skip.
func (d featureDoc) toFeature() (odd.Feature, bool) {
	switch odd.FeatureKind(d.Kind) {
	case odd.FeatureJunction:
		if d.Junction != nil {
			return *d.Junction, true
		}
	case odd.FeatureSchoolZone:
		if d.SchoolZone != nil {
			return *d.SchoolZone, true
		}
	case odd.FeatureParkingLot:
		if d.ParkingLot != nil {
			return *d.ParkingLot, true
		}
	case odd.FeatureTrafficSignal:
		return odd.TrafficSignalFeature{}, true
	}
	return nil, false
}

// edgeDoc is the stored form of a road segment: the snapshot record plus the
// canonical string key.
type edgeDoc struct {
	ID string `bson:"_id" json:"id"`
	roadnet.SnapshotEdge `bson:",inline"`
}

func toEdgeDoc(e *roadnet.Edge) edgeDoc {
	snap := roadnet.FromGraphEdge(e)
	return edgeDoc{ID: e.ID.String(), SnapshotEdge: snap}
}

func (d edgeDoc) toEdge() (*roadnet.Edge, error) {
	return roadnet.ToGraphEdge(d.SnapshotEdge)
}
