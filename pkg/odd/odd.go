// Package odd applies a declarative Operational Design Domain policy to an
// analyzed road network.
//
// A Criteria value describes the conditions under which automated driving is
// considered acceptable: which junction topologies and conflict kinds are
// tolerated, whether school zones, parking lots or signalized junctions are
// avoided, and which road attributes (class, speed, lane width) qualify. The
// evaluator partitions nodes and edges against the policy, and the selector
// extracts the single largest connected subnetwork from the surviving edges.
//
// A nil field in Criteria means "unrestricted" for that attribute; an absent
// criterion is never a validation failure.
package odd

import (
	"github.com/urbanpilot/oddnet/pkg/errors"
	"github.com/urbanpilot/oddnet/pkg/junction"
)

// Mode selects where the policy for a filtering request comes from.
type Mode string

// Filtering modes.
const (
	// ModeAll applies no restriction: every edge is compliant.
	ModeAll Mode = "all"
	// ModePredefined uses the criteria configured on the server.
	ModePredefined Mode = "predefined"
	// ModeRequest uses the criteria supplied in the request itself.
	ModeRequest Mode = "request"
)

// Criteria is an immutable ODD policy. Nil slices and nil pointers leave the
// corresponding attribute unrestricted. For the boolean attributes, false
// means "avoid roads with this property".
type Criteria struct {
	JunctionTypes     []junction.Type         `json:"junction_type,omitempty" toml:"junction_type"`
	JunctionConflicts []junction.ConflictKind `json:"junction_conflict,omitempty" toml:"junction_conflict"`
	SchoolZone        *bool                   `json:"school_zone,omitempty" toml:"school_zone"`
	ParkingLot        *bool                   `json:"parking_lot,omitempty" toml:"parking_lot"`
	TrafficSignals    *bool                   `json:"traffic_signals,omitempty" toml:"traffic_signals"`
	HighwayTypes      []string                `json:"highway_type,omitempty" toml:"highway_type"`
	MaxSpeedLimit     *float64                `json:"speed_limit,omitempty" toml:"speed_limit"`
	MinLaneWidth      *float64                `json:"lane_width,omitempty" toml:"lane_width"`
	MajorRoads        *bool                   `json:"is_major_road,omitempty" toml:"is_major_road"`
	Oneway            *bool                   `json:"oneway,omitempty" toml:"oneway"`
}

// Validate checks the numeric thresholds. Absent keys are always valid.
func (c *Criteria) Validate() error {
	if c == nil {
		return nil
	}
	if c.MaxSpeedLimit != nil {
		if err := errors.ValidateThreshold("speed_limit", *c.MaxSpeedLimit); err != nil {
			return err
		}
	}
	if c.MinLaneWidth != nil {
		if err := errors.ValidateThreshold("lane_width", *c.MinLaneWidth); err != nil {
			return err
		}
	}
	return nil
}

// ResolveCriteria picks the effective policy for a request. ModeAll resolves
// to nil (unrestricted); ModePredefined and ModeRequest select the
// corresponding criteria, which may themselves be nil.
func ResolveCriteria(mode Mode, predefined, supplied *Criteria) (*Criteria, error) {
	switch mode {
	case ModeAll, "":
		return nil, nil
	case ModePredefined:
		return predefined, nil
	case ModeRequest:
		return supplied, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidMode, "unknown filtering mode %q", mode)
	}
}

// =============================================================================
// Feature Records
// =============================================================================

// FeatureKind discriminates the feature variants attached to a node.
type FeatureKind string

// Feature kinds.
const (
	FeatureJunction      FeatureKind = "junction"
	FeatureSchoolZone    FeatureKind = "school_zone"
	FeatureParkingLot    FeatureKind = "parking_lot"
	FeatureTrafficSignal FeatureKind = "traffic_signals"
)

// Feature is a typed record attached to a node by the analysis pipeline.
// The variant set is closed: the evaluator switches exhaustively over it.
type Feature interface {
	Kind() FeatureKind
}

// JunctionFeature carries a node's junction analysis.
type JunctionFeature struct {
	Type      junction.Type   `json:"junc_type" bson:"junc_type"`
	Conflicts junction.Counts `json:"conflict_counter" bson:"conflict_counter"`
}

// SchoolZoneFeature marks a node inside a school zone.
type SchoolZoneFeature struct {
	Name     string  `json:"name,omitempty" bson:"name,omitempty"`
	Distance float64 `json:"distance,omitempty" bson:"distance,omitempty"` // meters to the school perimeter
}

// ParkingLotFeature marks a node near a parking lot.
type ParkingLotFeature struct {
	Distance float64 `json:"distance,omitempty" bson:"distance,omitempty"` // meters to the lot
}

// TrafficSignalFeature marks a signal-controlled node.
type TrafficSignalFeature struct{}

// Kind implements Feature.
func (JunctionFeature) Kind() FeatureKind { return FeatureJunction }

// Kind implements Feature.
func (SchoolZoneFeature) Kind() FeatureKind { return FeatureSchoolZone }

// Kind implements Feature.
func (ParkingLotFeature) Kind() FeatureKind { return FeatureParkingLot }

// Kind implements Feature.
func (TrafficSignalFeature) Kind() FeatureKind { return FeatureTrafficSignal }
