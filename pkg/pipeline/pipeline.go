// Package pipeline orchestrates the road network analysis flow used by
// both the CLI and the HTTP server.
//
// The pipeline consists of three stages:
//
//  1. Fetch: resolve a geographic extent to a road network snapshot,
//     through a provider with snapshot caching
//  2. Analyze: classify junctions, count movement conflicts, build
//     corridors, and persist the resulting feature documents
//  3. Network: evaluate stored features against compliance criteria and
//     select the largest connected compliant sub-network as GeoJSON
//
// Each stage can be run independently or as part of the complete flow.
// Centralizing the logic here keeps CLI and API behavior identical.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb/geojson"

	"github.com/urbanpilot/oddnet/pkg/cache"
	"github.com/urbanpilot/oddnet/pkg/junction"
	"github.com/urbanpilot/oddnet/pkg/odd"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for an analysis or network run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Analysis options
	TrimDist        float64 `json:"trim_dist,omitempty"`
	TypeAngleTol    float64 `json:"type_angle_tol,omitempty"`
	PositionTol     float64 `json:"position_tol,omitempty"`
	LaneWidth       float64 `json:"lane_width,omitempty"`
	LeftHandTraffic bool    `json:"left_hand_traffic,omitempty"`
	Workers         int     `json:"workers,omitempty"`
	Overwrite       bool    `json:"overwrite,omitempty"` // drop stored docs before persisting

	// Amenity proximity radii in meters. Road nodes within these
	// distances of a mapped facility get the matching feature.
	SchoolZoneRadius float64 `json:"school_zone_radius,omitempty"`
	ParkingLotRadius float64 `json:"parking_lot_radius,omitempty"`

	// Network options
	Mode          odd.Mode      `json:"mode,omitempty"`
	Criteria      *odd.Criteria `json:"criteria,omitempty"`
	SnapTolerance float64       `json:"snap_tolerance,omitempty"`
	Refresh       bool          `json:"refresh,omitempty"` // bypass caches

	// Predefined is the operator-configured criteria set used when
	// Mode is "predefined". Loaded from config, never from requests.
	Predefined *odd.Criteria `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Mode == "" {
		o.Mode = odd.ModeAll
	}
	if o.Criteria != nil {
		if err := o.Criteria.Validate(); err != nil {
			return err
		}
	}
	cfg := o.JunctionConfig()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.TrimDist = cfg.TrimDist
	o.TypeAngleTol = cfg.TypeAngleTol
	o.PositionTol = cfg.PositionTol
	o.LaneWidth = cfg.LaneWidth
	o.Workers = cfg.Workers
	if o.SchoolZoneRadius == 0 {
		o.SchoolZoneRadius = DefaultSchoolZoneRadius
	}
	if o.ParkingLotRadius == 0 {
		o.ParkingLotRadius = DefaultParkingLotRadius
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// JunctionConfig maps the analysis options onto a junction.Config.
func (o *Options) JunctionConfig() junction.Config {
	return junction.Config{
		TrimDist:        o.TrimDist,
		TypeAngleTol:    o.TypeAngleTol,
		PositionTol:     o.PositionTol,
		LaneWidth:       o.LaneWidth,
		LeftHandTraffic: o.LeftHandTraffic,
		Workers:         o.Workers,
	}
}

// NetworkKeyOpts returns cache key options for network computation.
// The key carries the resolved effective criteria, not the raw request
// criteria, so a changed predefined set never matches an older entry.
func (o *Options) NetworkKeyOpts(criteria *odd.Criteria) cache.NetworkKeyOpts {
	return cache.NetworkKeyOpts{
		Mode:          string(o.Mode),
		Criteria:      criteria,
		SnapTolerance: o.SnapTolerance,
	}
}

// =============================================================================
// Results
// =============================================================================

// AnalyzeStats contains analysis stage statistics.
type AnalyzeStats struct {
	NodeCount     int
	EdgeCount     int
	JunctionCount int
	Duration      time.Duration
}

// AnalyzeResult contains the outputs of an analysis run.
type AnalyzeResult struct {
	// Junctions holds the per-node analysis, keyed by node ID.
	Junctions map[roadnet.NodeID]*junction.Result

	// Stats contains timing and size information.
	Stats AnalyzeStats
}

// NetworkStats contains network stage statistics.
type NetworkStats struct {
	TotalEdges     int
	CompliantEdges int
	Polylines      int
	EvaluateTime   time.Duration
	SelectTime     time.Duration
}

// NetworkResult contains the outputs of a network run.
type NetworkResult struct {
	// Collection holds one feature per compliant polyline. Empty when
	// nothing satisfies the criteria, which is a normal outcome.
	Collection *geojson.FeatureCollection

	// Stats contains timing and size information.
	Stats NetworkStats

	// CacheHit reports whether the collection came from cache.
	CacheHit bool
}
