// Package provider supplies road network snapshots to the analysis
// pipeline. A Provider resolves a geographic extent to a parsed graph.
//
// Two implementations are available:
//   - HTTP: fetches a JSON snapshot from a remote endpoint with
//     retry and backoff on transient failures
//   - File: reads a local snapshot file, for CLI runs and tests
package provider

import (
	"context"

	"github.com/urbanpilot/oddnet/pkg/cache"
	apperrors "github.com/urbanpilot/oddnet/pkg/errors"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// ExtentKind discriminates how an extent is specified.
type ExtentKind string

const (
	// ExtentBBox selects everything inside a bounding box.
	ExtentBBox ExtentKind = "bbox"

	// ExtentPoint selects everything within Distance meters of a point.
	ExtentPoint ExtentKind = "point"
)

// Extent is the geographic area a snapshot covers.
type Extent struct {
	Kind ExtentKind

	// Bounding box, used when Kind == ExtentBBox.
	West, South, East, North float64

	// Center point and radius in meters, used when Kind == ExtentPoint.
	Lon, Lat, Distance float64
}

// BBoxExtent builds a bounding-box extent.
func BBoxExtent(west, south, east, north float64) Extent {
	return Extent{Kind: ExtentBBox, West: west, South: south, East: east, North: north}
}

// PointExtent builds a point-radius extent. Distance is in meters.
func PointExtent(lon, lat, distance float64) Extent {
	return Extent{Kind: ExtentPoint, Lon: lon, Lat: lat, Distance: distance}
}

// Validate checks the extent against geographic bounds and query limits.
func (e Extent) Validate() error {
	switch e.Kind {
	case ExtentBBox:
		return apperrors.ValidateBBox(e.West, e.South, e.East, e.North)
	case ExtentPoint:
		if err := apperrors.ValidateCoordinate(e.Lon, e.Lat); err != nil {
			return err
		}
		return apperrors.ValidateDistance(e.Distance)
	default:
		return apperrors.New(apperrors.ErrCodeInvalidExtent, "unknown extent kind %q", e.Kind)
	}
}

// KeyOpts returns the cache key components for this extent.
func (e Extent) KeyOpts() cache.SnapshotKeyOpts {
	return cache.SnapshotKeyOpts{
		West:     e.West,
		South:    e.South,
		East:     e.East,
		North:    e.North,
		Lon:      e.Lon,
		Lat:      e.Lat,
		Distance: e.Distance,
	}
}

// Provider resolves an extent to a road network graph.
type Provider interface {
	// Snapshot fetches and parses the road network for the extent.
	Snapshot(ctx context.Context, extent Extent) (*roadnet.Graph, error)
}
