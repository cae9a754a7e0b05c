package geomath

import (
	"math"

	"github.com/paulmach/orb"
)

// Approximate meters per degree of latitude, and of longitude at the equator.
// Good enough for buffering short corridor segments for display.
const (
	metersPerDegLat = 110574.0
	metersPerDegLon = 111320.0
)

// BufferLine offsets a polyline by width/2 meters on each side and closes the
// result into a polygon. The offset is computed in a local flat frame anchored
// at the line's first point, so accuracy degrades for very long lines; the
// corridors built from trimmed junction legs are tens of meters at most.
// Degenerate input (fewer than two points, non-positive width) yields nil.
func BufferLine(line orb.LineString, width float64) orb.Polygon {
	if len(line) < 2 || width <= 0 {
		return nil
	}

	lat := line[0][1]
	lonScale := metersPerDegLon * math.Cos(lat*math.Pi/180)
	if lonScale == 0 {
		return nil
	}
	half := width / 2

	left := make([]orb.Point, 0, len(line))
	right := make([]orb.Point, 0, len(line))

	for i := range line {
		nx, ny, ok := normalAt(line, i, lonScale)
		if !ok {
			continue
		}
		left = append(left, orb.Point{
			line[i][0] + nx*half/lonScale,
			line[i][1] + ny*half/metersPerDegLat,
		})
		right = append(right, orb.Point{
			line[i][0] - nx*half/lonScale,
			line[i][1] - ny*half/metersPerDegLat,
		})
	}
	if len(left) < 2 || len(right) < 2 {
		return nil
	}

	ring := make(orb.Ring, 0, len(left)+len(right)+1)
	ring = append(ring, left...)
	for i := len(right) - 1; i >= 0; i-- {
		ring = append(ring, right[i])
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// MergePolygons collects non-empty polygons into a single MultiPolygon.
// Overlapping shapes are kept as-is; the result is a display aid, not a
// topological union.
func MergePolygons(polys []orb.Polygon) orb.MultiPolygon {
	var out orb.MultiPolygon
	for _, p := range polys {
		if len(p) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// normalAt returns the unit normal (in the local meter frame) of the polyline
// at vertex i, averaging the directions of the adjacent segments.
func normalAt(line orb.LineString, i int, lonScale float64) (float64, float64, bool) {
	var dx, dy float64
	if i > 0 {
		dx += (line[i][0] - line[i-1][0]) * lonScale
		dy += (line[i][1] - line[i-1][1]) * metersPerDegLat
	}
	if i < len(line)-1 {
		dx += (line[i+1][0] - line[i][0]) * lonScale
		dy += (line[i+1][1] - line[i][1]) * metersPerDegLat
	}
	mag := math.Hypot(dx, dy)
	if mag == 0 {
		return 0, 0, false
	}
	// rotate the direction vector 90 degrees counter-clockwise
	return -dy / mag, dx / mag, true
}
