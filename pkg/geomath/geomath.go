// Package geomath provides the small set of geometric primitives the road
// analysis needs: bearings between consecutive points of a polyline, angular
// separations, geodesic lengths, and trimming a polyline to a distance from
// one of its endpoints.
//
// All coordinates are geographic (lon, lat) and all distances are meters.
// Bearings are degrees clockwise from north, normalized to [0, 360).
package geomath

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Bearing returns the initial bearing from one point to another in degrees,
// normalized to [0, 360).
func Bearing(from, to orb.Point) float64 {
	b := geo.Bearing(from, to)
	if b < 0 {
		b += 360
	}
	return b
}

// DepartureBearing returns the bearing of a polyline as it leaves the given
// endpoint. The endpoint is matched against whichever end of the line is
// closer, so callers don't need to know the line's stored orientation.
// Returns 0 for degenerate lines with fewer than two points.
func DepartureBearing(line orb.LineString, at orb.Point) float64 {
	if len(line) < 2 {
		return 0
	}
	first, last := line[0], line[len(line)-1]
	if geo.Distance(at, first) <= geo.Distance(at, last) {
		return Bearing(first, line[1])
	}
	return Bearing(last, line[len(line)-2])
}

// Separation returns the absolute angular separation between two bearings,
// in [0, 180].
func Separation(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Length returns the geodesic length of a polyline in meters.
func Length(line orb.LineString) float64 {
	var total float64
	for i := 1; i < len(line); i++ {
		total += geo.Distance(line[i-1], line[i])
	}
	return total
}

// TrimNear returns the portion of the line within dist meters of the given
// endpoint, walking segment by segment and interpolating the final point.
// The result is oriented away from the endpoint. Lines shorter than dist are
// returned whole; degenerate input yields an empty line.
func TrimNear(line orb.LineString, at orb.Point, dist float64) orb.LineString {
	if len(line) < 2 || dist <= 0 {
		return nil
	}

	oriented := line
	if geo.Distance(at, line[len(line)-1]) < geo.Distance(at, line[0]) {
		oriented = reversed(line)
	}

	out := orb.LineString{oriented[0]}
	remaining := dist
	for i := 1; i < len(oriented); i++ {
		seg := geo.Distance(oriented[i-1], oriented[i])
		if seg <= 0 {
			continue
		}
		if seg < remaining {
			out = append(out, oriented[i])
			remaining -= seg
			continue
		}
		out = append(out, interpolate(oriented[i-1], oriented[i], remaining/seg))
		break
	}
	if len(out) < 2 {
		return nil
	}
	return out
}

func reversed(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}

func interpolate(a, b orb.Point, frac float64) orb.Point {
	return orb.Point{
		a[0] + (b[0]-a[0])*frac,
		a[1] + (b[1]-a[1])*frac,
	}
}
