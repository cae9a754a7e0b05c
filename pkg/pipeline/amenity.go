package pipeline

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/urbanpilot/oddnet/pkg/odd"
	"github.com/urbanpilot/oddnet/pkg/roadnet"
)

// Default amenity proximity radii in meters. Schools and kindergartens
// cast a wide zone; parking lots only affect roads that touch them.
const (
	DefaultSchoolZoneRadius = 100.0
	DefaultParkingLotRadius = 15.0
)

// amenityFeatures tags road nodes near mapped facilities. Facilities are
// snapshot nodes carrying an amenity tag; they usually have no incident
// edges themselves. A road node qualifies when it lies within the
// facility radius, or when one of its incident edges passes through it.
// Each node gets at most one feature per kind, recording its nearest
// qualifying facility.
func amenityFeatures(g *roadnet.Graph, schoolRadius, parkingRadius float64) map[roadnet.NodeID][]odd.Feature {
	var schools, lots []*roadnet.Node
	for _, n := range g.Nodes() {
		switch n.Tags[roadnet.TagAmenity] {
		case roadnet.AmenitySchool, roadnet.AmenityKindergarten:
			schools = append(schools, n)
		case roadnet.AmenityParking:
			lots = append(lots, n)
		}
	}
	if len(schools) == 0 && len(lots) == 0 {
		return nil
	}

	out := make(map[roadnet.NodeID][]odd.Feature)
	for _, n := range g.Nodes() {
		// Facility points and other isolated nodes are not road nodes.
		if g.Degree(n.ID) == 0 {
			continue
		}
		if f, dist, ok := nearestFacility(g, n, schools, schoolRadius); ok {
			out[n.ID] = append(out[n.ID], odd.SchoolZoneFeature{
				Name:     f.Tags[roadnet.TagName],
				Distance: dist,
			})
		}
		if _, dist, ok := nearestFacility(g, n, lots, parkingRadius); ok {
			out[n.ID] = append(out[n.ID], odd.ParkingLotFeature{Distance: dist})
		}
	}
	return out
}

// nearestFacility returns the closest facility whose zone covers the
// node, along with the node's distance to it in meters.
func nearestFacility(g *roadnet.Graph, n *roadnet.Node, facilities []*roadnet.Node, radius float64) (*roadnet.Node, float64, bool) {
	var best *roadnet.Node
	bestDist := math.Inf(1)
	for _, f := range facilities {
		if f.ID == n.ID {
			continue
		}
		d := geo.Distance(n.Point, f.Point)
		covered := d <= radius
		if !covered {
			for _, e := range g.IncidentEdges(n.ID) {
				if lineWithin(e.Geometry, f.Point, radius) {
					covered = true
					break
				}
			}
		}
		if covered && d < bestDist {
			best, bestDist = f, d
		}
	}
	if best == nil {
		return nil, 0, false
	}
	return best, bestDist, true
}

// lineWithin reports whether any vertex of the line lies within radius
// meters of the point.
func lineWithin(line orb.LineString, pt orb.Point, radius float64) bool {
	for _, p := range line {
		if geo.Distance(p, pt) <= radius {
			return true
		}
	}
	return false
}
