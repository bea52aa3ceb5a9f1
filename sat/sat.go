// Package sat implements the Separating Axis Theorem for convex polygons.
//
// Two convex polygons are disjoint if and only if there is an axis on which their projections
// do not overlap. For polygons the candidate axes are the edge normals of both shapes.
// When no separating axis exists, the axis with the smallest overlap gives the penetration
// depth and a vertex of the other polygon approximates the contact point.
package sat

import (
	"math"

	"github.com/akmonengine/feather2d/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Projection is the interval covered by a polygon projected on an axis.
// MinIndex and MaxIndex are the indexes of the vertices reaching Min and Max.
type Projection struct {
	Min      float64
	Max      float64
	MinIndex int
	MaxIndex int
}

// CollisionResult describes an overlap between two polygons
type CollisionResult struct {
	// Overlap is the smallest penetration depth found, 0 when the polygons only touch
	Overlap float64
	// Axis is the unit edge normal along which Overlap was measured
	Axis mgl64.Vec2
	// ContactPoint approximates where the polygons touch
	ContactPoint mgl64.Vec2
}

// Normals returns the unit normal of every edge of poly.
// For the edge from v_i to v_i+1, with d = v_i − v_i+1, the normal is (d.y, −d.x) normalized.
// Zero-length edges have no direction and are skipped.
func Normals(poly actor.Polygon) []mgl64.Vec2 {
	normals := make([]mgl64.Vec2, 0, len(poly))
	for i := range poly {
		a, b := poly.Edge(i)
		if normal, ok := actor.SafeNormalize(actor.Perp(a.Sub(b))); ok {
			normals = append(normals, normal)
		}
	}
	return normals
}

// Project projects every vertex of poly on axis. The axis must be normalized for the
// interval to be measured in pixels. An empty polygon projects to the zero Projection.
func Project(axis mgl64.Vec2, poly actor.Polygon) Projection {
	if len(poly) == 0 {
		return Projection{}
	}

	p := axis.Dot(poly[0])
	projection := Projection{Min: p, Max: p}
	for i := 1; i < len(poly); i++ {
		p = axis.Dot(poly[i])
		if p < projection.Min {
			projection.Min = p
			projection.MinIndex = i
		} else if p > projection.Max {
			projection.Max = p
			projection.MaxIndex = i
		}
	}
	return projection
}

// ProjectionsOverlap reports whether two intervals share at least one point.
// Bounds are inclusive: touching intervals overlap with a depth of 0.
func ProjectionsOverlap(p1, p2 Projection) bool {
	return (p1.Min <= p2.Max && p1.Min >= p2.Min) ||
		(p1.Max <= p2.Max && p1.Max >= p2.Min) ||
		(p1.Max > p2.Max && p1.Min < p2.Min)
}

// Overlap returns the length shared by two overlapping intervals
func Overlap(p1, p2 Projection) float64 {
	return math.Min(p1.Max, p2.Max) - math.Max(p1.Min, p2.Min)
}

// contactIndex picks the vertex of the other polygon lying inside the axis owner's interval.
func contactIndex(axisShape, other Projection) int {
	if axisShape.Min < other.Min {
		return other.MinIndex
	}
	return other.MaxIndex
}

// Collide tests two convex polygons given in the same frame.
//
// The normals of a are tested first, then those of b. The first separating axis ends the test
// with (CollisionResult{}, false). Otherwise the axis with the strictly smallest overlap is kept,
// ties keeping the first one met, and the contact point is taken from the polygon that did not
// provide that axis.
func Collide(a, b actor.Polygon) (CollisionResult, bool) {
	if len(a) == 0 || len(b) == 0 {
		return CollisionResult{}, false
	}

	var result CollisionResult
	overlap := math.Inf(1)
	found := false

	shapes := [2]actor.Polygon{a, b}
	for n, owner := range shapes {
		other := shapes[1-n]
		for _, axis := range Normals(owner) {
			ownerProjection := Project(axis, owner)
			otherProjection := Project(axis, other)
			if !ProjectionsOverlap(ownerProjection, otherProjection) {
				return CollisionResult{}, false
			}

			if o := Overlap(ownerProjection, otherProjection); o < overlap {
				overlap = o
				found = true
				result = CollisionResult{
					Overlap:      o,
					Axis:         axis,
					ContactPoint: other[contactIndex(ownerProjection, otherProjection)],
				}
			}
		}
	}

	if !found {
		return CollisionResult{}, false
	}
	return result, true
}
