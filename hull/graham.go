package hull

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/akmonengine/feather2d/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ColinearEpsilon is the band around zero in which an orientation value counts as colinear.
// It is in squared pixel units and applies before scaling.
const ColinearEpsilon = 0.01

var (
	// ErrEmptyMask is returned for a nil mask or a mask without pixels.
	ErrEmptyMask = errors.New("empty mask")
	// ErrInvalidScale is returned for a non-positive target height.
	ErrInvalidScale = errors.New("invalid target height")
	// ErrDegenerateShape is returned when fewer than 3 points remain to build a hull.
	ErrDegenerateShape = errors.New("shape derivation failed: degenerate shape")
)

// Orientation is the turn direction of an ordered triplet of points
type Orientation int

const (
	Colinear Orientation = iota
	Clockwise
	CounterClockwise
)

// orientation classifies the turn p → q → r.
// val = (q.y − p.y)(r.x − q.x) − (q.x − p.x)(r.y − q.y), with |val| < ColinearEpsilon colinear.
func orientation(p, q, r mgl64.Vec2) Orientation {
	val := (q.Y()-p.Y())*(r.X()-q.X()) - (q.X()-p.X())*(r.Y()-q.Y())

	if val < ColinearEpsilon && val > -ColinearEpsilon {
		return Colinear
	}
	if val > ColinearEpsilon {
		return Clockwise
	}
	return CounterClockwise
}

func distSq(p1, p2 mgl64.Vec2) float64 {
	d := p1.Sub(p2)
	return d.Dot(d)
}

// lowestIndex returns the index of the point with minimum y, the minimum x among equal y.
func lowestIndex(points []mgl64.Vec2) int {
	minIndex := 0
	for i, p := range points {
		lowest := points[minIndex]
		if p.Y() < lowest.Y() || (p.Y() == lowest.Y() && p.X() < lowest.X()) {
			minIndex = i
		}
	}
	return minIndex
}

// ConvexHull wraps points in the smallest convex polygon with a Graham scan.
//
// The pivot is the lowest point (leftmost among equals). The other points are sorted by polar
// angle around the pivot, colinear points nearest first. Only the farthest point of each
// colinear run is kept; fewer than 3 remaining points return ErrDegenerateShape.
// The hull is counter-clockwise (positive signed area). points is not modified.
func ConvexHull(points []mgl64.Vec2) (actor.Polygon, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%d input points: %w", len(points), ErrDegenerateShape)
	}

	sorted := slices.Clone(points)
	pivotIndex := lowestIndex(sorted)
	sorted[0], sorted[pivotIndex] = sorted[pivotIndex], sorted[0]
	p0 := sorted[0]

	// Sort the n-1 points with respect to the pivot.
	rest := sorted[1:]
	slices.SortStableFunc(rest, func(p1, p2 mgl64.Vec2) int {
		switch orientation(p0, p1, p2) {
		case Colinear:
			return cmp.Compare(distSq(p0, p1), distSq(p0, p2))
		case CounterClockwise:
			return -1
		default:
			return 1
		}
	})

	// Keep the farthest point of each colinear run, the sort put it last.
	candidates := make([]mgl64.Vec2, 1, len(sorted))
	candidates[0] = p0
	for i := 1; i < len(sorted); i++ {
		for i < len(sorted)-1 && orientation(p0, sorted[i], sorted[i+1]) == Colinear {
			i++
		}
		candidates = append(candidates, sorted[i])
	}

	if len(candidates) < 3 {
		return nil, fmt.Errorf("%d points after colinear collapse: %w", len(candidates), ErrDegenerateShape)
	}

	stack := make(actor.Polygon, 0, len(candidates))
	stack = append(stack, candidates[0], candidates[1], candidates[2])
	for _, p := range candidates[3:] {
		// Pop while next-to-top, top and p do not make a left turn
		for len(stack) > 1 && orientation(stack[len(stack)-2], stack[len(stack)-1], p) != CounterClockwise {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, p)
	}

	if len(stack) < 3 {
		return nil, fmt.Errorf("hull of %d points: %w", len(stack), ErrDegenerateShape)
	}

	return stack, nil
}
