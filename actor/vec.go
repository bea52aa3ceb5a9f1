package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cross returns the z component of the 3D cross product of a and b.
func Cross(a, b mgl64.Vec2) float64 {
	return a.X()*b.Y() - a.Y()*b.X()
}

// Perp returns v rotated by -90 degrees: (y, -x)
func Perp(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{v.Y(), -v.X()}
}

// SafeNormalize returns the unit vector of v, or the zero vector (and false) when v has no usable length.
// mgl64's Normalize divides by the length without checking it.
func SafeNormalize(v mgl64.Vec2) (mgl64.Vec2, bool) {
	l := v.Len()
	if l < 1e-12 || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec2{}, false
	}
	return v.Mul(1.0 / l), true
}

func isFiniteVec2(v mgl64.Vec2) bool {
	return !math.IsNaN(v.X()) && !math.IsInf(v.X(), 0) && !math.IsNaN(v.Y()) && !math.IsInf(v.Y(), 0)
}
