package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents the pose of a body in 2D space.
// Position is in rendering units (pixels), Angle in radians.
type Transform struct {
	Position mgl64.Vec2
	Angle    float64
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec2{0, 0},
		Angle:    0,
	}
}

// Apply maps a local point to world space, rotating it about pivot (local frame) and then translating by Position.
func (t Transform) Apply(local, pivot mgl64.Vec2) mgl64.Vec2 {
	rotated := mgl64.Rotate2D(t.Angle).Mul2x1(local.Sub(pivot))
	return t.Position.Add(pivot).Add(rotated)
}

// ApplyAll maps every local point of poly to world space into dst, which is grown as needed and returned.
// The rotation matrix is computed once for the whole polygon.
func (t Transform) ApplyAll(dst Polygon, poly Polygon, pivot mgl64.Vec2) Polygon {
	dst = dst[:0]
	rotation := mgl64.Rotate2D(t.Angle)
	origin := t.Position.Add(pivot)
	for _, p := range poly {
		dst = append(dst, origin.Add(rotation.Mul2x1(p.Sub(pivot))))
	}
	return dst
}
