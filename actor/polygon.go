package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// centroidEpsilon is the smallest |Σ det| accepted when dividing for the centroid.
const centroidEpsilon = 1e-9

var (
	// ErrDegeneratePolygon is returned when a polygon has fewer than 3 vertices or no enclosed area.
	ErrDegeneratePolygon = errors.New("degenerate polygon")
	// ErrInvalidMass is returned when derived mass properties are zero or not finite.
	ErrInvalidMass = errors.New("invalid mass properties")
	// ErrInvalidScale is returned for a non-positive or non-finite pixels-per-meter scale.
	ErrInvalidScale = errors.New("invalid pixels per meter")
)

// Polygon is an ordered list of vertices, implicitly closed (the last vertex connects back to the first).
type Polygon []mgl64.Vec2

// Edge returns the vertices of edge i, from vertex i to vertex i+1 (wrapping).
func (p Polygon) Edge(i int) (mgl64.Vec2, mgl64.Vec2) {
	return p[i], p[(i+1)%len(p)]
}

// triangleSectionArea is the signed area of the triangle (origin, p1, p2).
func triangleSectionArea(p1, p2 mgl64.Vec2) float64 {
	return (p1.X()*p2.Y() - p1.Y()*p2.X()) / 2
}

// SignedArea sums the signed areas of the triangles formed by each edge and the origin.
// The sign depends on the winding order.
func (p Polygon) SignedArea() float64 {
	area := 0.0
	for i := range p {
		area += triangleSectionArea(p.Edge(i))
	}
	return area
}

// Area returns the absolute area of the polygon.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// Centroid returns the area centroid of the polygon:
// Σ (p_i + p_i+1)·det_i / (3·Σ det_i), with det_i = x_i·y_i+1 − x_i+1·y_i.
func (p Polygon) Centroid() (mgl64.Vec2, error) {
	if len(p) < 3 {
		return mgl64.Vec2{}, fmt.Errorf("centroid of %d vertices: %w", len(p), ErrDegeneratePolygon)
	}

	var centroidX, centroidY, det float64
	for i := range p {
		a, b := p.Edge(i)
		tempDet := a.X()*b.Y() - b.X()*a.Y()
		det += tempDet

		centroidX += (a.X() + b.X()) * tempDet
		centroidY += (a.Y() + b.Y()) * tempDet
	}

	if math.Abs(det) < centroidEpsilon || math.IsNaN(det) || math.IsInf(det, 0) {
		return mgl64.Vec2{}, fmt.Errorf("centroid determinant %v: %w", det, ErrDegeneratePolygon)
	}

	centroid := mgl64.Vec2{centroidX / (3 * det), centroidY / (3 * det)}
	if !isFiniteVec2(centroid) {
		return mgl64.Vec2{}, fmt.Errorf("centroid %v: %w", centroid, ErrDegeneratePolygon)
	}

	return centroid, nil
}

// MomentOfInertia returns the area moment of inertia of the polygon about axis.
//
// The polygon is split into triangles (origin, v_i, v_i+1). Each contributes
// (a/36)·(p1·p1 + p2·p2 + p1·p2) plus a·|centroid_tri − axis|², with a the signed
// triangle area. The result carries the winding sign; callers take the absolute value.
func (p Polygon) MomentOfInertia(axis mgl64.Vec2) float64 {
	mmoi := 0.0
	for i := range p {
		p1, p2 := p.Edge(i)
		sectionArea := triangleSectionArea(p1, p2)
		sectionMmoi := (sectionArea / 36.0) * (p1.Dot(p1) + p2.Dot(p2) + p1.Dot(p2))

		triangleCentroid := p1.Add(p2).Mul(1.0 / 3.0)
		distance := triangleCentroid.Sub(axis)

		mmoi += sectionMmoi + sectionArea*distance.Dot(distance)
	}
	return mmoi
}

// Translate returns a copy of p moved by offset.
func (p Polygon) Translate(offset mgl64.Vec2) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Add(offset)
	}
	return out
}

// Scale returns a copy of p with every coordinate multiplied by factor.
func (p Polygon) Scale(factor float64) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Mul(factor)
	}
	return out
}

// MassData holds the mass properties derived once from a body's local hull.
// Area and Centroid are in rendering units (pixels), Mass and Inertia in physical units (density 1).
type MassData struct {
	Area     float64
	Mass     float64
	Inertia  float64
	Centroid mgl64.Vec2
}

// ComputeMassData derives area, centroid, mass and moment of inertia of hull.
// Pixel quantities are converted with pixelsPerMeter: mass = area/ppm², inertia = mmoi/ppm².
func ComputeMassData(hull Polygon, pixelsPerMeter float64) (MassData, error) {
	if pixelsPerMeter <= 0 || math.IsNaN(pixelsPerMeter) || math.IsInf(pixelsPerMeter, 0) {
		return MassData{}, fmt.Errorf("pixels per meter %v: %w", pixelsPerMeter, ErrInvalidScale)
	}

	centroid, err := hull.Centroid()
	if err != nil {
		return MassData{}, err
	}

	ppm2 := pixelsPerMeter * pixelsPerMeter
	data := MassData{
		Area:     hull.Area(),
		Centroid: centroid,
	}
	data.Mass = data.Area / ppm2
	data.Inertia = math.Abs(hull.MomentOfInertia(centroid)) / ppm2

	if !validPositive(data.Area) || !validPositive(data.Mass) {
		return MassData{}, fmt.Errorf("area %v, mass %v: %w", data.Area, data.Mass, ErrInvalidMass)
	}
	if !validPositive(data.Inertia) {
		return MassData{}, fmt.Errorf("moment of inertia %v: %w", data.Inertia, ErrInvalidMass)
	}

	return data, nil
}

func validPositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
