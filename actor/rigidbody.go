package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"
)

// BodyKind represents how a body takes part in the simulation
type BodyKind int

const (
	// BodyKindSolid bodies are detected and resolved against other bodies
	BodyKindSolid BodyKind = iota

	// BodyKindSensor bodies register collisions with other bodies but are meant to let them move through.
	// Whether they receive collision impulses is decided by the world.
	BodyKindSensor

	// BodyKindDecorative objects never get a physics body
	BodyKindDecorative
)

func (k BodyKind) String() string {
	switch k {
	case BodyKindSolid:
		return "solid"
	case BodyKindSensor:
		return "sensor"
	case BodyKindDecorative:
		return "decorative"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

// ErrDecorativeBody is returned when a physics body is requested for a decorative object.
var ErrDecorativeBody = errors.New("decorative objects have no physics body")

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	// ID is assigned by the world the body is added to, starting at 1.
	ID uint64
	// UserData is left untouched by the simulation; hosts use it to link their sprite.
	UserData any `copier:"-"`

	Kind BodyKind

	// Spatial properties, Position in pixels
	Transform Transform

	// Linear motion (m/s)
	Velocity mgl64.Vec2
	// Angular motion (rad/s)
	AngularVelocity float64

	// Local hull, immutable after construction
	hull     Polygon
	massData MassData
	// last torque applied, overwritten on every ApplyForce
	torque float64
	// scale of the world the body was created for
	pixelsPerMeter float64
	// world the body was added to, nil when free
	owner any
}

// NewRigidBody creates a new rigid body from a convex hull expressed in the body-local frame.
// position is the world position (pixels) of the local origin. Mass properties are computed once
// with a density of 1 per square meter, using pixelsPerMeter to convert from pixels.
func NewRigidBody(position mgl64.Vec2, hull Polygon, kind BodyKind, pixelsPerMeter float64) (*RigidBody, error) {
	if kind == BodyKindDecorative {
		return nil, ErrDecorativeBody
	}
	if len(hull) < 3 {
		return nil, fmt.Errorf("hull with %d vertices: %w", len(hull), ErrDegeneratePolygon)
	}
	for i, v := range hull {
		if !isFiniteVec2(v) {
			return nil, fmt.Errorf("hull vertex %d is %v: %w", i, v, ErrDegeneratePolygon)
		}
	}

	massData, err := ComputeMassData(hull, pixelsPerMeter)
	if err != nil {
		return nil, fmt.Errorf("rigid body: %w", err)
	}

	rb := &RigidBody{
		Kind: kind,
		Transform: Transform{
			Position: position,
		},
		Velocity:       mgl64.Vec2{0, 0},
		hull:           append(Polygon(nil), hull...),
		massData:       massData,
		pixelsPerMeter: pixelsPerMeter,
	}

	return rb, nil
}

// MassData returns the cached mass properties. They never change once the body is built.
func (rb *RigidBody) MassData() MassData {
	return rb.massData
}

func (rb *RigidBody) GetMass() float64 {
	return rb.massData.Mass
}

func (rb *RigidBody) GetInertia() float64 {
	return rb.massData.Inertia
}

// Torque returns the torque stored by the last ApplyForce call
func (rb *RigidBody) Torque() float64 {
	return rb.torque
}

func (rb *RigidBody) PixelsPerMeter() float64 {
	return rb.pixelsPerMeter
}

// LocalHull returns a copy of the hull in the body-local frame
func (rb *RigidBody) LocalHull() Polygon {
	return append(Polygon(nil), rb.hull...)
}

// WorldVertices returns the hull transformed by the current pose.
// The stored hull is never rotated in place; every call starts again from the local vertices.
func (rb *RigidBody) WorldVertices() Polygon {
	return rb.WorldVerticesInto(nil)
}

// WorldVerticesInto is WorldVertices writing into dst to reuse its storage.
func (rb *RigidBody) WorldVerticesInto(dst Polygon) Polygon {
	return rb.Transform.ApplyAll(dst, rb.hull, rb.massData.Centroid)
}

// WorldCentroid returns the centroid in world space (pixels).
// The body rotates about its centroid, so only the position moves it.
func (rb *RigidBody) WorldCentroid() mgl64.Vec2 {
	return rb.Transform.Position.Add(rb.massData.Centroid)
}

// Bounds returns the world-space AABB of the hull for the current pose
func (rb *RigidBody) Bounds() AABB {
	return BoundsOf(rb.WorldVertices())
}

// ApplyForce applies force (N) at offset r (meters) from the centroid during dt seconds.
//
// The linear velocity changes by force/mass·dt. The torque r × force replaces the stored torque
// instead of accumulating, so callers applying several forces in one step must sum them first.
// The angular velocity and the angle are advanced immediately.
func (rb *RigidBody) ApplyForce(force mgl64.Vec2, r mgl64.Vec2, dt float64) {
	if !(dt > 0) {
		return
	}

	// ========== LINEAR ==========
	acceleration := force.Mul(1.0 / rb.massData.Mass)
	rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))

	// ========== ANGULAR ==========
	rb.torque = force.Y()*r.X() - force.X()*r.Y()
	angularAcceleration := rb.torque / rb.massData.Inertia
	rb.AngularVelocity += angularAcceleration * dt
	rb.Transform.Angle += rb.AngularVelocity * dt
}

// Integrate moves the body by its velocity during dt seconds.
// Velocity is in meters per second and the position in pixels, so the scale is applied once here.
func (rb *RigidBody) Integrate(dt float64) {
	if !(dt > 0) {
		return
	}

	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt * rb.pixelsPerMeter))
}

// Claim records owner as the holder of the body. It fails when another owner already holds it.
func (rb *RigidBody) Claim(owner any) bool {
	if rb.owner != nil && rb.owner != owner {
		return false
	}
	rb.owner = owner
	return true
}

// Release frees the body when owner holds it.
func (rb *RigidBody) Release(owner any) {
	if rb.owner == owner {
		rb.owner = nil
	}
}

// Owner returns the current holder of the body, or nil.
func (rb *RigidBody) Owner() any {
	return rb.owner
}

// Move translates the body by (dx, dy) pixels without touching its velocity
func (rb *RigidBody) Move(dx, dy float64) {
	rb.Transform.Position = rb.Transform.Position.Add(mgl64.Vec2{dx, dy})
}

// KineticEnergy returns ½·m·v² + ½·I·ω² in joules
func (rb *RigidBody) KineticEnergy() float64 {
	return 0.5*rb.massData.Mass*rb.Velocity.Dot(rb.Velocity) +
		0.5*rb.massData.Inertia*rb.AngularVelocity*rb.AngularVelocity
}

// IsFinite reports whether the pose and velocities hold no NaN or infinite value.
func (rb *RigidBody) IsFinite() bool {
	return isFiniteVec2(rb.Transform.Position) && isFiniteVec2(rb.Velocity) &&
		!math.IsNaN(rb.Transform.Angle) && !math.IsInf(rb.Transform.Angle, 0) &&
		!math.IsNaN(rb.AngularVelocity) && !math.IsInf(rb.AngularVelocity, 0)
}

// Clone returns an independent copy of the body, held by no owner.
// Exported state is deep-copied and UserData is shared as is. The hull is immutable and shared too.
func (rb *RigidBody) Clone() (*RigidBody, error) {
	clone := &RigidBody{}
	if err := copier.CopyWithOption(clone, rb, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("clone body %d: %w", rb.ID, err)
	}

	clone.UserData = rb.UserData
	clone.hull = rb.hull
	clone.massData = rb.massData
	clone.torque = rb.torque
	clone.pixelsPerMeter = rb.pixelsPerMeter

	return clone, nil
}
