// Package feather2d is a minimal 2D rigid-body core for sprite games.
//
// Collision shapes are derived from sprite alpha masks, bodies move under forces and gravity,
// overlaps are detected with SAT and resolved with an edge-triggered elastic velocity exchange.
// A World is single-threaded: run independent worlds to simulate in parallel.
package feather2d

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/akmonengine/feather2d/actor"
	"github.com/akmonengine/feather2d/constraint"
	"github.com/akmonengine/feather2d/hull"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrInvalidConfig is returned for a non-positive scale or a non-finite gravity.
	ErrInvalidConfig = errors.New("invalid world configuration")
	// ErrInvalidBody is returned by AddBody for bodies the world cannot simulate.
	ErrInvalidBody = errors.New("invalid body")
)

// World holds the rigid bodies of a simulation and steps them together.
type World struct {
	// List of all rigid bodies in the world, in insertion order.
	// Pairs are tested and resolved in this order, which changes the outcome when
	// several bodies collide in the same tick.
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg)
	Gravity mgl64.Vec2
	// PixelsPerMeter converts physical units to the rendering units of body positions
	PixelsPerMeter float64
	// ExemptSensors stops collisions involving a sensor from changing velocities
	ExemptSensors bool

	Events Events

	// colliding pairs found by the previous tick, and the ones being found by the current tick
	previousPairs map[pairKey]*constraint.ElasticContact
	currentPairs  map[pairKey]*constraint.ElasticContact
	// reused storage for world-space hulls and the constraints of a tick
	vertices    []actor.Polygon
	constraints []constraint.Constraint
	nextID   uint64
}

// NewWorld creates an empty world.
// pixelsPerMeter must be positive and finite, and gravity (m/s²) finite.
func NewWorld(pixelsPerMeter float64, gravity mgl64.Vec2) (*World, error) {
	if !(pixelsPerMeter > 0) || math.IsInf(pixelsPerMeter, 0) {
		return nil, fmt.Errorf("pixels per meter %v: %w", pixelsPerMeter, ErrInvalidConfig)
	}
	if math.IsNaN(gravity.X()) || math.IsNaN(gravity.Y()) || math.IsInf(gravity.X(), 0) || math.IsInf(gravity.Y(), 0) {
		return nil, fmt.Errorf("gravity %v: %w", gravity, ErrInvalidConfig)
	}

	return &World{
		Gravity:        gravity,
		PixelsPerMeter: pixelsPerMeter,
		Events:         NewEvents(),
		previousPairs:  make(map[pairKey]*constraint.ElasticContact),
		currentPairs:   make(map[pairKey]*constraint.ElasticContact),
	}, nil
}

// CreateBody derives a body from a sprite mask drawn targetHeight pixels high with its top-left
// corner at (x, y), and adds it to the world.
// Decorative objects have no physics body: (nil, nil) is returned and nothing is added.
func (w *World) CreateBody(x, y, targetHeight float64, mask *hull.Mask, kind actor.BodyKind) (*actor.RigidBody, error) {
	if kind == actor.BodyKindDecorative {
		return nil, nil
	}

	shape, err := hull.Derive(mask, targetHeight)
	if err != nil {
		return nil, err
	}

	body, err := actor.NewRigidBody(mgl64.Vec2{x, y}, shape, kind, w.PixelsPerMeter)
	if err != nil {
		return nil, err
	}

	if err := w.AddBody(body); err != nil {
		return nil, err
	}

	return body, nil
}

// AddBody appends a rigid body to the world and assigns its ID.
// The body must have been built for the world's pixels-per-meter scale, and belong to no other world.
func (w *World) AddBody(body *actor.RigidBody) error {
	if body == nil {
		return fmt.Errorf("nil body: %w", ErrInvalidBody)
	}
	if body.PixelsPerMeter() != w.PixelsPerMeter {
		return fmt.Errorf("body built for %v pixels per meter, world uses %v: %w",
			body.PixelsPerMeter(), w.PixelsPerMeter, ErrInvalidBody)
	}
	if body.Owner() == w {
		return fmt.Errorf("body %d already added: %w", body.ID, ErrInvalidBody)
	}
	if !body.Claim(w) {
		return fmt.Errorf("body %d belongs to another world: %w", body.ID, ErrInvalidBody)
	}

	w.nextID++
	body.ID = w.nextID
	w.Bodies = append(w.Bodies, body)

	return nil
}

// RemoveBody removes a rigid body from the world, which frees it to join another one.
// Its colliding pairs are forgotten without emitting exit events.
func (w *World) RemoveBody(body *actor.RigidBody) {
	k := slices.Index(w.Bodies, body)
	if k == -1 {
		return
	}
	w.Bodies = slices.Delete(w.Bodies, k, k+1)
	body.Release(w)

	for pair := range w.previousPairs {
		if pair.idA == body.ID || pair.idB == body.ID {
			delete(w.previousPairs, pair)
		}
	}
}

// Body returns the body with the given ID, or nil.
func (w *World) Body(id uint64) *actor.RigidBody {
	for _, body := range w.Bodies {
		if body.ID == id {
			return body
		}
	}
	return nil
}

// IsColliding reports whether the two bodies were found overlapping by the last tick.
func (w *World) IsColliding(bodyA, bodyB *actor.RigidBody) bool {
	_, ok := w.previousPairs[makePairKey(bodyA, bodyB)]
	return ok
}

// Step advances the simulation by dt seconds. A dt that is not positive (or NaN) does nothing.
//
// Every tick, in order:
//  1. each pair of bodies (i < j) is tested with SAT, and resolved once when it was not
//     already colliding at the previous tick;
//  2. the colliding pairs replace the ones of the previous tick;
//  3. every body receives its weight at its centroid, then moves by its velocity.
func (w *World) Step(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	if w.previousPairs == nil {
		w.previousPairs = make(map[pairKey]*constraint.ElasticContact)
		w.currentPairs = make(map[pairKey]*constraint.ElasticContact)
	}

	// Phase 1: Narrow phase on every pair, then the edge-triggered response
	contacts := w.detectCollisions()
	w.solveVelocity(contacts)

	// Phase 2: Record the pairs for the next tick
	w.Events.recordCollisions(contacts, w.previousPairs)
	w.previousPairs, w.currentPairs = w.currentPairs, w.previousPairs
	clear(w.currentPairs)

	// Phase 3: Gravity & integration
	w.integrate(dt)

	w.Events.flush()
}

func (w *World) integrate(dt float64) {
	for _, body := range w.Bodies {
		body.ApplyForce(w.Gravity.Mul(body.GetMass()), mgl64.Vec2{0, 0}, dt)
		body.Integrate(dt)
	}
}

// Clone returns an independent copy of the world, its bodies and colliding pairs.
// Body IDs are kept, listeners are not copied.
func (w *World) Clone() (*World, error) {
	clone := &World{
		Bodies:         make([]*actor.RigidBody, 0, len(w.Bodies)),
		Gravity:        w.Gravity,
		PixelsPerMeter: w.PixelsPerMeter,
		ExemptSensors:  w.ExemptSensors,
		Events:         NewEvents(),
		previousPairs:  make(map[pairKey]*constraint.ElasticContact, len(w.previousPairs)),
		currentPairs:   make(map[pairKey]*constraint.ElasticContact),
		nextID:         w.nextID,
	}

	bodies := make(map[uint64]*actor.RigidBody, len(w.Bodies))
	for _, body := range w.Bodies {
		c, err := body.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone world: %w", err)
		}
		c.Claim(clone)
		clone.Bodies = append(clone.Bodies, c)
		bodies[c.ID] = c
	}

	for pair, contact := range w.previousPairs {
		clone.previousPairs[pair] = &constraint.ElasticContact{
			BodyA:  bodies[contact.BodyA.ID],
			BodyB:  bodies[contact.BodyB.ID],
			Result: contact.Result,
		}
	}

	return clone, nil
}
