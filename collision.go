package feather2d

import (
	"github.com/akmonengine/feather2d/actor"
	"github.com/akmonengine/feather2d/constraint"
	"github.com/akmonengine/feather2d/sat"
)

// pairKey identifies an unordered pair of bodies by their IDs, idA < idB
type pairKey struct {
	idA uint64
	idB uint64
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB *actor.RigidBody) pairKey {
	if bodyB.ID < bodyA.ID {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{idA: bodyA.ID, idB: bodyB.ID}
}

// isSensorPair reports whether at least one body of the contact is a sensor
func isSensorPair(c *constraint.ElasticContact) bool {
	return c.BodyA.Kind == actor.BodyKindSensor || c.BodyB.Kind == actor.BodyKindSensor
}

// worldVertices transforms every hull once for the tick
func (w *World) worldVertices() []actor.Polygon {
	if cap(w.vertices) < len(w.Bodies) {
		w.vertices = make([]actor.Polygon, len(w.Bodies))
	}
	w.vertices = w.vertices[:len(w.Bodies)]

	for i, body := range w.Bodies {
		w.vertices[i] = body.WorldVerticesInto(w.vertices[i])
	}
	return w.vertices
}

// detectCollisions tests every pair (i < j) in insertion order, brute force.
// Colliding pairs are recorded in the current relation and returned in test order.
func (w *World) detectCollisions() []*constraint.ElasticContact {
	vertices := w.worldVertices()

	var contacts []*constraint.ElasticContact
	for i := 0; i < len(w.Bodies); i++ {
		for j := i + 1; j < len(w.Bodies); j++ {
			result, ok := sat.Collide(vertices[i], vertices[j])
			if !ok {
				continue
			}

			contact := &constraint.ElasticContact{
				BodyA:  w.Bodies[i],
				BodyB:  w.Bodies[j],
				Result: result,
			}
			contacts = append(contacts, contact)
			w.currentPairs[makePairKey(contact.BodyA, contact.BodyB)] = contact
		}
	}

	return contacts
}

// solveVelocity resolves the contacts in order, skipping the pairs that were already colliding
// at the previous tick so a lasting overlap gets a single impulse.
func (w *World) solveVelocity(contacts []*constraint.ElasticContact) {
	constraints := w.constraints[:0]
	for _, contact := range contacts {
		if _, ok := w.previousPairs[makePairKey(contact.BodyA, contact.BodyB)]; ok {
			continue
		}
		if w.ExemptSensors && isSensorPair(contact) {
			continue
		}

		constraints = append(constraints, contact)
	}

	for _, c := range constraints {
		c.SolveVelocity()
	}

	clear(constraints)
	w.constraints = constraints[:0]
}
