// Package constraint resolves the velocity response of colliding bodies.
package constraint

import (
	"github.com/akmonengine/feather2d/actor"
	"github.com/akmonengine/feather2d/sat"
)

// Constraint is a velocity response solved by the world once per tick.
type Constraint interface {
	SolveVelocity()
}

// ElasticContact is a collision between two bodies, resolved once as an approximate elastic exchange.
//
// The exchange acts along the axis joining the world centroids of the bodies. The SAT axis and
// contact point in Result are kept for observers but ignored by the response, so collisions
// never produce rotation.
type ElasticContact struct {
	BodyA  *actor.RigidBody
	BodyB  *actor.RigidBody
	Result sat.CollisionResult
}

// SolveVelocity applies the exchange:
//
//	n = normalize(cB − cA), vrel = (vA − vB)·n, k = 2·mB / (mA + mB)
//	vA −= k·vrel·n, vB += k·vrel·n
//
// Coincident centroids give no direction and leave both velocities untouched.
func (c *ElasticContact) SolveVelocity() {
	ResolveElastic(c.BodyA, c.BodyB)
}

// ResolveElastic runs the elastic exchange between bodyA and bodyB. It reports whether an impulse was applied.
func ResolveElastic(bodyA, bodyB *actor.RigidBody) bool {
	normal, ok := actor.SafeNormalize(bodyB.WorldCentroid().Sub(bodyA.WorldCentroid()))
	if !ok {
		return false
	}

	massA := bodyA.GetMass()
	massB := bodyB.GetMass()

	relativeVelocity := bodyA.Velocity.Sub(bodyB.Velocity).Dot(normal)
	ratio := 2 * massB / (massA + massB)
	impulse := normal.Mul(ratio * relativeVelocity)

	bodyA.Velocity = bodyA.Velocity.Sub(impulse)
	bodyB.Velocity = bodyB.Velocity.Add(impulse)

	return true
}
