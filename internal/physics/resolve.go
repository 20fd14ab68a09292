package physics

import (
	"rigidcore/internal/collision"
	"rigidcore/internal/geometry"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrInfiniteMassPair is returned when both bodies of a colliding pair have infinite mass.
var ErrInfiniteMassPair = errors.New("both bodies have infinite mass")

// Tangential speeds below this are treated as no sliding.
const restingSpeed2 = 1e-8

// ResolveCollisions applies the restitution impulse and friction between b (transformed by
// self) and other. Impulses go into the force accumulators of both bodies as force over dt, so
// velocities change on the next Update. Bodies with infinite mass are never changed.
//
// Call it once per colliding pair and tick: it already acts on both bodies.
func (b *RigidBody) ResolveCollisions(ctx *Context, self, other geometry.Transform, selfShape, otherShape collision.Shape, otherBody *RigidBody, dt float32) error {
	if b.InverseMass == 0 && otherBody.InverseMass == 0 {
		err := errors.Wrap(ErrInfiniteMassPair, "resolve collision")
		ctx.Logger.Error("Physics: skipping collision between immovable bodies",
			zap.Stringer("kindA", selfShape.Kind), zap.Stringer("kindB", otherShape.Kind), zap.Error(err))
		return err
	}
	if dt <= 0 {
		return nil
	}

	relVel := rl.Vector3Subtract(b.Velocity, otherBody.Velocity)
	normal := ctx.Detector.CollisionNormal(selfShape, otherShape, self, other, relVel, dt)
	if geometry.IsZero(normal) {
		// Unsupported combination, already logged by the detector.
		return nil
	}

	// The fallback normal is scaled by the ejection ratio; friction works on the unit direction.
	unit := rl.Vector3Normalize(normal)
	leverSelf := contactLever(selfShape.Bounds(self), unit)
	leverOther := contactLever(otherShape.Bounds(other), rl.Vector3Negate(unit))

	// The ejection ratio scales the impulse once, through normal.
	velAlongNormal := rl.Vector3DotProduct(relVel, unit)
	if velAlongNormal < 0 {
		e := math32.Min(b.Restitution, otherBody.Restitution)
		j := -(1 + e) * velAlongNormal / (b.InverseMass + otherBody.InverseMass)
		impulse := rl.Vector3Scale(normal, j)

		b.applyContactImpulse(impulse, leverSelf, dt)
		otherBody.applyContactImpulse(rl.Vector3Negate(impulse), leverOther, dt)
	}

	mu := mixFriction(b.Friction, otherBody.Friction)
	smoothing := ctx.Tuning.FrictionSmoothing
	b.applyFriction(unit, relVel, mu, leverSelf, smoothing, dt)
	otherBody.applyFriction(rl.Vector3Negate(unit), rl.Vector3Negate(relVel), mu, leverOther, smoothing, dt)
	return nil
}

// contactLever estimates the arm from the body center to the contact: half the body's extent
// along the normal, on the side facing the other body.
func contactLever(bounds geometry.AABB, normal rl.Vector3) rl.Vector3 {
	half := bounds.HalfExtents()
	return rl.Vector3{
		X: -normal.X * half.X,
		Y: -normal.Y * half.Y,
		Z: -normal.Z * half.Z,
	}
}

// mixFriction combines two friction coefficients with the geometric mean.
func mixFriction(a, b float32) float32 {
	return math32.Sqrt(a * b)
}

func (b *RigidBody) applyContactImpulse(impulse, lever rl.Vector3, dt float32) {
	if b.InverseMass == 0 {
		return
	}
	force := rl.Vector3Scale(impulse, 1/dt)
	b.Force = rl.Vector3Add(b.Force, force)
	b.Torque = rl.Vector3Add(b.Torque, rl.Vector3CrossProduct(lever, force))
}

// applyFriction is Coulomb friction against the tangential relative velocity. The force able
// to stop the body within one tick is compared with friction*|normal force|: when it is
// smaller the body sticks (static friction), otherwise full kinetic friction opposes the
// slide and its torque is blended into the accumulator.
func (b *RigidBody) applyFriction(normal, relVel rl.Vector3, mu float32, lever rl.Vector3, smoothing, dt float32) {
	if b.InverseMass == 0 || mu == 0 {
		return
	}
	tangent := rl.Vector3Subtract(relVel, rl.Vector3Scale(normal, rl.Vector3DotProduct(relVel, normal)))
	if rl.Vector3LengthSqr(tangent) < restingSpeed2 {
		return
	}
	tangent = rl.Vector3Normalize(tangent)

	normalForce := math32.Abs(rl.Vector3DotProduct(b.Force, normal))
	maxFriction := mu * normalForce

	forceAlong := rl.Vector3DotProduct(b.Force, tangent)
	speedAlong := rl.Vector3DotProduct(b.Velocity, tangent)
	drive := forceAlong + speedAlong/(b.InverseMass*dt)

	if math32.Abs(drive) <= maxFriction {
		b.Velocity = rl.Vector3Subtract(b.Velocity, rl.Vector3Scale(tangent, speedAlong))
		b.Force = rl.Vector3Subtract(b.Force, rl.Vector3Scale(tangent, forceAlong))
		return
	}

	friction := rl.Vector3Scale(tangent, -maxFriction)
	b.Force = rl.Vector3Add(b.Force, friction)
	frictionTorque := rl.Vector3CrossProduct(lever, friction)
	b.Torque = rl.Vector3Add(rl.Vector3Scale(b.Torque, 1-smoothing), rl.Vector3Scale(frictionTorque, smoothing))
}
