package physics

import (
	"rigidcore/internal/geometry"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Engine defaults for new bodies.
const (
	DefaultRestitution float32 = 0.5
	DefaultFriction    float32 = 0.1
)

var unlocked = rl.Vector3{X: 1, Y: 1, Z: 1}

// RigidBody is the dynamic state of one object. Forces accumulate during a tick, Update
// integrates them and resets the accumulators.
type RigidBody struct {
	InverseMass    float32   // 0 means infinite mass
	InverseInertia rl.Matrix // body space
	Velocity       rl.Vector3
	Torque         rl.Vector3

	// Per-axis multipliers (0 or 1) for linear and angular motion.
	LinearUnlock  rl.Vector3
	AngularUnlock rl.Vector3

	Restitution float32
	Friction    float32

	// Force is the resultant force accumulated this tick; it restarts at DefaultForce.
	Force        rl.Vector3
	DefaultForce rl.Vector3
}

// NewRigidBody creates a body of the given mass under the tuning's gravity, with the inertia
// of a unit box. A mass of zero or less makes a static body.
func NewRigidBody(mass float32, tuning Tuning) *RigidBody {
	b := &RigidBody{
		LinearUnlock:  unlocked,
		AngularUnlock: unlocked,
		Restitution:   DefaultRestitution,
		Friction:      DefaultFriction,
	}
	if mass <= 0 {
		b.SetStatic()
		return b
	}
	b.InverseMass = 1 / mass
	b.InverseInertia = BoxInverseInertia(mass, unlocked)
	b.DefaultForce = rl.Vector3Scale(tuning.Gravity, mass)
	b.Force = b.DefaultForce
	return b
}

// SetStatic gives the body infinite mass and stops it.
func (b *RigidBody) SetStatic() {
	b.InverseMass = 0
	b.InverseInertia = rl.Matrix{}
	b.Velocity = rl.Vector3Zero()
	b.Torque = rl.Vector3Zero()
	b.Force = rl.Vector3Zero()
	b.DefaultForce = rl.Vector3Zero()
}

// SetGravity recomputes the default force of a dynamic body for a new gravity vector.
func (b *RigidBody) SetGravity(gravity rl.Vector3) {
	if b.InverseMass == 0 {
		return
	}
	b.DefaultForce = rl.Vector3Scale(gravity, 1/b.InverseMass)
	b.Force = b.DefaultForce
}

func (b *RigidBody) IsStatic() bool {
	return b.InverseMass == 0
}

// Mass returns the body's mass, +Inf for static bodies.
func (b *RigidBody) Mass() float32 {
	if b.InverseMass == 0 {
		return math32.Inf(1)
	}
	return 1 / b.InverseMass
}

func (b *RigidBody) ApplyForce(f rl.Vector3) {
	b.Force = rl.Vector3Add(b.Force, f)
}

func (b *RigidBody) ApplyTorque(t rl.Vector3) {
	b.Torque = rl.Vector3Add(b.Torque, t)
}

// ApplyImpulse spreads an impulse over the tick as an equivalent force.
func (b *RigidBody) ApplyImpulse(impulse rl.Vector3, dt float32) {
	if dt <= 0 {
		return
	}
	b.ApplyForce(rl.Vector3Scale(impulse, 1/dt))
}

// LockLinear freezes translation along the selected world axes.
func (b *RigidBody) LockLinear(x, y, z bool) {
	b.LinearUnlock = unlockMask(x, y, z)
}

// LockAngular freezes rotation about the selected world axes.
func (b *RigidBody) LockAngular(x, y, z bool) {
	b.AngularUnlock = unlockMask(x, y, z)
}

func unlockMask(lockX, lockY, lockZ bool) rl.Vector3 {
	mask := unlocked
	if lockX {
		mask.X = 0
	}
	if lockY {
		mask.Y = 0
	}
	if lockZ {
		mask.Z = 0
	}
	return mask
}

// Update integrates one tick: velocity from the accumulated force, position from velocity,
// and rotation from the accumulated torque. Both accumulators are reset afterwards.
func (b *RigidBody) Update(t *geometry.Transform, dt float32) {
	// Linear
	accel := rl.Vector3Scale(b.Force, b.InverseMass)
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(accel, dt))
	t.Translate(rl.Vector3Scale(rl.Vector3Multiply(b.Velocity, b.LinearUnlock), dt))

	// Angular
	if !geometry.IsZero(b.Torque) {
		inverseInertia := worldInverseInertia(t.RotationMatrix(), b.InverseInertia)
		momentum := rl.Vector3Scale(b.Torque, dt)
		omega := rl.Vector3Multiply(rl.Vector3Transform(momentum, inverseInertia), b.AngularUnlock)
		if speed := rl.Vector3Length(omega); speed > 0 {
			t.Rotate(omega, speed*dt)
		}
	}

	b.Force = b.DefaultForce
	b.Torque = rl.Vector3Zero()
}
