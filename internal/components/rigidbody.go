package components

import (
	"rigidcore/internal/collision"
	"rigidcore/internal/engine"
	"rigidcore/internal/geometry"
	"rigidcore/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

func init() {
	engine.RegisterComponent("Rigidbody", rigidbodyFactory, rigidbodySerializer)
}

// Rigidbody gives its GameObject dynamic state. A mass of zero makes it static.
type Rigidbody struct {
	engine.BaseComponent
	Body *physics.RigidBody
	mass float32
}

// NewRigidbody creates a body under default gravity; the physics world re-tunes it when added.
func NewRigidbody(mass float32) *Rigidbody {
	if mass < 0 {
		mass = 0
	}
	return &Rigidbody{Body: physics.NewRigidBody(mass, physics.DefaultTuning()), mass: mass}
}

// Mass is the configured mass, 0 for static bodies.
func (r *Rigidbody) Mass() float32 {
	return r.mass
}

func (r *Rigidbody) IsStatic() bool {
	return r.Body.IsStatic()
}

// Attach applies the world's gravity and, when a collider is given, fits the inertia tensor
// to the shape that collides. Spheres use their radius, everything else the size of its
// bounds at the object's scale. Neither spheres nor axis-aligned boxes scale in collision
// tests, so their tensors ignore the object's scale too.
func (r *Rigidbody) Attach(tuning physics.Tuning, collider *Collider) {
	r.Body.SetGravity(tuning.Gravity)
	if r.Body.IsStatic() || collider == nil {
		return
	}
	// Rotation is left out: the tensor is in body space.
	scaled := geometry.Transform{Scale: collider.Transform().Scale}
	shape := collider.Shape
	switch shape.Kind {
	case collision.KindSphere:
		r.Body.InverseInertia = physics.SphereInverseInertia(r.mass, shape.Sphere.Radius)
	default:
		r.Body.InverseInertia = physics.BoxInverseInertia(r.mass, shape.Bounds(scaled).Size())
	}
}

func rigidbodyFactory(props map[string]any) (engine.Component, error) {
	mass, err := floatProp(props, "mass", 1)
	if err != nil {
		return nil, err
	}
	if mass < 0 {
		return nil, errors.Errorf("mass: %v must not be negative", mass)
	}
	r := NewRigidbody(mass)
	b := r.Body

	if b.Restitution, err = floatProp(props, "restitution", physics.DefaultRestitution); err != nil {
		return nil, err
	}
	if b.Friction, err = floatProp(props, "friction", physics.DefaultFriction); err != nil {
		return nil, err
	}
	if b.Restitution < 0 || b.Friction < 0 {
		return nil, errors.New("restitution and friction must not be negative")
	}

	velocity, err := vectorProp(props, "velocity", rl.Vector3{})
	if err != nil {
		return nil, err
	}
	if !b.IsStatic() {
		b.Velocity = velocity
	}

	x, y, z, err := axisMask(props, "lock_linear")
	if err != nil {
		return nil, err
	}
	b.LockLinear(x, y, z)
	if x, y, z, err = axisMask(props, "lock_angular"); err != nil {
		return nil, err
	}
	b.LockAngular(x, y, z)
	return r, nil
}

func rigidbodySerializer(comp engine.Component) map[string]any {
	r, ok := comp.(*Rigidbody)
	if !ok {
		return nil
	}
	props := map[string]any{
		"mass":        r.mass,
		"restitution": r.Body.Restitution,
		"friction":    r.Body.Friction,
	}
	if v := r.Body.Velocity; v != (rl.Vector3{}) {
		props["velocity"] = vectorValue(v)
	}
	if axes := lockedAxes(r.Body.LinearUnlock); axes != "" {
		props["lock_linear"] = axes
	}
	if axes := lockedAxes(r.Body.AngularUnlock); axes != "" {
		props["lock_angular"] = axes
	}
	return props
}
