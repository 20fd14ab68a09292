package components

import (
	"rigidcore/internal/engine"
	"rigidcore/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("Rotator", rotatorFactory, rotatorSerializer)
}

// Rotator spins its object about Axis at Speed degrees per second. It moves the transform
// directly, so a rotating collider acts as a kinematic obstacle.
type Rotator struct {
	engine.BaseComponent
	Axis  rl.Vector3
	Speed float32
}

func (r *Rotator) Update(deltaTime float32) {
	g := r.GetGameObject()
	if g == nil {
		return
	}
	g.Transform.Rotate(r.Axis, r.Speed*rl.Deg2rad*deltaTime)
}

func rotatorFactory(props map[string]any) (engine.Component, error) {
	speed, err := floatProp(props, "speed", 90)
	if err != nil {
		return nil, err
	}
	axis, err := vectorProp(props, "axis", rl.Vector3{Y: 1})
	if err != nil {
		return nil, err
	}
	if geometry.IsZero(axis) {
		axis = rl.Vector3{Y: 1}
	}
	return &Rotator{Axis: axis, Speed: speed}, nil
}

func rotatorSerializer(c engine.Component) map[string]any {
	r, ok := c.(*Rotator)
	if !ok {
		return nil
	}
	return map[string]any{
		"speed": r.Speed,
		"axis":  vectorValue(r.Axis),
	}
}
