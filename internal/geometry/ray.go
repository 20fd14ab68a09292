package geometry

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Ray is a half line. Direction is kept unit length so hit parameters are distances.
type Ray struct {
	Origin    rl.Vector3
	Direction rl.Vector3
}

// NewRay normalizes direction.
func NewRay(origin, direction rl.Vector3) Ray {
	return Ray{Origin: origin, Direction: rl.Vector3Normalize(direction)}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) rl.Vector3 {
	return rl.Vector3Add(r.Origin, rl.Vector3Scale(r.Direction, t))
}

// Transformed maps the ray into the space described by t.
func (r Ray) Transformed(t Transform) Ray {
	return NewRay(t.TransformPoint(r.Origin), t.TransformDirection(r.Direction))
}
