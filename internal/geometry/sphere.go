package geometry

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type Sphere struct {
	Center rl.Vector3
	Radius float32
}

// Transformed translates the center. The radius is never scaled.
func (s Sphere) Transformed(t Transform) Sphere {
	return Sphere{Center: rl.Vector3Add(s.Center, t.Translation), Radius: s.Radius}
}

// ClosestPoint returns p itself when inside the sphere, otherwise the nearest surface point.
func (s Sphere) ClosestPoint(p rl.Vector3) rl.Vector3 {
	d := rl.Vector3Subtract(p, s.Center)
	dist2 := rl.Vector3LengthSqr(d)
	if dist2 <= s.Radius*s.Radius {
		return p
	}
	return rl.Vector3Add(s.Center, rl.Vector3Scale(d, s.Radius/math32.Sqrt(dist2)))
}

func (s Sphere) Distance2(p rl.Vector3) float32 {
	return rl.Vector3LengthSqr(rl.Vector3Subtract(p, s.ClosestPoint(p)))
}

func (s Sphere) GetInterval(axis rl.Vector3) Interval {
	c := rl.Vector3DotProduct(s.Center, axis)
	r := s.Radius * rl.Vector3Length(axis)
	return Interval{Min: c - r, Max: c + r}
}

// Bounds returns the box enclosing the sphere.
func (s Sphere) Bounds() AABB {
	return NewAABBFromHalfExtents(s.Center, rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius})
}
