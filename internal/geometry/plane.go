package geometry

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Plane is the set of points x with dot(Normal, x) == D. Normal is unit length.
type Plane struct {
	Normal rl.Vector3
	D      float32
}

// NewPlane builds a plane through point with the given normal.
func NewPlane(normal, point rl.Vector3) Plane {
	n := rl.Vector3Normalize(normal)
	return Plane{Normal: n, D: rl.Vector3DotProduct(n, point)}
}

// SignedDistance is positive on the side the normal points to.
func (p Plane) SignedDistance(point rl.Vector3) float32 {
	return rl.Vector3DotProduct(p.Normal, point) - p.D
}

func (p Plane) ClosestPoint(point rl.Vector3) rl.Vector3 {
	return rl.Vector3Subtract(point, rl.Vector3Scale(p.Normal, p.SignedDistance(point)))
}

func (p Plane) Distance2(point rl.Vector3) float32 {
	d := p.SignedDistance(point)
	return d * d
}

// Transformed moves the plane into world space. The normal follows the rotation only.
func (p Plane) Transformed(t Transform) Plane {
	onPlane := t.TransformPoint(rl.Vector3Scale(p.Normal, p.D))
	return NewPlane(t.RotateDirection(p.Normal), onPlane)
}

// GetInterval projects the plane onto axis. The projection is a single value when the
// axis is parallel to the normal and unbounded otherwise.
func (p Plane) GetInterval(axis rl.Vector3) Interval {
	length := rl.Vector3Length(axis)
	if length == 0 {
		return Interval{}
	}
	dot := rl.Vector3DotProduct(p.Normal, axis)
	if math32.Abs(math32.Abs(dot)-length) > 1e-6*length {
		return Interval{Min: math32.Inf(-1), Max: math32.Inf(1)}
	}
	v := p.D * dot
	return Interval{Min: v, Max: v}
}
