package geometry

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OBB represents an Oriented Bounding Box
type OBB struct {
	Center   rl.Vector3    // World-space center
	HalfSize rl.Vector3    // Half-extents along local axes
	Axes     [3]rl.Vector3 // Local X, Y, Z axes (unit length)
}

// NewOBB creates an OBB from center, full size, and euler rotation (degrees)
func NewOBB(center, size, rotation rl.Vector3) OBB {
	rot := EulerMatrix(rotation)
	return OBB{
		Center:   center,
		HalfSize: rl.Vector3Scale(AbsVector(size), 0.5),
		Axes:     matrixAxes(rot),
	}
}

// OBBFromAABB creates an axis-aligned OBB covering the same volume as box.
func OBBFromAABB(box AABB) OBB {
	return OBB{
		Center:   box.Center(),
		HalfSize: box.HalfExtents(),
		Axes:     UnitAxes,
	}
}

// matrixAxes extracts the rotated basis vectors from a rotation matrix.
func matrixAxes(m rl.Matrix) [3]rl.Vector3 {
	return [3]rl.Vector3{
		rl.Vector3Normalize(rl.Vector3{X: m.M0, Y: m.M1, Z: m.M2}),
		rl.Vector3Normalize(rl.Vector3{X: m.M4, Y: m.M5, Z: m.M6}),
		rl.Vector3Normalize(rl.Vector3{X: m.M8, Y: m.M9, Z: m.M10}),
	}
}

// Transformed applies the full transform: the center is moved, and every axis is
// rotated and scaled, with the scale folded into the half sizes.
func (o OBB) Transformed(t Transform) OBB {
	out := OBB{Center: t.TransformPoint(o.Center)}
	for i := 0; i < 3; i++ {
		extent := t.TransformDirection(rl.Vector3Scale(o.Axes[i], Component(o.HalfSize, i)))
		length := rl.Vector3Length(extent)
		if length < 1e-8 {
			// Degenerate axis: keep the direction, collapse the extent.
			out.Axes[i] = t.RotateDirection(o.Axes[i])
			continue
		}
		out.Axes[i] = rl.Vector3Scale(extent, 1/length)
		out.HalfSize = WithComponent(out.HalfSize, i, length)
	}
	return out
}

// localCoords expresses p relative to the box center in the box's own axes.
func (o OBB) localCoords(p rl.Vector3) rl.Vector3 {
	local := rl.Vector3Subtract(p, o.Center)
	return rl.Vector3{
		X: rl.Vector3DotProduct(local, o.Axes[0]),
		Y: rl.Vector3DotProduct(local, o.Axes[1]),
		Z: rl.Vector3DotProduct(local, o.Axes[2]),
	}
}

// ClosestPoint returns the point of the solid box nearest to p.
func (o OBB) ClosestPoint(p rl.Vector3) rl.Vector3 {
	local := o.localCoords(p)

	result := o.Center
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[0], clampf(local.X, -o.HalfSize.X, o.HalfSize.X)))
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[1], clampf(local.Y, -o.HalfSize.Y, o.HalfSize.Y)))
	result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[2], clampf(local.Z, -o.HalfSize.Z, o.HalfSize.Z)))
	return result
}

func (o OBB) Distance2(p rl.Vector3) float32 {
	return rl.Vector3LengthSqr(rl.Vector3Subtract(p, o.ClosestPoint(p)))
}

// GetInterval projects the box onto axis.
func (o OBB) GetInterval(axis rl.Vector3) Interval {
	c := rl.Vector3DotProduct(o.Center, axis)
	r := o.projectedRadius(axis)
	return Interval{Min: c - r, Max: c + r}
}

func (o OBB) projectedRadius(axis rl.Vector3) float32 {
	return o.HalfSize.X*math32.Abs(rl.Vector3DotProduct(o.Axes[0], axis)) +
		o.HalfSize.Y*math32.Abs(rl.Vector3DotProduct(o.Axes[1], axis)) +
		o.HalfSize.Z*math32.Abs(rl.Vector3DotProduct(o.Axes[2], axis))
}

// Vertices returns the eight corners of the box.
func (o OBB) Vertices() [8]rl.Vector3 {
	var out [8]rl.Vector3
	for i := 0; i < 8; i++ {
		p := o.Center
		for axis := 0; axis < 3; axis++ {
			sign := float32(1)
			if i&(1<<axis) != 0 {
				sign = -1
			}
			p = rl.Vector3Add(p, rl.Vector3Scale(o.Axes[axis], sign*Component(o.HalfSize, axis)))
		}
		out[i] = p
	}
	return out
}

// Bounds returns the axis-aligned box enclosing the OBB.
func (o OBB) Bounds() AABB {
	half := rl.Vector3{
		X: o.projectedRadius(UnitAxes[0]),
		Y: o.projectedRadius(UnitAxes[1]),
		Z: o.projectedRadius(UnitAxes[2]),
	}
	return NewAABBFromHalfExtents(o.Center, half)
}
