package geometry

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// AABB is an axis-aligned box given by its minimum and maximum corners.
type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// NewAABBFromCenter creates an AABB from a center point and full size dimensions.
func NewAABBFromCenter(center, size rl.Vector3) AABB {
	half := rl.Vector3{X: math32.Abs(size.X) / 2, Y: math32.Abs(size.Y) / 2, Z: math32.Abs(size.Z) / 2}
	return AABB{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

// NewAABBFromHalfExtents creates an AABB from a center point and half extents.
func NewAABBFromHalfExtents(center, half rl.Vector3) AABB {
	half = AbsVector(half)
	return AABB{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

func (a AABB) Center() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(a.Min, a.Max), 0.5)
}

func (a AABB) HalfExtents() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Subtract(a.Max, a.Min), 0.5)
}

func (a AABB) Size() rl.Vector3 {
	return rl.Vector3Subtract(a.Max, a.Min)
}

// Transformed moves the box into world space. Only the translation is applied:
// rotated or scaled boxes should be described as an OBB.
func (a AABB) Transformed(t Transform) AABB {
	return a.Translated(t.Translation)
}

// Translated returns the box shifted by v.
func (a AABB) Translated(v rl.Vector3) AABB {
	return AABB{Min: rl.Vector3Add(a.Min, v), Max: rl.Vector3Add(a.Max, v)}
}

// Contains reports whether p lies inside or on the box.
func (a AABB) Contains(p rl.Vector3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// ClosestPoint clamps p into the box on each axis.
func (a AABB) ClosestPoint(p rl.Vector3) rl.Vector3 {
	return rl.Vector3{
		X: clampf(p.X, a.Min.X, a.Max.X),
		Y: clampf(p.Y, a.Min.Y, a.Max.Y),
		Z: clampf(p.Z, a.Min.Z, a.Max.Z),
	}
}

// Distance2 is the squared distance from p to the box (zero inside).
func (a AABB) Distance2(p rl.Vector3) float32 {
	return rl.Vector3LengthSqr(rl.Vector3Subtract(p, a.ClosestPoint(p)))
}

// GetInterval projects the box onto axis.
func (a AABB) GetInterval(axis rl.Vector3) Interval {
	c := rl.Vector3DotProduct(a.Center(), axis)
	h := a.HalfExtents()
	r := h.X*math32.Abs(axis.X) + h.Y*math32.Abs(axis.Y) + h.Z*math32.Abs(axis.Z)
	return Interval{Min: c - r, Max: c + r}
}

// Interval returns the box's extent on world axis 0, 1 or 2.
func (a AABB) Interval(axis int) Interval {
	return Interval{Min: Component(a.Min, axis), Max: Component(a.Max, axis)}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Union returns the smallest box enclosing both boxes.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: minVector(a.Min, b.Min), Max: maxVector(a.Max, b.Max)}
}

// Resolve returns the minimum translation vector to push 'a' out of 'b'.
// Returns zero vector if no overlap.
func (a AABB) Resolve(b AABB) rl.Vector3 {
	if !a.Intersects(b) {
		return rl.Vector3Zero()
	}

	// Penetration depth in each direction
	pushes := [6]rl.Vector3{
		{X: b.Max.X - a.Min.X},
		{X: -(a.Max.X - b.Min.X)},
		{Y: b.Max.Y - a.Min.Y},
		{Y: -(a.Max.Y - b.Min.Y)},
		{Z: b.Max.Z - a.Min.Z},
		{Z: -(a.Max.Z - b.Min.Z)},
	}

	result := pushes[0]
	min := math32.Abs(pushes[0].X)
	for i := 1; i < len(pushes); i++ {
		depth := math32.Abs(Component(pushes[i], i/2))
		if depth < min {
			min = depth
			result = pushes[i]
		}
	}
	return result
}

// BoundsOf returns the AABB enclosing points. It returns the zero box for no points.
func BoundsOf(points ...rl.Vector3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min = minVector(box.Min, p)
		box.Max = maxVector(box.Max, p)
	}
	return box
}
