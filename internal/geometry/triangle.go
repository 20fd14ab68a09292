package geometry

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Triangle represents a single triangle with precomputed normal
type Triangle struct {
	A, B, C rl.Vector3
	Normal  rl.Vector3
}

// NewTriangle builds a triangle and computes its unit normal from the winding A, B, C.
func NewTriangle(a, b, c rl.Vector3) Triangle {
	edge1 := rl.Vector3Subtract(b, a)
	edge2 := rl.Vector3Subtract(c, a)
	return Triangle{A: a, B: b, C: c, Normal: rl.Vector3Normalize(rl.Vector3CrossProduct(edge1, edge2))}
}

// Transformed applies the full transform to the three vertices and recomputes the normal.
func (t Triangle) Transformed(tr Transform) Triangle {
	m := tr.Matrix()
	return NewTriangle(rl.Vector3Transform(t.A, m), rl.Vector3Transform(t.B, m), rl.Vector3Transform(t.C, m))
}

func (t Triangle) Points() [3]rl.Vector3 {
	return [3]rl.Vector3{t.A, t.B, t.C}
}

// Edges returns B-A, C-B and A-C.
func (t Triangle) Edges() [3]rl.Vector3 {
	return [3]rl.Vector3{
		rl.Vector3Subtract(t.B, t.A),
		rl.Vector3Subtract(t.C, t.B),
		rl.Vector3Subtract(t.A, t.C),
	}
}

// Plane returns the plane the triangle lies in.
func (t Triangle) Plane() Plane {
	return NewPlane(t.Normal, t.A)
}

func (t Triangle) Bounds() AABB {
	return BoundsOf(t.A, t.B, t.C)
}

func (t Triangle) GetInterval(axis rl.Vector3) Interval {
	i := EmptyInterval()
	for _, p := range t.Points() {
		i = i.Extend(rl.Vector3DotProduct(p, axis))
	}
	return i
}

// ClosestPoint finds the point on the triangle nearest to p by testing which Voronoi
// region (vertex, edge or face) p projects into.
func (t Triangle) ClosestPoint(p rl.Vector3) rl.Vector3 {
	a, b, c := t.A, t.B, t.C

	// Vertex region outside A
	ab := rl.Vector3Subtract(b, a)
	ac := rl.Vector3Subtract(c, a)
	ap := rl.Vector3Subtract(p, a)
	d1 := rl.Vector3DotProduct(ab, ap)
	d2 := rl.Vector3DotProduct(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	// Vertex region outside B
	bp := rl.Vector3Subtract(p, b)
	d3 := rl.Vector3DotProduct(ab, bp)
	d4 := rl.Vector3DotProduct(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	// Edge region AB
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return rl.Vector3Add(a, rl.Vector3Scale(ab, v))
	}

	// Vertex region outside C
	cp := rl.Vector3Subtract(p, c)
	d5 := rl.Vector3DotProduct(ab, cp)
	d6 := rl.Vector3DotProduct(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	// Edge region AC
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return rl.Vector3Add(a, rl.Vector3Scale(ac, w))
	}

	// Edge region BC
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return rl.Vector3Add(b, rl.Vector3Scale(rl.Vector3Subtract(c, b), w))
	}

	// Face region: project onto the plane along the normal.
	denom := va + vb + vc
	if denom == 0 {
		return a
	}
	v := vb / denom
	w := vc / denom
	return rl.Vector3Add(a, rl.Vector3Add(rl.Vector3Scale(ab, v), rl.Vector3Scale(ac, w)))
}

// Distance2 is the squared distance from p to the triangle.
func (t Triangle) Distance2(p rl.Vector3) float32 {
	return rl.Vector3LengthSqr(rl.Vector3Subtract(p, t.ClosestPoint(p)))
}
