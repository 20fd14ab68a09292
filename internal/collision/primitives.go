package collision

import (
	"rigidcore/internal/geometry"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Axes shorter than this (squared) come from parallel edges and are skipped.
const degenerateAxis2 = 1e-10

// Signed plane distances within this band count as touching the plane.
const planeEpsilon = 1e-6

// BoxBox is the interval overlap test on the three world axes. Touching boxes collide.
func BoxBox(a, b geometry.AABB) bool {
	return a.Intersects(b)
}

// BoxPlane tests a box against a plane by projecting the box onto the plane normal.
func BoxPlane(box geometry.AABB, p geometry.Plane) bool {
	return p.GetInterval(p.Normal).Overlaps(box.GetInterval(p.Normal))
}

// OBBPlane is BoxPlane for an oriented box.
func OBBPlane(o geometry.OBB, p geometry.Plane) bool {
	return p.GetInterval(p.Normal).Overlaps(o.GetInterval(p.Normal))
}

// SpherePlane reports whether the sphere touches or crosses the plane.
func SpherePlane(s geometry.Sphere, p geometry.Plane) bool {
	return math32.Abs(p.SignedDistance(s.Center)) <= s.Radius
}

// SphereSphere compares squared center distance with the squared radius sum.
func SphereSphere(a, b geometry.Sphere) bool {
	r := a.Radius + b.Radius
	return rl.Vector3LengthSqr(rl.Vector3Subtract(a.Center, b.Center)) <= r*r
}

// SphereBox compares the squared distance from the sphere center to the box with r².
func SphereBox(s geometry.Sphere, box geometry.AABB) bool {
	return box.Distance2(s.Center) <= s.Radius*s.Radius
}

func SphereOBB(s geometry.Sphere, o geometry.OBB) bool {
	return o.Distance2(s.Center) <= s.Radius*s.Radius
}

func SphereTriangle(s geometry.Sphere, tri geometry.Triangle) bool {
	return tri.Distance2(s.Center) <= s.Radius*s.Radius
}

// BoxTriangle runs the separating axis test between a box and a triangle.
func BoxTriangle(box geometry.AABB, tri geometry.Triangle) bool {
	return OBBTriangle(geometry.OBBFromAABB(box), tri)
}

// OBBTriangle runs the separating axis test in a frame centered on the box: the 9 box-edge ×
// triangle-edge axes, the 3 box face axes, then the triangle plane. The first separating axis
// ends the test.
func OBBTriangle(o geometry.OBB, tri geometry.Triangle) bool {
	local := geometry.Triangle{
		A:      rl.Vector3Subtract(tri.A, o.Center),
		B:      rl.Vector3Subtract(tri.B, o.Center),
		C:      rl.Vector3Subtract(tri.C, o.Center),
		Normal: tri.Normal,
	}
	box := o
	box.Center = rl.Vector3Zero()

	separated := func(axis rl.Vector3) bool {
		if rl.Vector3LengthSqr(axis) < degenerateAxis2 {
			return false
		}
		return !box.GetInterval(axis).Overlaps(local.GetInterval(axis))
	}

	for _, edge := range local.Edges() {
		for _, boxAxis := range o.Axes {
			if separated(rl.Vector3CrossProduct(boxAxis, edge)) {
				return false
			}
		}
	}
	for _, boxAxis := range o.Axes {
		if separated(boxAxis) {
			return false
		}
	}
	return !separated(local.Normal)
}

// OBBOBB tests two oriented boxes using the Separating Axis Theorem: 3 face normals from
// each box and the 9 edge cross products.
func OBBOBB(a, b geometry.OBB) bool {
	_, ok := obbPenetration(a, b)
	return ok
}

// obbPenetration returns the minimum translation vector pushing a out of b, and false when a
// separating axis exists.
func obbPenetration(a, b geometry.OBB) (rl.Vector3, bool) {
	t := rl.Vector3Subtract(b.Center, a.Center)
	minPenetration := float32(math32.MaxFloat32)
	var mtv rl.Vector3
	separated := false

	testAxis := func(axis rl.Vector3) {
		if separated || rl.Vector3LengthSqr(axis) < degenerateAxis2 {
			return
		}
		axis = rl.Vector3Normalize(axis)
		reach := a.GetInterval(axis).Length()/2 + b.GetInterval(axis).Length()/2
		dist := rl.Vector3DotProduct(t, axis)
		penetration := reach - math32.Abs(dist)
		if penetration < 0 {
			separated = true
			return
		}
		if penetration < minPenetration {
			minPenetration = penetration
			// Push in the direction away from B
			if dist < 0 {
				mtv = rl.Vector3Scale(axis, penetration)
			} else {
				mtv = rl.Vector3Scale(axis, -penetration)
			}
		}
	}

	for i := 0; i < 3; i++ {
		testAxis(a.Axes[i])
	}
	for i := 0; i < 3; i++ {
		testAxis(b.Axes[i])
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			testAxis(rl.Vector3CrossProduct(a.Axes[i], b.Axes[j]))
		}
	}
	if separated {
		return rl.Vector3Zero(), false
	}
	return mtv, true
}

// TriangleTriangle is the two-plane test: each triangle is checked against the other's plane,
// then the two triangles' spans along the planes' intersection line are compared. Triangles
// lying in one plane are not handled and return ErrCoplanarTriangles with no collision.
func TriangleTriangle(t1, t2 geometry.Triangle) (bool, error) {
	d2 := planeDistances(t1.Plane(), t2)
	if sameSide(d2) {
		return false, nil
	}
	if onPlane(d2) {
		return false, ErrCoplanarTriangles
	}
	d1 := planeDistances(t2.Plane(), t1)
	if sameSide(d1) {
		return false, nil
	}

	dir := rl.Vector3CrossProduct(t1.Normal, t2.Normal)
	return lineSpan(t1.Points(), d1, dir).Overlaps(lineSpan(t2.Points(), d2, dir)), nil
}

func planeDistances(p geometry.Plane, tri geometry.Triangle) [3]float32 {
	return [3]float32{p.SignedDistance(tri.A), p.SignedDistance(tri.B), p.SignedDistance(tri.C)}
}

func sameSide(d [3]float32) bool {
	return (d[0] > planeEpsilon && d[1] > planeEpsilon && d[2] > planeEpsilon) ||
		(d[0] < -planeEpsilon && d[1] < -planeEpsilon && d[2] < -planeEpsilon)
}

func onPlane(d [3]float32) bool {
	return math32.Abs(d[0]) <= planeEpsilon && math32.Abs(d[1]) <= planeEpsilon && math32.Abs(d[2]) <= planeEpsilon
}

// lineSpan projects the part of a triangle lying on the other triangle's plane onto dir.
// d holds the signed distances of pts to that plane.
func lineSpan(pts [3]rl.Vector3, d [3]float32, dir rl.Vector3) geometry.Interval {
	span := geometry.EmptyInterval()
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		pi := rl.Vector3DotProduct(dir, pts[i])
		pj := rl.Vector3DotProduct(dir, pts[j])
		if math32.Abs(d[i]) <= planeEpsilon {
			span = span.Extend(pi)
		}
		crosses := (d[i] > planeEpsilon && d[j] < -planeEpsilon) || (d[i] < -planeEpsilon && d[j] > planeEpsilon)
		if crosses {
			span = span.Extend(pi + (pj-pi)*d[i]/(d[i]-d[j]))
		}
	}
	return span
}
