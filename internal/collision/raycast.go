package collision

import (
	"rigidcore/internal/geometry"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CastRay returns the distance along the ray to the nearest point of the shape, and false
// on a miss. A ray starting inside a solid shape hits at distance 0. Meshes are not
// supported and return ErrUnsupportedShapes.
func (d *Detector) CastRay(s Shape, t geometry.Transform, ray geometry.Ray) (float32, bool, error) {
	ray.Direction = rl.Vector3Normalize(ray.Direction)
	world := s.Transformed(t)

	switch s.Kind {
	case KindAABB:
		dist, ok := raycastSlabs(ray.Origin, ray.Direction, world.Box.Min, world.Box.Max, d.settings.RayEpsilon)
		return dist, ok, nil
	case KindSphere:
		dist, ok := raycastSphere(ray, world.Sphere)
		return dist, ok, nil
	case KindOBB:
		dist, ok := raycastOBB(ray, world.OBB, d.settings.RayEpsilon)
		return dist, ok, nil
	}
	return 0, false, errors.Wrapf(ErrUnsupportedShapes, "ray vs %s", s.Kind)
}

// RaycastHit returns the hit distance, or false when the ray misses or the shape is not
// supported (the error is logged).
func (d *Detector) RaycastHit(s Shape, t geometry.Transform, ray geometry.Ray) (float32, bool) {
	dist, ok, err := d.CastRay(s, t, ray)
	if err != nil {
		d.logger.Error("Collision: raycast failed", zap.Stringer("kind", s.Kind), zap.Error(err))
		return 0, false
	}
	return dist, ok
}

// Raycast reports whether the ray hits the shape.
func (d *Detector) Raycast(s Shape, t geometry.Transform, ray geometry.Ray) bool {
	_, ok := d.RaycastHit(s, t, ray)
	return ok
}

// raycastSlabs intersects the ray with the three slabs of an axis-aligned box. A direction
// component within eps of zero is parallel to that slab: the ray stays in it only if the
// origin already does.
func raycastSlabs(origin, dir, min, max rl.Vector3, eps float32) (float32, bool) {
	tmin := math32.Inf(-1)
	tmax := math32.Inf(1)

	for axis := 0; axis < 3; axis++ {
		o := geometry.Component(origin, axis)
		dv := geometry.Component(dir, axis)
		lo := geometry.Component(min, axis)
		hi := geometry.Component(max, axis)

		if math32.Abs(dv) < eps {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}

		t1 := (lo - o) / dv
		t2 := (hi - o) / dv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}

	// Box entirely behind the origin
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}

// raycastSphere projects the centered origin onto the ray. Direction must be unit length.
func raycastSphere(ray geometry.Ray, s geometry.Sphere) (float32, bool) {
	m := rl.Vector3Subtract(ray.Origin, s.Center)
	b := rl.Vector3DotProduct(m, ray.Direction)
	c := rl.Vector3DotProduct(m, m) - s.Radius*s.Radius

	// Origin outside and the closest approach is behind it
	if c > 0 && b > 0 {
		return 0, false
	}
	discriminant := b*b - c
	if discriminant < 0 {
		return 0, false
	}

	t := -b - math32.Sqrt(discriminant)
	if t < 0 {
		t = 0
	}
	return t, true
}

// raycastOBB runs the slab test in the box's local frame.
func raycastOBB(ray geometry.Ray, o geometry.OBB, eps float32) (float32, bool) {
	rel := rl.Vector3Subtract(ray.Origin, o.Center)
	var origin, dir rl.Vector3
	for i, axis := range o.Axes {
		origin = geometry.WithComponent(origin, i, rl.Vector3DotProduct(rel, axis))
		dir = geometry.WithComponent(dir, i, rl.Vector3DotProduct(ray.Direction, axis))
	}
	return raycastSlabs(origin, dir, rl.Vector3Negate(o.HalfSize), o.HalfSize, eps)
}
