package collision

import (
	"rigidcore/internal/geometry"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CollisionNormal estimates the contact normal between a and b, pointing from b toward a.
// relativeVelocity is a's velocity minus b's. Combinations involving a mesh log a warning
// and return the zero vector.
func (d *Detector) CollisionNormal(a, b Shape, ta, tb geometry.Transform, relativeVelocity rl.Vector3, dt float32) rl.Vector3 {
	n, err := d.ContactNormal(a, b, ta, tb, relativeVelocity, dt)
	if err != nil {
		d.logger.Warn("Collision: no contact normal",
			zap.Stringer("kindA", a.Kind), zap.Stringer("kindB", b.Kind), zap.Error(err))
		return rl.Vector3Zero()
	}
	return n
}

// ContactNormal is CollisionNormal returning ErrUnsupportedShapes instead of logging it.
//
// Boxes: a is moved back by relativeVelocity*dt to where it was one frame ago, and each of
// the six half axes is checked for whether a's face was clear of b's opposite face, within
// NormalEpsilon. That axis is the one the bodies just crossed. When several qualify, the
// widest prior gap wins. Against a box, a sphere takes part as the point of its surface
// nearest that box (its bounds when its center is inside the box); oriented boxes take part
// through their enclosing box. Sphere pairs use the center-to-center direction. If no axis
// qualifies the bodies were already overlapping, and the normalized direction between the
// transforms, scaled by EjectionRatio, pushes them apart.
func (d *Detector) ContactNormal(a, b Shape, ta, tb geometry.Transform, relativeVelocity rl.Vector3, dt float32) (rl.Vector3, error) {
	if a.Kind == KindMesh || b.Kind == KindMesh {
		return rl.Vector3Zero(), errors.Wrapf(ErrUnsupportedShapes, "contact normal %s vs %s", a.Kind, b.Kind)
	}

	if a.Kind == KindSphere && b.Kind == KindSphere {
		ca := a.Sphere.Transformed(ta).Center
		cb := b.Sphere.Transformed(tb).Center
		return directionOr(rl.Vector3Subtract(ca, cb), rl.Vector3{Y: 1}), nil
	}

	boxA := a.Bounds(ta)
	boxB := b.Bounds(tb)
	rewind := rl.Vector3Scale(relativeVelocity, -dt)

	// A sphere takes part through its surface point facing the other box.
	switch {
	case b.Kind == KindSphere:
		if p, ok := sphereContactPoint(b.Sphere.Transformed(tb), boxA); ok {
			boxB = geometry.AABB{Min: p, Max: p}
		}
	case a.Kind == KindSphere:
		if p, ok := sphereContactPoint(a.Sphere.Transformed(ta), boxB); ok {
			boxA = geometry.AABB{Min: p, Max: p}
		}
	}
	previous := boxA.Translated(rewind)

	if n, ok := sweptFaceAxis(previous, boxB, d.settings.NormalEpsilon); ok {
		return n, nil
	}
	return d.ejectionNormal(ta, tb), nil
}

// sweptFaceAxis picks the half axis along which prev was clear of b.
func sweptFaceAxis(prev, b geometry.AABB, eps float32) (rl.Vector3, bool) {
	best := math32.Inf(-1)
	var normal rl.Vector3
	found := false

	for axis := 0; axis < 3; axis++ {
		// a above b on this axis: normal points +axis
		gapPos := geometry.Component(prev.Min, axis) - geometry.Component(b.Max, axis)
		// a below b: normal points -axis
		gapNeg := geometry.Component(b.Min, axis) - geometry.Component(prev.Max, axis)

		if gapPos >= -eps && gapPos > best {
			best = gapPos
			normal = geometry.UnitAxes[axis]
			found = true
		}
		if gapNeg >= -eps && gapNeg > best {
			best = gapNeg
			normal = rl.Vector3Negate(geometry.UnitAxes[axis])
			found = true
		}
	}
	return normal, found
}

func (d *Detector) ejectionNormal(ta, tb geometry.Transform) rl.Vector3 {
	dir := directionOr(rl.Vector3Subtract(ta.Translation, tb.Translation), rl.Vector3{Y: 1})
	return rl.Vector3Scale(dir, d.settings.EjectionRatio)
}

// sphereContactPoint is the point on s's surface facing box. It fails when the center lies
// inside the box.
func sphereContactPoint(s geometry.Sphere, box geometry.AABB) (rl.Vector3, bool) {
	d := rl.Vector3Subtract(box.ClosestPoint(s.Center), s.Center)
	if rl.Vector3LengthSqr(d) < 1e-12 {
		return rl.Vector3{}, false
	}
	return rl.Vector3Add(s.Center, rl.Vector3Scale(rl.Vector3Normalize(d), s.Radius)), true
}

// directionOr normalizes v, or returns fallback when v has no length.
func directionOr(v, fallback rl.Vector3) rl.Vector3 {
	if rl.Vector3LengthSqr(v) < 1e-12 {
		return fallback
	}
	return rl.Vector3Normalize(v)
}
