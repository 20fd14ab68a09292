package collision

import (
	"rigidcore/internal/geometry"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Manifold is the single-point contact summary of a pair: whether it collided, the contact
// normal (from b toward a) and the penetration depth.
type Manifold struct {
	Collided    bool
	Normal      rl.Vector3
	Penetration float32
}

// Contact runs the narrow phase and, on a hit, fills in normal and depth. Pairs involving a
// mesh only report Collided.
func (d *Detector) Contact(a Shape, ta geometry.Transform, b Shape, tb geometry.Transform, relativeVelocity rl.Vector3, dt float32) Manifold {
	if !d.Collide(a, ta, b, tb) {
		return Manifold{}
	}
	m := Manifold{Collided: true}
	if a.Kind == KindMesh || b.Kind == KindMesh {
		return m
	}
	m.Normal = d.CollisionNormal(a, b, ta, tb, relativeVelocity, dt)
	m.Penetration = penetration(a.Transformed(ta), b.Transformed(tb))
	return m
}

// penetration expects world-space, non-mesh shapes.
func penetration(a, b Shape) float32 {
	switch {
	case a.Kind == KindAABB && b.Kind == KindAABB:
		return rl.Vector3Length(a.Box.Resolve(b.Box))
	case a.Kind == KindSphere && b.Kind == KindSphere:
		dist := rl.Vector3Distance(a.Sphere.Center, b.Sphere.Center)
		return math32.Max(0, a.Sphere.Radius+b.Sphere.Radius-dist)
	case a.Kind == KindSphere:
		return sphereDepth(a.Sphere, b)
	case b.Kind == KindSphere:
		return sphereDepth(b.Sphere, a)
	}
	mtv, _ := obbPenetration(asOBB(a), asOBB(b))
	return rl.Vector3Length(mtv)
}

func sphereDepth(s geometry.Sphere, box Shape) float32 {
	var d2 float32
	if box.Kind == KindOBB {
		d2 = box.OBB.Distance2(s.Center)
	} else {
		d2 = box.Box.Distance2(s.Center)
	}
	return math32.Max(0, s.Radius-math32.Sqrt(d2))
}

func asOBB(s Shape) geometry.OBB {
	if s.Kind == KindOBB {
		return s.OBB
	}
	return geometry.OBBFromAABB(s.Box)
}
