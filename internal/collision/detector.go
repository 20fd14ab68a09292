package collision

import (
	"rigidcore/internal/geometry"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Settings are the detector's tunable tolerances.
type Settings struct {
	// EjectionRatio scales the fallback contact normal used when no face was separated
	// in the previous frame (deep penetration or tunnelling).
	EjectionRatio float32
	// NormalEpsilon is the swept face tolerance of the contact-normal heuristic.
	NormalEpsilon float32
	// RayEpsilon is the threshold under which a ray direction component counts as parallel.
	RayEpsilon float32
}

// DefaultSettings returns the engine's default tolerances.
func DefaultSettings() Settings {
	return Settings{
		EjectionRatio: 1.0,
		NormalEpsilon: 0.05,
		RayEpsilon:    1e-6,
	}
}

// Detector runs narrow phase tests between world-placed shapes. It does not look at collision
// layers; callers filter with CanCollide first.
type Detector struct {
	settings Settings
	logger   *zap.Logger
}

// NewDetector creates a detector. A nil logger discards diagnostics.
func NewDetector(settings Settings, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{settings: settings, logger: logger}
}

func (d *Detector) Settings() Settings {
	return d.settings
}

// pairTest receives world-space shapes whose kinds match its table slot.
type pairTest func(a, b Shape) (bool, error)

var pairTests [kindCount][kindCount]pairTest

func init() {
	set := func(ka, kb Kind, fn pairTest) {
		pairTests[ka][kb] = fn
		if ka != kb {
			pairTests[kb][ka] = func(a, b Shape) (bool, error) { return fn(b, a) }
		}
	}

	set(KindAABB, KindAABB, func(a, b Shape) (bool, error) {
		return BoxBox(a.Box, b.Box), nil
	})
	set(KindAABB, KindSphere, func(a, b Shape) (bool, error) {
		return SphereBox(b.Sphere, a.Box), nil
	})
	set(KindAABB, KindOBB, func(a, b Shape) (bool, error) {
		return OBBOBB(geometry.OBBFromAABB(a.Box), b.OBB), nil
	})
	set(KindAABB, KindMesh, func(a, b Shape) (bool, error) {
		return anyTriangle(b.Mesh, func(tri geometry.Triangle) bool { return BoxTriangle(a.Box, tri) }), nil
	})
	set(KindSphere, KindSphere, func(a, b Shape) (bool, error) {
		return SphereSphere(a.Sphere, b.Sphere), nil
	})
	set(KindSphere, KindOBB, func(a, b Shape) (bool, error) {
		return SphereOBB(a.Sphere, b.OBB), nil
	})
	set(KindSphere, KindMesh, func(a, b Shape) (bool, error) {
		return anyTriangle(b.Mesh, func(tri geometry.Triangle) bool { return SphereTriangle(a.Sphere, tri) }), nil
	})
	set(KindOBB, KindOBB, func(a, b Shape) (bool, error) {
		return OBBOBB(a.OBB, b.OBB), nil
	})
	set(KindOBB, KindMesh, func(a, b Shape) (bool, error) {
		return anyTriangle(b.Mesh, func(tri geometry.Triangle) bool { return OBBTriangle(a.OBB, tri) }), nil
	})
	set(KindMesh, KindMesh, meshMesh)
}

func anyTriangle(m *Mesh, test func(geometry.Triangle) bool) bool {
	if m == nil {
		return false
	}
	for _, tri := range m.Triangles {
		if test(tri) {
			return true
		}
	}
	return false
}

// meshMesh ORs the triangle pair tests. Coplanar pairs are skipped; if no other pair hits,
// the coplanar error is reported with the miss.
func meshMesh(a, b Shape) (bool, error) {
	if a.Mesh == nil || b.Mesh == nil || !a.Mesh.Bounds.Intersects(b.Mesh.Bounds) {
		return false, nil
	}
	var coplanar error
	for _, ta := range a.Mesh.Triangles {
		if !ta.Bounds().Intersects(b.Mesh.Bounds) {
			continue
		}
		for _, tb := range b.Mesh.Triangles {
			hit, err := TriangleTriangle(ta, tb)
			if hit {
				return true, nil
			}
			if err != nil && coplanar == nil {
				coplanar = err
			}
		}
	}
	return false, coplanar
}

// Test places both shapes in world space and runs the pair test for their kinds.
func (d *Detector) Test(a Shape, ta geometry.Transform, b Shape, tb geometry.Transform) (bool, error) {
	if a.Kind >= kindCount || b.Kind >= kindCount {
		return false, errors.Wrapf(ErrUnsupportedShapes, "%s vs %s", a.Kind, b.Kind)
	}
	hit, err := pairTests[a.Kind][b.Kind](a.Transformed(ta), b.Transformed(tb))
	if err != nil {
		return false, errors.Wrapf(err, "%s vs %s", a.Kind, b.Kind)
	}
	return hit, nil
}

// Collide is Test with diagnostics logged instead of returned. Failures report no collision.
func (d *Detector) Collide(a Shape, ta geometry.Transform, b Shape, tb geometry.Transform) bool {
	hit, err := d.Test(a, ta, b, tb)
	if err != nil {
		if errors.Is(err, ErrCoplanarTriangles) {
			d.logger.Warn("Collision: unhandled coplanar triangles",
				zap.Stringer("kindA", a.Kind), zap.Stringer("kindB", b.Kind), zap.Error(err))
		} else {
			d.logger.Error("Collision: test failed",
				zap.Stringer("kindA", a.Kind), zap.Stringer("kindB", b.Kind), zap.Error(err))
		}
		return false
	}
	return hit
}
