package collision

import (
	"fmt"

	"rigidcore/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Kind identifies which variant of a Shape is populated.
type Kind uint8

const (
	KindAABB Kind = iota
	KindSphere
	KindOBB
	KindMesh

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindAABB:
		return "aabb"
	case KindSphere:
		return "sphere"
	case KindOBB:
		return "obb"
	case KindMesh:
		return "mesh"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k := Kind(0); k < kindCount; k++ {
		if k.String() == s {
			return k, true
		}
	}
	switch s {
	case "box":
		return KindAABB, true
	case "oriented_box":
		return KindOBB, true
	}
	return 0, false
}

// Layer is a collision layer bitmask.
type Layer uint32

const (
	LayerDefault Layer = 1 << 0
	LayerStatic  Layer = 1 << 1
	LayerDynamic Layer = 1 << 2
	LayerTrigger Layer = 1 << 3

	LayerAll Layer = ^Layer(0)
)

// Shape is a local-space collision shape. Only the field matching Kind is meaningful.
type Shape struct {
	Kind   Kind
	Box    geometry.AABB
	Sphere geometry.Sphere
	OBB    geometry.OBB
	Mesh   *Mesh

	// Layer is the set of layers this shape belongs to; Mask is the set it collides with.
	Layer Layer
	Mask  Layer
}

// NewBox returns an axis-aligned box shape centered at center with full size.
func NewBox(center, size rl.Vector3) Shape {
	return Shape{Kind: KindAABB, Box: geometry.NewAABBFromCenter(center, size), Layer: LayerDefault, Mask: LayerAll}
}

// NewSphere returns a sphere shape.
func NewSphere(center rl.Vector3, radius float32) Shape {
	return Shape{Kind: KindSphere, Sphere: geometry.Sphere{Center: center, Radius: radius}, Layer: LayerDefault, Mask: LayerAll}
}

// NewOrientedBox returns an oriented box with the given local Euler rotation in degrees.
func NewOrientedBox(center, size, rotation rl.Vector3) Shape {
	return Shape{Kind: KindOBB, OBB: geometry.NewOBB(center, size, rotation), Layer: LayerDefault, Mask: LayerAll}
}

// NewMeshShape wraps a triangle mesh.
func NewMeshShape(m *Mesh) Shape {
	return Shape{Kind: KindMesh, Mesh: m, Layer: LayerDefault, Mask: LayerAll}
}

// WithLayer returns a copy of s on layer, colliding with mask.
func (s Shape) WithLayer(layer, mask Layer) Shape {
	s.Layer = layer
	s.Mask = mask
	return s
}

// CanCollide reports whether each shape's mask accepts the other's layer.
// Callers filter pairs with it before running any test.
func CanCollide(a, b Shape) bool {
	return a.Layer&b.Mask != 0 && b.Layer&a.Mask != 0
}

// Transformed produces the world-space version of the shape.
func (s Shape) Transformed(t geometry.Transform) Shape {
	out := s
	switch s.Kind {
	case KindAABB:
		out.Box = s.Box.Transformed(t)
	case KindSphere:
		out.Sphere = s.Sphere.Transformed(t)
	case KindOBB:
		out.OBB = s.OBB.Transformed(t)
	case KindMesh:
		if s.Mesh != nil {
			out.Mesh = s.Mesh.Transformed(t)
		}
	}
	return out
}

// Bounds returns the world-space box enclosing the shape.
func (s Shape) Bounds(t geometry.Transform) geometry.AABB {
	world := s.Transformed(t)
	switch world.Kind {
	case KindSphere:
		return world.Sphere.Bounds()
	case KindOBB:
		return world.OBB.Bounds()
	case KindMesh:
		if world.Mesh == nil {
			return geometry.AABB{Min: t.Translation, Max: t.Translation}
		}
		return world.Mesh.Bounds
	}
	return world.Box
}

// BoundingSphere returns a world-space sphere enclosing the shape.
func (s Shape) BoundingSphere(t geometry.Transform) geometry.Sphere {
	if s.Kind == KindSphere {
		return s.Sphere.Transformed(t)
	}
	b := s.Bounds(t)
	return geometry.Sphere{Center: b.Center(), Radius: rl.Vector3Length(b.HalfExtents())}
}
