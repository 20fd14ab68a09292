package components

import (
	"rigidcore/internal/collision"
	"rigidcore/internal/engine"
	"rigidcore/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

func init() {
	engine.RegisterComponent("Collider", colliderFactory, colliderSerializer)
}

// Collider attaches a local-space collision shape to its GameObject. The shape is placed in
// the world by the object's transform.
type Collider struct {
	engine.BaseComponent
	Shape collision.Shape

	// Construction inputs that the shape does not keep, for serialization.
	rotation rl.Vector3
	vertices []float32
	indices  []uint16
}

func NewBoxCollider(size rl.Vector3) *Collider {
	return &Collider{Shape: collision.NewBox(rl.Vector3{}, size)}
}

func NewSphereCollider(radius float32) *Collider {
	return &Collider{Shape: collision.NewSphere(rl.Vector3{}, radius)}
}

// NewOrientedBoxCollider builds a box rotated by Euler angles in degrees relative to its object.
func NewOrientedBoxCollider(size, rotation rl.Vector3) *Collider {
	return &Collider{Shape: collision.NewOrientedBox(rl.Vector3{}, size, rotation), rotation: rotation}
}

// NewMeshCollider builds a triangle mesh collider from a flat xyz vertex array, indexed or not.
func NewMeshCollider(vertices []float32, indices []uint16) (*Collider, error) {
	mesh, err := collision.NewMesh(vertices, indices)
	if err != nil {
		return nil, err
	}
	return &Collider{Shape: collision.NewMeshShape(mesh), vertices: vertices, indices: indices}, nil
}

// SetOffset moves the shape's local center. Meshes keep their vertices.
func (c *Collider) SetOffset(offset rl.Vector3) {
	switch c.Shape.Kind {
	case collision.KindAABB:
		c.Shape.Box = geometry.NewAABBFromCenter(offset, c.Shape.Box.Size())
	case collision.KindSphere:
		c.Shape.Sphere.Center = offset
	case collision.KindOBB:
		c.Shape.OBB.Center = offset
	}
}

func (c *Collider) Offset() rl.Vector3 {
	switch c.Shape.Kind {
	case collision.KindAABB:
		return c.Shape.Box.Center()
	case collision.KindSphere:
		return c.Shape.Sphere.Center
	case collision.KindOBB:
		return c.Shape.OBB.Center
	}
	return rl.Vector3{}
}

// SetLayer sets the layers the collider is on and the layers it collides with.
func (c *Collider) SetLayer(layer, mask collision.Layer) {
	c.Shape = c.Shape.WithLayer(layer, mask)
}

// Transform returns the owning object's transform, or identity when detached.
func (c *Collider) Transform() geometry.Transform {
	if g := c.GetGameObject(); g != nil {
		return g.Transform
	}
	return geometry.NewTransform()
}

// Bounds is the world-space box around the collider.
func (c *Collider) Bounds() geometry.AABB {
	return c.Shape.Bounds(c.Transform())
}

func (c *Collider) BoundingSphere() geometry.Sphere {
	return c.Shape.BoundingSphere(c.Transform())
}

func (c *Collider) IsMesh() bool {
	return c.Shape.Kind == collision.KindMesh
}

func colliderFactory(props map[string]any) (engine.Component, error) {
	kindName, err := stringProp(props, "shape", "box")
	if err != nil {
		return nil, err
	}
	kind, ok := collision.ParseKind(kindName)
	if !ok {
		return nil, errors.Errorf("shape: unknown kind %q", kindName)
	}

	var c *Collider
	switch kind {
	case collision.KindAABB, collision.KindOBB:
		size, err := vectorProp(props, "size", rl.Vector3{X: 1, Y: 1, Z: 1})
		if err != nil {
			return nil, err
		}
		if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
			return nil, errors.Errorf("size: %v must be positive on every axis", vectorValue(size))
		}
		if kind == collision.KindAABB {
			c = NewBoxCollider(size)
			break
		}
		rotation, err := vectorProp(props, "rotation", rl.Vector3{})
		if err != nil {
			return nil, err
		}
		c = NewOrientedBoxCollider(size, rotation)
	case collision.KindSphere:
		radius, err := floatProp(props, "radius", 0.5)
		if err != nil {
			return nil, err
		}
		if radius <= 0 {
			return nil, errors.Errorf("radius: %v must be positive", radius)
		}
		c = NewSphereCollider(radius)
	case collision.KindMesh:
		vertices, err := floatsProp(props, "vertices")
		if err != nil {
			return nil, err
		}
		indices, err := indicesProp(props, "indices")
		if err != nil {
			return nil, err
		}
		if c, err = NewMeshCollider(vertices, indices); err != nil {
			return nil, err
		}
	}

	offset, err := vectorProp(props, "offset", rl.Vector3{})
	if err != nil {
		return nil, err
	}
	c.SetOffset(offset)

	layer, err := layerProp(props, "layer", collision.LayerDefault)
	if err != nil {
		return nil, err
	}
	mask, err := layerProp(props, "mask", collision.LayerAll)
	if err != nil {
		return nil, err
	}
	c.SetLayer(layer, mask)
	return c, nil
}

func colliderSerializer(comp engine.Component) map[string]any {
	c, ok := comp.(*Collider)
	if !ok {
		return nil
	}
	props := map[string]any{
		"shape": c.Shape.Kind.String(),
		"layer": uint32(c.Shape.Layer),
		"mask":  uint32(c.Shape.Mask),
	}
	switch c.Shape.Kind {
	case collision.KindAABB:
		props["size"] = vectorValue(c.Shape.Box.Size())
	case collision.KindSphere:
		props["radius"] = c.Shape.Sphere.Radius
	case collision.KindOBB:
		props["size"] = vectorValue(rl.Vector3Scale(c.Shape.OBB.HalfSize, 2))
		props["rotation"] = vectorValue(c.rotation)
	case collision.KindMesh:
		props["vertices"] = c.vertices
		if c.indices != nil {
			props["indices"] = indexValues(c.indices)
		}
	}
	if offset := c.Offset(); !geometry.IsZero(offset) {
		props["offset"] = vectorValue(offset)
	}
	return props
}

func indexValues(indices []uint16) []float32 {
	out := make([]float32, len(indices))
	for i, idx := range indices {
		out[i] = float32(idx)
	}
	return out
}
