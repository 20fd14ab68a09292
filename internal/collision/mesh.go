package collision

import (
	"rigidcore/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
)

// Mesh is a triangle soup. Collision against it is brute force over every triangle.
type Mesh struct {
	Triangles []geometry.Triangle
	Bounds    geometry.AABB
}

// NewMesh builds a mesh from a flat xyz vertex array. With indices, every three indices
// form a triangle; without, every three vertices do.
func NewMesh(vertices []float32, indices []uint16) (*Mesh, error) {
	if len(vertices)%3 != 0 {
		return nil, errors.Errorf("vertex array length %d is not a multiple of 3", len(vertices))
	}
	vertexCount := len(vertices) / 3
	vertex := func(i int) rl.Vector3 {
		return rl.Vector3{X: vertices[i*3+0], Y: vertices[i*3+1], Z: vertices[i*3+2]}
	}

	var tris []geometry.Triangle
	if indices != nil {
		// Indexed mesh
		if len(indices)%3 != 0 {
			return nil, errors.Errorf("index array length %d is not a multiple of 3", len(indices))
		}
		for i := 0; i < len(indices); i += 3 {
			i0, i1, i2 := int(indices[i]), int(indices[i+1]), int(indices[i+2])
			if i0 >= vertexCount || i1 >= vertexCount || i2 >= vertexCount {
				return nil, errors.Errorf("triangle %d references a vertex beyond %d", i/3, vertexCount)
			}
			tris = append(tris, geometry.NewTriangle(vertex(i0), vertex(i1), vertex(i2)))
		}
	} else {
		// Non-indexed mesh (every 3 vertices = 1 triangle)
		if vertexCount%3 != 0 {
			return nil, errors.Errorf("non-indexed mesh has %d vertices, not a multiple of 3", vertexCount)
		}
		for i := 0; i < vertexCount; i += 3 {
			tris = append(tris, geometry.NewTriangle(vertex(i), vertex(i+1), vertex(i+2)))
		}
	}
	return NewMeshFromTriangles(tris), nil
}

// NewMeshFromTriangles wraps already-built triangles and computes their bounds.
func NewMeshFromTriangles(tris []geometry.Triangle) *Mesh {
	m := &Mesh{Triangles: tris}
	for i, tri := range tris {
		if i == 0 {
			m.Bounds = tri.Bounds()
			continue
		}
		m.Bounds = m.Bounds.Union(tri.Bounds())
	}
	return m
}

// Transformed returns a new mesh with every triangle mapped into world space.
func (m *Mesh) Transformed(t geometry.Transform) *Mesh {
	out := make([]geometry.Triangle, len(m.Triangles))
	for i, tri := range m.Triangles {
		out[i] = tri.Transformed(t)
	}
	return NewMeshFromTriangles(out)
}
