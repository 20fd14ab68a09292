package collision

import "github.com/pkg/errors"

var (
	// ErrUnsupportedShapes is returned for shape combinations the detector does not handle,
	// such as a ray against a triangle mesh or a contact normal involving a mesh.
	ErrUnsupportedShapes = errors.New("unsupported shape combination")

	// ErrCoplanarTriangles is returned when a triangle pair lies in a single plane.
	ErrCoplanarTriangles = errors.New("coplanar triangles")
)
