package geometry

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Transform places a local-space shape in the world. The composed matrix is
// Translate * Rotate * Scale, so points are scaled first, then rotated, then moved.
type Transform struct {
	Translation rl.Vector3
	Scale       rl.Vector3
	Rotation    rl.Matrix // rotation only; a zero matrix is read as identity
}

// NewTransform returns a transform at the origin with unit scale and no rotation.
func NewTransform() Transform {
	return Transform{
		Translation: rl.Vector3{},
		Scale:       rl.Vector3{X: 1, Y: 1, Z: 1},
		Rotation:    rl.MatrixIdentity(),
	}
}

// NewTransformAt returns an unrotated, unit-scale transform at position.
func NewTransformAt(position rl.Vector3) Transform {
	t := NewTransform()
	t.Translation = position
	return t
}

func (t Transform) rotation() rl.Matrix {
	if t.Rotation == (rl.Matrix{}) {
		return rl.MatrixIdentity()
	}
	return t.Rotation
}

func (t Transform) scale() rl.Vector3 {
	if t.Scale == (rl.Vector3{}) {
		return rl.Vector3{X: 1, Y: 1, Z: 1}
	}
	return t.Scale
}

// RotationMatrix returns the rotation part, substituting identity for an unset rotation.
func (t Transform) RotationMatrix() rl.Matrix {
	return t.rotation()
}

// Matrix returns the composed world matrix.
func (t Transform) Matrix() rl.Matrix {
	s := t.scale()
	scaleMatrix := rl.MatrixScale(s.X, s.Y, s.Z)
	transMatrix := rl.MatrixTranslate(t.Translation.X, t.Translation.Y, t.Translation.Z)
	return rl.MatrixMultiply(rl.MatrixMultiply(scaleMatrix, t.rotation()), transMatrix)
}

// linear is the rotation*scale part without translation, used for directions.
func (t Transform) linear() rl.Matrix {
	s := t.scale()
	return rl.MatrixMultiply(rl.MatrixScale(s.X, s.Y, s.Z), t.rotation())
}

// TransformPoint maps a local-space point into world space.
func (t Transform) TransformPoint(p rl.Vector3) rl.Vector3 {
	return rl.Vector3Transform(p, t.Matrix())
}

// TransformDirection maps a local-space direction into world space (rotation and scale only).
func (t Transform) TransformDirection(d rl.Vector3) rl.Vector3 {
	return rl.Vector3Transform(d, t.linear())
}

// RotateDirection rotates d by the rotation part only.
func (t Transform) RotateDirection(d rl.Vector3) rl.Vector3 {
	return rl.Vector3Transform(d, t.rotation())
}

// Translate moves the transform by v.
func (t *Transform) Translate(v rl.Vector3) {
	t.Translation = rl.Vector3Add(t.Translation, v)
}

// Rotate applies an incremental world-space rotation of angle radians about axis.
// Repeated increments accumulate drift; the matrix is never re-orthonormalized.
func (t *Transform) Rotate(axis rl.Vector3, angle float32) {
	if angle == 0 || rl.Vector3LengthSqr(axis) == 0 {
		return
	}
	t.Rotation = rl.MatrixMultiply(t.rotation(), rl.MatrixRotate(rl.Vector3Normalize(axis), angle))
}

// SetEuler replaces the rotation with Euler angles in degrees, applied X then Y then Z.
func (t *Transform) SetEuler(degrees rl.Vector3) {
	t.Rotation = EulerMatrix(degrees)
}

// EulerMatrix builds a rotation matrix from Euler angles in degrees (X, then Y, then Z).
func EulerMatrix(degrees rl.Vector3) rl.Matrix {
	rotX := rl.MatrixRotateX(degrees.X * rl.Deg2rad)
	rotY := rl.MatrixRotateY(degrees.Y * rl.Deg2rad)
	rotZ := rl.MatrixRotateZ(degrees.Z * rl.Deg2rad)
	return rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)
}
