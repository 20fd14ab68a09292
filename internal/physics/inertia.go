package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// diagonal builds a 3x3 diagonal matrix in raylib's 4x4 layout.
func diagonal(x, y, z float32) rl.Matrix {
	return rl.Matrix{M0: x, M5: y, M10: z, M15: 1}
}

func inverseOrZero(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return 1 / v
}

// BoxInverseInertia returns the body-space inverse inertia tensor of a solid box with full
// size dimensions. A non-positive mass gives the zero tensor (cannot rotate).
func BoxInverseInertia(mass float32, size rl.Vector3) rl.Matrix {
	if mass <= 0 {
		return rl.Matrix{}
	}
	x2, y2, z2 := size.X*size.X, size.Y*size.Y, size.Z*size.Z
	k := mass / 12
	return diagonal(inverseOrZero(k*(y2+z2)), inverseOrZero(k*(x2+z2)), inverseOrZero(k*(x2+y2)))
}

// SphereInverseInertia returns the inverse inertia tensor of a solid sphere.
func SphereInverseInertia(mass, radius float32) rl.Matrix {
	if mass <= 0 {
		return rl.Matrix{}
	}
	i := inverseOrZero(0.4 * mass * radius * radius)
	return diagonal(i, i, i)
}

// worldInverseInertia rotates a body-space tensor into world space: R * I * Rᵀ.
func worldInverseInertia(rotation, bodyInverse rl.Matrix) rl.Matrix {
	// raylib's MatrixMultiply(a, b) applies a first, then b.
	return rl.MatrixMultiply(rl.MatrixMultiply(rl.MatrixTranspose(rotation), bodyInverse), rotation)
}
