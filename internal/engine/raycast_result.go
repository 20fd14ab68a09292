package engine

import rl "github.com/gen2brain/raylib-go/raylib"

// RaycastResult holds information about a raycast hit.
// Defined here so the world and components can share it without an import cycle.
type RaycastResult struct {
	GameObject *GameObject
	Point      rl.Vector3
	Distance   float32
}
