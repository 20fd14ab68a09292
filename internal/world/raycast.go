package world

import (
	"rigidcore/internal/collision"
	"rigidcore/internal/engine"
	"rigidcore/internal/geometry"
)

// Raycast returns the nearest collider hit by ray within maxDistance (0 or less means
// unbounded). Mesh colliders are not ray-testable and are skipped.
func (p *PhysicsWorld) Raycast(ray geometry.Ray, maxDistance float32) (engine.RaycastResult, bool) {
	return p.RaycastLayers(ray, maxDistance, collision.LayerAll)
}

// RaycastLayers is Raycast restricted to colliders on at least one layer in mask.
func (p *PhysicsWorld) RaycastLayers(ray geometry.Ray, maxDistance float32, mask collision.Layer) (engine.RaycastResult, bool) {
	var closest engine.RaycastResult
	if geometry.IsZero(ray.Direction) {
		return closest, false
	}
	ray = geometry.NewRay(ray.Origin, ray.Direction)

	hit := false
	for _, b := range p.bodies {
		if b.collider == nil || b.collider.IsMesh() || !b.object.Active {
			continue
		}
		if b.collider.Shape.Layer&mask == 0 {
			continue
		}
		dist, ok := p.ctx.Detector.RaycastHit(b.collider.Shape, b.object.Transform, ray)
		if !ok || (maxDistance > 0 && dist > maxDistance) {
			continue
		}
		// Ties keep the earlier object.
		if !hit || dist < closest.Distance {
			closest = engine.RaycastResult{GameObject: b.object, Point: ray.At(dist), Distance: dist}
			hit = true
		}
	}
	return closest, hit
}
