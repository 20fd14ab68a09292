package engine

import (
	"sync/atomic"

	"rigidcore/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var lastUID atomic.Uint64

// GameObject is a handle to a scene entity. Its Transform is the world-space placement
// the physics world reads and integrates.
type GameObject struct {
	UID        uint64
	Name       string
	Tags       []string
	Transform  geometry.Transform
	Active     bool
	Scene      *Scene
	components []Component
	started    bool
}

func NewGameObject(name string) *GameObject {
	return &GameObject{
		UID:        lastUID.Add(1),
		Name:       name,
		Active:     true,
		Transform:  geometry.NewTransform(),
		components: make([]Component, 0),
	}
}

func (g *GameObject) AddComponent(c Component) {
	c.SetGameObject(g)
	g.components = append(g.components, c)
}

// RemoveComponent detaches c. It returns false when c is not attached to g.
func (g *GameObject) RemoveComponent(c Component) bool {
	for i, existing := range g.components {
		if existing == c {
			g.components = append(g.components[:i], g.components[i+1:]...)
			c.SetGameObject(nil)
			return true
		}
	}
	return false
}

// GetComponent returns the first component of type T, or the zero value.
func GetComponent[T any](g *GameObject) T {
	var zero T
	for _, c := range g.components {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

// GetComponents returns every component implementing T, in insertion order.
func GetComponents[T any](g *GameObject) []T {
	var found []T
	for _, c := range g.components {
		if typed, ok := c.(T); ok {
			found = append(found, typed)
		}
	}
	return found
}

func (g *GameObject) Start() {
	if g.started {
		return
	}
	for _, c := range g.components {
		c.Start()
	}
	g.started = true
}

func (g *GameObject) Update(deltaTime float32) {
	if !g.Active {
		return
	}
	for _, c := range g.components {
		c.Update(deltaTime)
	}
}

func (g *GameObject) Components() []Component {
	return g.components
}

func (g *GameObject) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (g *GameObject) Position() rl.Vector3 {
	return g.Transform.Translation
}

func (g *GameObject) SetPosition(p rl.Vector3) {
	g.Transform.Translation = p
}
