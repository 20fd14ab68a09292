package components

import (
	"testing"

	"rigidcore/internal/collision"
	"rigidcore/internal/engine"
	"rigidcore/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// decodeProps parses YAML the way scene files do, so props carry YAML's number types.
func decodeProps(t *testing.T, doc string) map[string]any {
	t.Helper()
	var props map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(doc), &props))
	return props
}

func TestColliderFollowsGameObject(t *testing.T) {
	g := engine.NewGameObject("crate")
	c := NewBoxCollider(rl.Vector3{X: 2, Y: 2, Z: 2})
	g.AddComponent(c)
	g.SetPosition(rl.Vector3{X: 5})

	b := c.Bounds()
	assert.Equal(t, rl.Vector3{X: 4, Y: -1, Z: -1}, b.Min)
	assert.Equal(t, rl.Vector3{X: 6, Y: 1, Z: 1}, b.Max)

	c.SetOffset(rl.Vector3{Y: 3})
	assert.Equal(t, rl.Vector3{X: 5, Y: 3}, c.Bounds().Center())
	assert.Equal(t, rl.Vector3{Y: 3}, c.Offset())
}

func TestDetachedColliderUsesIdentity(t *testing.T) {
	c := NewSphereCollider(2)
	s := c.BoundingSphere()
	assert.Equal(t, rl.Vector3{}, s.Center)
	assert.Equal(t, float32(2), s.Radius)
}

func TestColliderFactory(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		kind  collision.Kind
		check func(t *testing.T, c *Collider)
	}{
		{"default box", "{}", collision.KindAABB, func(t *testing.T, c *Collider) {
			assert.Equal(t, rl.Vector3{X: 1, Y: 1, Z: 1}, c.Shape.Box.Size())
			assert.Equal(t, collision.LayerDefault, c.Shape.Layer)
			assert.Equal(t, collision.LayerAll, c.Shape.Mask)
		}},
		{"sized box with offset", "{shape: box, size: [2, 1, 4], offset: [0, 0.5, 0]}", collision.KindAABB, func(t *testing.T, c *Collider) {
			assert.Equal(t, rl.Vector3{X: 2, Y: 1, Z: 4}, c.Shape.Box.Size())
			assert.Equal(t, rl.Vector3{Y: 0.5}, c.Offset())
		}},
		{"sphere on named layers", "{shape: sphere, radius: 3, layer: dynamic, mask: [static, dynamic]}", collision.KindSphere, func(t *testing.T, c *Collider) {
			assert.Equal(t, float32(3), c.Shape.Sphere.Radius)
			assert.Equal(t, collision.LayerDynamic, c.Shape.Layer)
			assert.Equal(t, collision.LayerStatic|collision.LayerDynamic, c.Shape.Mask)
		}},
		{"oriented box", "{shape: obb, size: [2, 2, 2], rotation: [0, 45, 0]}", collision.KindOBB, func(t *testing.T, c *Collider) {
			assert.Equal(t, rl.Vector3{X: 1, Y: 1, Z: 1}, c.Shape.OBB.HalfSize)
			assert.InDelta(t, 0.707107, c.Shape.OBB.Axes[0].X, 1e-5)
		}},
		{"indexed mesh with numeric mask", "{shape: mesh, vertices: [0,0,0, 1,0,0, 0,0,1, 1,0,1], indices: [0,2,1, 1,2,3], mask: 2}", collision.KindMesh, func(t *testing.T, c *Collider) {
			require.NotNil(t, c.Shape.Mesh)
			assert.Len(t, c.Shape.Mesh.Triangles, 2)
			assert.Equal(t, collision.Layer(2), c.Shape.Mask)
			assert.True(t, c.IsMesh())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp, err := engine.CreateComponent("Collider", decodeProps(t, tt.doc))
			require.NoError(t, err)
			c := comp.(*Collider)
			assert.Equal(t, tt.kind, c.Shape.Kind)
			tt.check(t, c)
		})
	}
}

func TestColliderFactoryRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown shape", "{shape: capsule}", `unknown kind "capsule"`},
		{"flat box", "{size: [1, 0, 1]}", "must be positive"},
		{"short vector", "{size: [1, 1]}", "expected 3 components"},
		{"negative radius", "{shape: sphere, radius: -1}", "must be positive"},
		{"bad layer", "{layer: floor}", "unknown layer"},
		{"bad index", "{shape: mesh, vertices: [0,0,0, 1,0,0, 0,1,0], indices: [0, 1, 7]}", "references a vertex"},
		{"fractional index", "{shape: mesh, vertices: [0,0,0, 1,0,0, 0,1,0], indices: [0, 1, 1.5]}", "not a vertex index"},
		{"text radius", "{shape: sphere, radius: big}", "expected a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.CreateComponent("Collider", decodeProps(t, tt.doc))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestColliderSerializeRoundTrip(t *testing.T) {
	obb := NewOrientedBoxCollider(rl.Vector3{X: 1, Y: 2, Z: 3}, rl.Vector3{Z: 30})
	obb.SetOffset(rl.Vector3{X: 1})
	obb.SetLayer(collision.LayerDynamic, collision.LayerStatic)
	mesh, err := NewMeshCollider([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, nil)
	require.NoError(t, err)

	for _, c := range []*Collider{NewBoxCollider(rl.Vector3{X: 2, Y: 2, Z: 2}), NewSphereCollider(0.75), obb, mesh} {
		name, props, ok := engine.SerializeComponent(c)
		require.True(t, ok)
		require.Equal(t, "Collider", name)

		// Through YAML, as a saved scene would go.
		out, err := yaml.Marshal(props)
		require.NoError(t, err)
		comp, err := engine.CreateComponent(name, decodeProps(t, string(out)))
		require.NoError(t, err)
		back := comp.(*Collider)

		assert.Equal(t, c.Shape.Kind, back.Shape.Kind)
		assert.Equal(t, c.Shape.Layer, back.Shape.Layer)
		assert.Equal(t, c.Shape.Mask, back.Shape.Mask)
		assert.Equal(t, c.Offset(), back.Offset())
		assert.Equal(t, c.Bounds(), back.Bounds())
	}
}

func TestRigidbodyFactory(t *testing.T) {
	comp, err := engine.CreateComponent("Rigidbody", decodeProps(t,
		"{mass: 2, restitution: 0.8, friction: 0.3, velocity: [1, 0, 0], lock_linear: z, lock_angular: xz}"))
	require.NoError(t, err)
	r := comp.(*Rigidbody)

	assert.Equal(t, float32(2), r.Mass())
	assert.Equal(t, float32(0.5), r.Body.InverseMass)
	assert.Equal(t, float32(0.8), r.Body.Restitution)
	assert.Equal(t, float32(0.3), r.Body.Friction)
	assert.Equal(t, rl.Vector3{X: 1}, r.Body.Velocity)
	assert.Equal(t, rl.Vector3{X: 1, Y: 1}, r.Body.LinearUnlock)
	assert.Equal(t, rl.Vector3{Y: 1}, r.Body.AngularUnlock)

	name, props, ok := engine.SerializeComponent(r)
	require.True(t, ok)
	assert.Equal(t, "Rigidbody", name)
	assert.Equal(t, "z", props["lock_linear"])
	assert.Equal(t, "xz", props["lock_angular"])
}

func TestRigidbodyFactoryDefaults(t *testing.T) {
	comp, err := engine.CreateComponent("Rigidbody", map[string]any{})
	require.NoError(t, err)
	r := comp.(*Rigidbody)

	assert.Equal(t, float32(1), r.Mass())
	assert.Equal(t, physics.DefaultRestitution, r.Body.Restitution)
	assert.Equal(t, physics.DefaultFriction, r.Body.Friction)

	_, props, _ := engine.SerializeComponent(r)
	assert.NotContains(t, props, "lock_linear")
	assert.NotContains(t, props, "velocity")
}

func TestRigidbodyFactoryRejects(t *testing.T) {
	_, err := engine.CreateComponent("Rigidbody", decodeProps(t, "{mass: -1}"))
	assert.ErrorContains(t, err, "must not be negative")

	_, err = engine.CreateComponent("Rigidbody", decodeProps(t, "{lock_linear: w}"))
	assert.ErrorContains(t, err, "unknown axis")
}

func TestStaticRigidbody(t *testing.T) {
	comp, err := engine.CreateComponent("Rigidbody", decodeProps(t, "{mass: 0, velocity: [0, 5, 0]}"))
	require.NoError(t, err)
	r := comp.(*Rigidbody)

	assert.True(t, r.IsStatic())
	assert.Equal(t, rl.Vector3{}, r.Body.Velocity, "static bodies never move")
}

func TestRigidbodyAttach(t *testing.T) {
	tuning := physics.DefaultTuning()
	tuning.Gravity = rl.Vector3{Y: -10}

	g := engine.NewGameObject("ball")
	ball := NewSphereCollider(1)
	body := NewRigidbody(5)
	g.AddComponent(ball)
	g.AddComponent(body)

	body.Attach(tuning, ball)
	assert.Equal(t, rl.Vector3{Y: -50}, body.Body.DefaultForce)
	assert.Equal(t, physics.SphereInverseInertia(5, 1), body.Body.InverseInertia)

	crate := NewBoxCollider(rl.Vector3{X: 1, Y: 2, Z: 3})
	heavy := NewRigidbody(2)
	heavy.Attach(tuning, crate)
	assert.Equal(t, physics.BoxInverseInertia(2, rl.Vector3{X: 1, Y: 2, Z: 3}), heavy.Body.InverseInertia)

	floor := NewRigidbody(0)
	floor.Attach(tuning, NewBoxCollider(rl.Vector3{X: 10, Y: 1, Z: 10}))
	assert.Equal(t, rl.Vector3{}, floor.Body.DefaultForce)
	assert.Equal(t, rl.Matrix{}, floor.Body.InverseInertia)
}

func TestRigidbodyAttachFollowsCollisionScale(t *testing.T) {
	tuning := physics.DefaultTuning()
	attach := func(c *Collider) *Rigidbody {
		g := engine.NewGameObject("scaled")
		g.Transform.Scale = rl.Vector3{X: 2, Y: 2, Z: 2}
		r := NewRigidbody(2)
		g.AddComponent(c)
		g.AddComponent(r)
		r.Attach(tuning, c)
		return r
	}
	unit := rl.Vector3{X: 1, Y: 1, Z: 1}

	box := NewBoxCollider(unit)
	r := attach(box)
	assert.Equal(t, unit, box.Bounds().Size(), "axis-aligned boxes collide unscaled")
	assert.Equal(t, physics.BoxInverseInertia(2, unit), r.Body.InverseInertia)

	oriented := NewOrientedBoxCollider(unit, rl.Vector3{})
	r = attach(oriented)
	doubled := rl.Vector3{X: 2, Y: 2, Z: 2}
	assert.InDelta(t, 2, oriented.Bounds().Size().X, 1e-5, "oriented boxes collide scaled")
	want := physics.BoxInverseInertia(2, doubled)
	assert.InDelta(t, want.M0, r.Body.InverseInertia.M0, 1e-5)
	assert.InDelta(t, want.M5, r.Body.InverseInertia.M5, 1e-5)
	assert.InDelta(t, want.M10, r.Body.InverseInertia.M10, 1e-5)
}

func TestRotator(t *testing.T) {
	c, err := engine.CreateComponent("Rotator", decodeProps(t, "speed: 90"))
	require.NoError(t, err)
	r := c.(*Rotator)
	assert.Equal(t, rl.Vector3{Y: 1}, r.Axis)

	g := engine.NewGameObject("fan")
	g.AddComponent(r)
	g.Update(1)

	rot := g.Transform.RotationMatrix()
	x := rl.Vector3Transform(rl.Vector3{X: 1}, rot)
	y := rl.Vector3Transform(rl.Vector3{Y: 1}, rot)
	assert.InDelta(t, 0, rl.Vector3DotProduct(x, rl.Vector3{X: 1}), 1e-5, "quarter turn")
	assert.InDelta(t, 1, y.Y, 1e-5, "axis is unchanged")

	_, props, ok := engine.SerializeComponent(r)
	require.True(t, ok)
	assert.Equal(t, float32(90), props["speed"])
}

func TestContactCounter(t *testing.T) {
	c, err := engine.CreateComponent("ContactCounter", decodeProps(t, "tag: ball"))
	require.NoError(t, err)
	counter := c.(*ContactCounter)

	ball := engine.NewGameObject("ball")
	ball.Tags = []string{"ball"}
	crate := engine.NewGameObject("crate")

	counter.OnCollisionEnter(ball)
	counter.OnCollisionEnter(crate)
	assert.Equal(t, 1, counter.Enters)
	assert.Equal(t, 1, counter.Inside())

	counter.OnCollisionExit(ball)
	assert.Equal(t, 0, counter.Inside())

	_, props, ok := engine.SerializeComponent(counter)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"tag": "ball"}, props)
}
