package world

import (
	"math/rand"
	"testing"

	"rigidcore/internal/collision"
	"rigidcore/internal/components"
	"rigidcore/internal/config"
	"rigidcore/internal/engine"
	"rigidcore/internal/geometry"
	"rigidcore/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type contactRecorder struct {
	engine.BaseComponent
	entered []string
	exited  []string
}

func (c *contactRecorder) OnCollisionEnter(other *engine.GameObject) {
	c.entered = append(c.entered, other.Name)
}

func (c *contactRecorder) OnCollisionExit(other *engine.GameObject) {
	c.exited = append(c.exited, other.Name)
}

func weightless() physics.Tuning {
	tuning := physics.DefaultTuning()
	tuning.Gravity = rl.Vector3{}
	return tuning
}

func newTestWorld(t *testing.T, tuning physics.Tuning) (*PhysicsWorld, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewPhysicsWorld(tuning, config.Default().BroadPhase, zap.New(core)), logs
}

// object builds a GameObject at pos with the given components; it is not added anywhere.
func object(name string, pos rl.Vector3, comps ...engine.Component) *engine.GameObject {
	g := engine.NewGameObject(name)
	g.SetPosition(pos)
	for _, c := range comps {
		g.AddComponent(c)
	}
	return g
}

func add(t *testing.T, w *PhysicsWorld, objs ...*engine.GameObject) {
	t.Helper()
	for _, g := range objs {
		require.NoError(t, w.AddObject(g))
	}
}

func unitBox() *components.Collider {
	return components.NewBoxCollider(rl.Vector3{X: 1, Y: 1, Z: 1})
}

func bodyOf(g *engine.GameObject) *physics.RigidBody {
	return engine.GetComponent[*components.Rigidbody](g).Body
}

func TestStepIntegratesGravity(t *testing.T) {
	w, _ := newTestWorld(t, physics.DefaultTuning())
	crate := object("crate", rl.Vector3{Y: 10}, unitBox(), components.NewRigidbody(1))
	add(t, w, crate)

	w.Step(0.1)

	assert.InDelta(t, -2, bodyOf(crate).Velocity.Y, 1e-5)
	assert.InDelta(t, 9.8, crate.Position().Y, 1e-5)
	assert.Empty(t, w.Pairs())

	w.Step(0)
	assert.InDelta(t, 9.8, crate.Position().Y, 1e-5, "non-positive dt is ignored")
}

func TestFallingBoxBouncesAndReportsContacts(t *testing.T) {
	w, _ := newTestWorld(t, weightless())
	floor := object("floor", rl.Vector3{Y: -0.5}, components.NewBoxCollider(rl.Vector3{X: 20, Y: 1, Z: 20}))
	recorder := &contactRecorder{}
	rb := components.NewRigidbody(1)
	crate := object("crate", rl.Vector3{Y: 0.6}, unitBox(), rb, recorder)
	add(t, w, floor, crate)
	rb.Body.Velocity = rl.Vector3{Y: -10}

	var events []ContactEvent
	w.Contacts.AddListener(func(e ContactEvent) { events = append(events, e) })

	w.Step(0.016)
	require.Len(t, w.Pairs(), 1)
	assert.Same(t, floor, w.Pairs()[0].A)
	assert.Same(t, crate, w.Pairs()[0].B)
	assert.Equal(t, []string{"floor"}, recorder.entered)

	w.Step(0.016)
	assert.InDelta(t, 5, rb.Body.Velocity.Y, 1e-3, "restitution 0.5 against the floor")
	assert.Empty(t, w.Pairs())
	assert.Equal(t, []string{"floor"}, recorder.exited)

	require.Len(t, events, 2)
	assert.Equal(t, ContactEnter, events[0].Phase)
	assert.Equal(t, ContactExit, events[1].Phase)
	assert.Equal(t, "exit", events[1].Phase.String())

	enter := events[0].Manifold
	assert.True(t, enter.Collided)
	assert.Equal(t, rl.Vector3{Y: -1}, enter.Normal, "from the crate toward the floor")
	assert.InDelta(t, 0.06, enter.Penetration, 1e-4)
	assert.Equal(t, collision.Manifold{}, events[1].Manifold)
}

// pickup removes its own object from the world the first time it is touched.
type pickup struct {
	engine.BaseComponent
	world *PhysicsWorld
	exits int
}

func (c *pickup) OnCollisionEnter(other *engine.GameObject) {
	c.world.RemoveObject(c.GetGameObject())
}

func (c *pickup) OnCollisionExit(other *engine.GameObject) {
	c.exits++
}

func TestRemovingObjectFromCallback(t *testing.T) {
	w, _ := newTestWorld(t, weightless())
	coin := &pickup{world: w}
	recorder := &contactRecorder{}
	coinObj := object("coin", rl.Vector3{}, components.NewSphereCollider(0.5), coin)
	player := object("player", rl.Vector3{X: 0.5}, unitBox(), components.NewRigidbody(1), recorder)
	bystander := object("bystander", rl.Vector3{X: 0.75, Y: 0.5}, unitBox(), components.NewRigidbody(1))
	add(t, w, coinObj, player, bystander)

	var phases []ContactPhase
	w.Contacts.AddListener(func(e ContactEvent) { phases = append(phases, e.Phase) })

	w.Step(0.001)
	assert.Equal(t, []string{"coin", "bystander"}, recorder.entered)
	assert.Equal(t, []Pair{{player, bystander}}, w.Pairs(), "pairs with the removed coin are gone")
	assert.Equal(t, []*engine.GameObject{player, bystander}, w.Objects())

	w.Step(0.001)
	assert.Zero(t, coin.exits)
	assert.Empty(t, recorder.exited)
	assert.Equal(t, []ContactPhase{ContactEnter, ContactEnter}, phases, "no exit for the removed coin")
	assert.Equal(t, []Pair{{player, bystander}}, w.Pairs())
}

func TestPairIsResolvedOncePerStep(t *testing.T) {
	w, _ := newTestWorld(t, weightless())
	left := components.NewRigidbody(1)
	right := components.NewRigidbody(1)
	a := object("a", rl.Vector3{X: -0.95}, components.NewSphereCollider(1), left)
	b := object("b", rl.Vector3{X: 0.95}, components.NewSphereCollider(1), right)
	add(t, w, a, b)
	left.Body.Velocity = rl.Vector3{X: 3}
	right.Body.Velocity = rl.Vector3{X: -3}

	w.Step(0.01)
	require.Len(t, w.Pairs(), 1)
	w.Step(0.01)

	// j = (1+0.5)*6/2 applied once to each body.
	assert.InDelta(t, -1.5, left.Body.Velocity.X, 1e-3)
	assert.InDelta(t, 1.5, right.Body.Velocity.X, 1e-3)
}

func TestLayerMasksFilterPairs(t *testing.T) {
	w, _ := newTestWorld(t, weightless())
	picky := unitBox()
	picky.SetLayer(collision.LayerDynamic, collision.LayerStatic)
	other := unitBox()
	other.SetLayer(collision.LayerDynamic, collision.LayerAll)
	add(t, w,
		object("picky", rl.Vector3{}, picky, components.NewRigidbody(1)),
		object("other", rl.Vector3{X: 0.5}, other, components.NewRigidbody(1)))

	w.Step(0.01)
	assert.Empty(t, w.Pairs())
}

func TestTriggersReportWithoutResolving(t *testing.T) {
	w, _ := newTestWorld(t, weightless())
	zone := components.NewSphereCollider(2)
	zone.SetLayer(collision.LayerTrigger, collision.LayerAll)
	recorder := &contactRecorder{}
	rb := components.NewRigidbody(1)
	add(t, w,
		object("zone", rl.Vector3{}, zone, recorder),
		object("crate", rl.Vector3{X: 1}, unitBox(), rb))
	rb.Body.Velocity = rl.Vector3{X: 1}

	w.Step(0.01)
	w.Step(0.01)

	assert.Equal(t, []string{"crate"}, recorder.entered)
	assert.Equal(t, rl.Vector3{X: 1}, rb.Body.Velocity)
}

func TestMeshFloorContactIsLogged(t *testing.T) {
	w, logs := newTestWorld(t, weightless())
	floor, err := components.NewMeshCollider(
		[]float32{-5, 0, -5, 5, 0, -5, -5, 0, 5, 5, 0, 5},
		[]uint16{0, 2, 1, 1, 2, 3})
	require.NoError(t, err)
	rb := components.NewRigidbody(1)
	add(t, w,
		object("terrain", rl.Vector3{}, floor),
		object("crate", rl.Vector3{Y: 0.4}, unitBox(), rb))

	w.Step(0.01)

	require.Len(t, w.Pairs(), 1)
	assert.Equal(t, 1, logs.FilterMessage("Collision: no contact normal").Len())
	assert.Equal(t, rl.Vector3{}, rb.Body.Velocity)
}

func TestStaticPairsAreSkipped(t *testing.T) {
	w, logs := newTestWorld(t, weightless())
	add(t, w,
		object("wall", rl.Vector3{}, unitBox()),
		object("pillar", rl.Vector3{X: 0.5}, unitBox(), components.NewRigidbody(0)))

	w.Step(0.01)

	assert.Empty(t, w.Pairs())
	assert.Zero(t, logs.Len())
}

func TestInactiveObjectsAreSkipped(t *testing.T) {
	w, _ := newTestWorld(t, physics.DefaultTuning())
	sleeper := object("sleeper", rl.Vector3{Y: 3}, unitBox(), components.NewRigidbody(1))
	sleeper.Active = false
	add(t, w, sleeper, object("crate", rl.Vector3{Y: 3.5}, unitBox(), components.NewRigidbody(1)))

	w.Step(0.01)

	assert.Equal(t, float32(3), sleeper.Position().Y)
	assert.Empty(t, w.Pairs())
}

func TestGridFindsEveryCollidingPair(t *testing.T) {
	bp := config.Default().BroadPhase
	bp.CellSize = 2
	w := NewPhysicsWorld(weightless(), bp, nil)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 80; i++ {
		pos := rl.Vector3{
			X: rng.Float32()*20 - 10,
			Y: rng.Float32()*20 - 10,
			Z: rng.Float32()*4 - 2,
		}
		size := 0.5 + rng.Float32()*2
		if i%10 == 0 {
			size = 6 // spans several cells
		}
		var c *components.Collider
		if i%3 == 0 {
			c = components.NewSphereCollider(size / 2)
		} else {
			c = components.NewBoxCollider(rl.Vector3{X: size, Y: size, Z: size})
		}
		add(t, w, object("body", pos, c, components.NewRigidbody(1)))
	}

	w.Step(0.001)

	var want []Pair
	objs := w.Objects()
	for i := range objs {
		for j := i + 1; j < len(objs); j++ {
			ci := engine.GetComponent[*components.Collider](objs[i])
			cj := engine.GetComponent[*components.Collider](objs[j])
			if w.Context().Detector.Collide(ci.Shape, objs[i].Transform, cj.Shape, objs[j].Transform) {
				want = append(want, makePair(objs[i], objs[j]))
			}
		}
	}
	sortPairs(want)
	require.NotEmpty(t, want)
	assert.Equal(t, want, w.Pairs())
	assert.False(t, w.UsingGPU())
}

func TestPairsAreOrderedByUID(t *testing.T) {
	w, _ := newTestWorld(t, weightless())
	first := object("first", rl.Vector3{}, unitBox(), components.NewRigidbody(1))
	second := object("second", rl.Vector3{X: 0.5}, unitBox(), components.NewRigidbody(1))
	third := object("third", rl.Vector3{X: 0.25, Y: 0.5}, unitBox(), components.NewRigidbody(1))
	add(t, w, third, second, first)

	w.Step(0.001)

	pairs := w.Pairs()
	require.Len(t, pairs, 3)
	assert.Equal(t, []Pair{{first, second}, {first, third}, {second, third}}, pairs)
}

func TestAddAndRemoveObjects(t *testing.T) {
	w, _ := newTestWorld(t, weightless())
	a := object("a", rl.Vector3{}, unitBox(), components.NewRigidbody(1))
	b := object("b", rl.Vector3{X: 0.5}, unitBox(), components.NewRigidbody(1))
	add(t, w, a, b)
	require.NoError(t, w.AddObject(engine.NewGameObject("empty")), "objects without physics are ignored")

	err := w.AddObject(a)
	assert.True(t, errors.Is(err, ErrAlreadyAdded))
	assert.Equal(t, []*engine.GameObject{a, b}, w.Objects())

	w.Step(0.001)
	require.Len(t, w.Pairs(), 1)

	assert.True(t, w.RemoveObject(a))
	assert.False(t, w.RemoveObject(a))
	assert.Empty(t, w.Pairs())
	assert.Equal(t, []*engine.GameObject{b}, w.Objects())
}

func TestAddObjectAppliesWorldGravity(t *testing.T) {
	tuning := physics.DefaultTuning()
	tuning.Gravity = rl.Vector3{Y: -9.8}
	w, _ := newTestWorld(t, tuning)
	crate := object("crate", rl.Vector3{}, unitBox(), components.NewRigidbody(2))
	add(t, w, crate)

	assert.InDelta(t, -19.6, bodyOf(crate).DefaultForce.Y, 1e-4)
}

func TestRaycast(t *testing.T) {
	w, _ := newTestWorld(t, weightless())
	near := unitBox()
	near.SetLayer(collision.LayerStatic, collision.LayerAll)
	wall, err := components.NewMeshCollider([]float32{2, -5, -5, 2, 5, -5, 2, -5, 5}, nil)
	require.NoError(t, err)

	nearObj := object("near", rl.Vector3{X: 5}, near)
	farObj := object("far", rl.Vector3{X: 10}, unitBox())
	add(t, w, object("wall", rl.Vector3{}, wall), nearObj, farObj,
		object("behind", rl.Vector3{X: -3}, components.NewSphereCollider(1)))

	ray := geometry.NewRay(rl.Vector3{}, rl.Vector3{X: 1})

	hit, ok := w.Raycast(ray, 0)
	require.True(t, ok)
	assert.Same(t, nearObj, hit.GameObject)
	assert.InDelta(t, 4.5, hit.Distance, 1e-5)
	assert.InDelta(t, 4.5, hit.Point.X, 1e-5)

	_, ok = w.Raycast(ray, 3)
	assert.False(t, ok)

	hit, ok = w.RaycastLayers(geometry.Ray{Direction: rl.Vector3{X: 2}}, 100, collision.LayerDefault)
	require.True(t, ok)
	assert.Same(t, farObj, hit.GameObject)
	assert.InDelta(t, 9.5, hit.Point.X, 1e-5)

	_, ok = w.Raycast(geometry.Ray{}, 100)
	assert.False(t, ok)
}
