package world

import (
	"sort"

	"rigidcore/internal/collision"
	"rigidcore/internal/components"
	"rigidcore/internal/compute"
	"rigidcore/internal/config"
	"rigidcore/internal/engine"
	"rigidcore/internal/logging"
	"rigidcore/internal/physics"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrAlreadyAdded is returned when an object is added to a world twice.
var ErrAlreadyAdded = errors.New("object already in physics world")

// Pair is two colliding objects, ordered so that A has the smaller UID.
type Pair struct {
	A, B *engine.GameObject
}

func makePair(a, b *engine.GameObject) Pair {
	if a.UID > b.UID {
		return Pair{A: b, B: a}
	}
	return Pair{A: a, B: b}
}

func (p Pair) key() pairKey {
	return pairKey{p.A.UID, p.B.UID}
}

type pairKey [2]uint64

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		ki, kj := pairs[i].key(), pairs[j].key()
		if ki[0] != kj[0] {
			return ki[0] < kj[0]
		}
		return ki[1] < kj[1]
	})
}

// ContactPhase says whether a contact started or ended this tick.
type ContactPhase uint8

const (
	ContactEnter ContactPhase = iota
	ContactExit
)

func (p ContactPhase) String() string {
	if p == ContactExit {
		return "exit"
	}
	return "enter"
}

// ContactEvent is published on PhysicsWorld.Contacts once per pair and phase. Enter events
// carry the contact manifold, normal pointing from B toward A; exits carry a zero manifold.
type ContactEvent struct {
	Pair     Pair
	Phase    ContactPhase
	Manifold collision.Manifold
}

// body is the world's view of one object.
type body struct {
	object    *engine.GameObject
	collider  *components.Collider // nil: integrated but never collides
	rigidbody *components.Rigidbody
}

func (b *body) dynamic() bool {
	return b.rigidbody != nil && !b.rigidbody.IsStatic()
}

// gridded bodies go through the spatial hash or GPU; the rest are tested brute force.
func (b *body) gridded() bool {
	return b.dynamic() && !b.collider.IsMesh()
}

// PhysicsWorld drives the simulation: it integrates bodies, finds colliding pairs,
// resolves them and reports contact changes.
type PhysicsWorld struct {
	ctx    *physics.Context
	config config.BroadPhase
	logger *zap.Logger

	bodies []*body // insertion order
	byUID  map[uint64]*body
	grid   map[cellKey][]int

	// Stands in for objects without a rigidbody.
	immovable *physics.RigidBody

	active map[pairKey]Pair
	pairs  []Pair

	gpuBroadPhase *compute.BroadPhase
	usingGPU      bool

	// Contacts fires after CollisionHandler callbacks for every enter and exit.
	Contacts engine.Event[ContactEvent]
}

// NewPhysicsWorld builds a world from the physics tuning and broad phase settings.
// A nil logger discards diagnostics.
func NewPhysicsWorld(tuning physics.Tuning, broadPhase config.BroadPhase, logger *zap.Logger) *PhysicsWorld {
	logger = logging.OrNop(logger)
	return &PhysicsWorld{
		ctx:       physics.NewContext(tuning, logger),
		config:    broadPhase,
		logger:    logger,
		byUID:     make(map[uint64]*body),
		grid:      make(map[cellKey][]int),
		immovable: physics.NewRigidBody(0, tuning),
		active:    make(map[pairKey]Pair),
	}
}

// NewPhysicsWorldFromConfig is NewPhysicsWorld with every setting taken from cfg.
func NewPhysicsWorldFromConfig(cfg config.Config, logger *zap.Logger) *PhysicsWorld {
	return NewPhysicsWorld(physics.TuningFromConfig(cfg.Physics), cfg.BroadPhase, logger)
}

func (p *PhysicsWorld) Context() *physics.Context {
	return p.ctx
}

// InitGPU prepares the GPU broad phase. Without an adapter the world keeps using the CPU grid.
func (p *PhysicsWorld) InitGPU() error {
	if p.gpuBroadPhase != nil {
		return nil
	}
	info, err := compute.Initialize()
	if err != nil {
		return errors.Wrap(err, "init gpu broad phase")
	}
	maxObjects := uint32(p.config.MaxObjects)
	bp, err := compute.NewBroadPhase(maxObjects, maxObjects*20)
	if err != nil {
		return errors.Wrap(err, "init gpu broad phase")
	}
	p.gpuBroadPhase = bp
	p.logger.Info("Physics: GPU broad-phase ready",
		zap.String("adapter", info.Name), zap.String("backend", info.Backend),
		zap.Int("threshold", p.config.GPUThreshold))
	return nil
}

// Release frees GPU resources.
func (p *PhysicsWorld) Release() {
	if p.gpuBroadPhase != nil {
		p.gpuBroadPhase.Release()
		p.gpuBroadPhase = nil
	}
}

// UsingGPU reports whether the last Step took its pairs from the GPU.
func (p *PhysicsWorld) UsingGPU() bool {
	return p.usingGPU
}

// AddObject registers g with the world. Its Collider and Rigidbody components are looked up
// now; an object with neither is ignored. The rigidbody is re-tuned to the world's gravity
// and its inertia fitted to the collider.
func (p *PhysicsWorld) AddObject(g *engine.GameObject) error {
	if _, ok := p.byUID[g.UID]; ok {
		return errors.Wrapf(ErrAlreadyAdded, "object %q (uid %d)", g.Name, g.UID)
	}
	b := &body{
		object:    g,
		collider:  engine.GetComponent[*components.Collider](g),
		rigidbody: engine.GetComponent[*components.Rigidbody](g),
	}
	if b.collider == nil && b.rigidbody == nil {
		return nil
	}
	if b.rigidbody != nil {
		b.rigidbody.Attach(p.ctx.Tuning, b.collider)
	}
	p.bodies = append(p.bodies, b)
	p.byUID[g.UID] = b
	return nil
}

// AddScene adds every object of scene in order.
func (p *PhysicsWorld) AddScene(scene *engine.Scene) error {
	for _, g := range scene.GameObjects {
		if err := p.AddObject(g); err != nil {
			return err
		}
	}
	return nil
}

// RemoveObject drops g and any contact it was part of, without exit callbacks.
func (p *PhysicsWorld) RemoveObject(g *engine.GameObject) bool {
	if _, ok := p.byUID[g.UID]; !ok {
		return false
	}
	delete(p.byUID, g.UID)
	for i, b := range p.bodies {
		if b.object == g {
			p.bodies = append(p.bodies[:i], p.bodies[i+1:]...)
			break
		}
	}
	for key, pair := range p.active {
		if pair.A == g || pair.B == g {
			delete(p.active, key)
		}
	}
	kept := p.pairs[:0]
	for _, pair := range p.pairs {
		if pair.A != g && pair.B != g {
			kept = append(kept, pair)
		}
	}
	p.pairs = kept
	return true
}

// Objects returns the registered objects in insertion order.
func (p *PhysicsWorld) Objects() []*engine.GameObject {
	out := make([]*engine.GameObject, len(p.bodies))
	for i, b := range p.bodies {
		out[i] = b.object
	}
	return out
}

// Pairs returns the pairs found colliding by the last Step, sorted by UID.
func (p *PhysicsWorld) Pairs() []Pair {
	return append([]Pair(nil), p.pairs...)
}

// Step advances the simulation by dt:
//  1. every dynamic body is integrated with its accumulated force and torque,
//  2. candidate pairs come from the broad phase and are filtered by layer masks,
//  3. the narrow phase keeps the pairs that actually collide,
//  4. each colliding pair is resolved once, in (UID A, UID B) order,
//  5. CollisionHandler components and Contacts hear about pairs that began or ended.
func (p *PhysicsWorld) Step(dt float32) {
	if dt <= 0 {
		return
	}
	for _, b := range p.bodies {
		if b.dynamic() && b.object.Active {
			b.rigidbody.Body.Update(&b.object.Transform, dt)
		}
	}

	var colliding []Pair
	for _, c := range p.candidates() {
		a, b := p.bodies[c[0]], p.bodies[c[1]]
		if !collision.CanCollide(a.collider.Shape, b.collider.Shape) {
			continue
		}
		if p.ctx.Detector.Collide(a.collider.Shape, a.object.Transform, b.collider.Shape, b.object.Transform) {
			colliding = append(colliding, makePair(a.object, b.object))
		}
	}
	sortPairs(colliding)

	for _, pair := range colliding {
		p.resolve(pair, dt)
	}
	p.dispatch(colliding, dt)

	// Handlers may have removed objects while being notified.
	live := colliding[:0]
	for _, pair := range colliding {
		if p.contains(pair) {
			live = append(live, pair)
		}
	}
	p.pairs = live
}

// contains reports whether both objects of pair are still in the world.
func (p *PhysicsWorld) contains(pair Pair) bool {
	a, okA := p.byUID[pair.A.UID]
	b, okB := p.byUID[pair.B.UID]
	return okA && okB && a.object == pair.A && b.object == pair.B
}

func (p *PhysicsWorld) rigidBody(b *body) *physics.RigidBody {
	if b.rigidbody == nil {
		return p.immovable
	}
	return b.rigidbody.Body
}

func isTrigger(s collision.Shape) bool {
	return s.Layer&collision.LayerTrigger != 0
}

// resolve applies the contact response for one pair. Trigger colliders only report contacts.
func (p *PhysicsWorld) resolve(pair Pair, dt float32) {
	a, b := p.byUID[pair.A.UID], p.byUID[pair.B.UID]
	if isTrigger(a.collider.Shape) || isTrigger(b.collider.Shape) {
		return
	}
	bodyA, bodyB := p.rigidBody(a), p.rigidBody(b)
	err := bodyA.ResolveCollisions(p.ctx, a.object.Transform, b.object.Transform,
		a.collider.Shape, b.collider.Shape, bodyB, dt)
	if err != nil {
		p.logger.Debug("Physics: pair not resolved",
			zap.Uint64("uidA", pair.A.UID), zap.Uint64("uidB", pair.B.UID), zap.Error(err))
	}
}

// candidates lists index pairs (i < j) that may collide. Pairs where neither body is
// dynamic are never produced, and inactive objects or bodies without colliders are skipped.
func (p *PhysicsWorld) candidates() [][2]int {
	var gridded, rest []int
	for i, b := range p.bodies {
		if b.collider == nil || !b.object.Active {
			continue
		}
		if b.gridded() {
			gridded = append(gridded, i)
		} else {
			rest = append(rest, i)
		}
	}

	out := p.griddedPairs(gridded)
	// Brute force for statics and meshes.
	for _, i := range gridded {
		for _, j := range rest {
			out = append(out, ordered(i, j))
		}
	}
	for x, i := range rest {
		for _, j := range rest[x+1:] {
			if p.bodies[i].dynamic() || p.bodies[j].dynamic() {
				out = append(out, ordered(i, j))
			}
		}
	}
	return out
}

func ordered(i, j int) [2]int {
	if i > j {
		return [2]int{j, i}
	}
	return [2]int{i, j}
}

func (p *PhysicsWorld) griddedPairs(indices []int) [][2]int {
	wasUsingGPU := p.usingGPU
	p.usingGPU = p.config.UseGPU && p.gpuBroadPhase != nil && len(indices) >= p.config.GPUThreshold &&
		len(indices) <= int(p.gpuBroadPhase.MaxObjects())
	if p.usingGPU != wasUsingGPU {
		p.logger.Info("Physics: GPU broad-phase switched",
			zap.Bool("gpu", p.usingGPU), zap.Int("objects", len(indices)))
	}

	if p.usingGPU {
		pairs, err := p.gpuBroadPhase.DetectPairs(p.boundingSpheres(indices))
		if err == nil {
			out := make([][2]int, len(pairs))
			for k, pair := range pairs {
				out[k] = ordered(indices[pair.A], indices[pair.B])
			}
			return out
		}
		p.logger.Warn("Physics: GPU broad-phase failed, using grid", zap.Error(err))
		p.usingGPU = false
	}
	return p.gridPairs(indices)
}

func (p *PhysicsWorld) boundingSpheres(indices []int) []compute.Sphere {
	spheres := make([]compute.Sphere, len(indices))
	for k, i := range indices {
		c := p.bodies[i].collider
		s := c.BoundingSphere()
		spheres[k] = compute.Sphere{
			X: s.Center.X, Y: s.Center.Y, Z: s.Center.Z, Radius: s.Radius,
			Layer: uint32(c.Shape.Layer), Mask: uint32(c.Shape.Mask),
		}
	}
	return spheres
}

type cellKey struct {
	X, Y, Z int
}

func (p *PhysicsWorld) cellOf(v float32) int {
	return int(math32.Floor(v / p.config.CellSize))
}

// gridPairs hashes every body into each cell its bounds overlap; bodies sharing a cell
// become candidates.
func (p *PhysicsWorld) gridPairs(indices []int) [][2]int {
	for k := range p.grid {
		delete(p.grid, k)
	}
	for _, i := range indices {
		bounds := p.bodies[i].collider.Bounds()
		lo := cellKey{p.cellOf(bounds.Min.X), p.cellOf(bounds.Min.Y), p.cellOf(bounds.Min.Z)}
		hi := cellKey{p.cellOf(bounds.Max.X), p.cellOf(bounds.Max.Y), p.cellOf(bounds.Max.Z)}
		for x := lo.X; x <= hi.X; x++ {
			for y := lo.Y; y <= hi.Y; y++ {
				for z := lo.Z; z <= hi.Z; z++ {
					key := cellKey{x, y, z}
					p.grid[key] = append(p.grid[key], i)
				}
			}
		}
	}

	seen := make(map[[2]int]struct{})
	var out [][2]int
	for _, cell := range p.grid {
		for x, i := range cell {
			for _, j := range cell[x+1:] {
				pair := ordered(i, j)
				if _, dup := seen[pair]; dup {
					continue
				}
				seen[pair] = struct{}{}
				out = append(out, pair)
			}
		}
	}
	return out
}

// dispatch diffs this tick's pairs against the previous tick's. A pair whose object was
// removed by an earlier callback is neither reported nor remembered.
func (p *PhysicsWorld) dispatch(current []Pair, dt float32) {
	next := make(map[pairKey]Pair, len(current))
	for _, pair := range current {
		if !p.contains(pair) {
			continue
		}
		if _, ok := p.active[pair.key()]; !ok {
			p.notify(pair, ContactEnter, p.manifold(pair, dt))
		}
		next[pair.key()] = pair
	}

	var ended []Pair
	for key, pair := range p.active {
		if _, ok := next[key]; !ok {
			ended = append(ended, pair)
		}
	}
	sortPairs(ended)
	for _, pair := range ended {
		if p.contains(pair) {
			p.notify(pair, ContactExit, collision.Manifold{})
		}
	}

	for key, pair := range next {
		if !p.contains(pair) {
			delete(next, key)
		}
	}
	p.active = next
}

// manifold describes a pair that just started touching.
func (p *PhysicsWorld) manifold(pair Pair, dt float32) collision.Manifold {
	a, b := p.byUID[pair.A.UID], p.byUID[pair.B.UID]
	relVel := rl.Vector3Subtract(p.rigidBody(a).Velocity, p.rigidBody(b).Velocity)
	return p.ctx.Detector.Contact(a.collider.Shape, a.object.Transform,
		b.collider.Shape, b.object.Transform, relVel, dt)
}

func (p *PhysicsWorld) notify(pair Pair, phase ContactPhase, m collision.Manifold) {
	call := func(self, other *engine.GameObject) {
		for _, h := range engine.GetComponents[engine.CollisionHandler](self) {
			if phase == ContactEnter {
				h.OnCollisionEnter(other)
			} else {
				h.OnCollisionExit(other)
			}
		}
	}
	call(pair.A, pair.B)
	call(pair.B, pair.A)
	p.Contacts.Invoke(ContactEvent{Pair: pair, Phase: phase, Manifold: m})
}
