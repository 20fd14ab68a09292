package world

import (
	"rigidcore/internal/config"
	"rigidcore/internal/engine"
	"rigidcore/internal/logging"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// World owns a scene and the physics that moves it, and runs them on a fixed timestep.
type World struct {
	Scene        *engine.Scene
	PhysicsWorld *PhysicsWorld

	fixedStep   float32
	maxSubsteps int
	accumulator float32
	ticks       uint64
	logger      *zap.Logger
}

func New(cfg config.Config, logger *zap.Logger) *World {
	logger = logging.OrNop(logger)
	return &World{
		Scene:        engine.NewScene("Main"),
		PhysicsWorld: NewPhysicsWorldFromConfig(cfg, logger),
		fixedStep:    cfg.Physics.FixedTimestep,
		maxSubsteps:  cfg.Physics.MaxSubsteps,
		logger:       logger,
	}
}

// EnableGPU switches on the GPU broad phase. Failure is logged and the CPU grid stays in use.
func (w *World) EnableGPU() bool {
	if err := w.PhysicsWorld.InitGPU(); err != nil {
		w.logger.Warn("Compute: GPU broad-phase unavailable", zap.Error(err))
		return false
	}
	return true
}

// LoadScene reads a scene file and spawns all of its objects.
func (w *World) LoadScene(path string) error {
	scene, err := LoadScene(path)
	if err != nil {
		return err
	}
	if scene.Name != "" {
		w.Scene.Name = scene.Name
	}
	for _, g := range append([]*engine.GameObject(nil), scene.GameObjects...) {
		scene.RemoveGameObject(g)
		if err := w.Spawn(g); err != nil {
			return err
		}
	}
	w.logger.Info("World: scene loaded", zap.String("scene", w.Scene.Name),
		zap.Int("objects", len(w.Scene.GameObjects)))
	return nil
}

// Spawn adds g to the scene and the physics world.
func (w *World) Spawn(g *engine.GameObject) error {
	if err := w.PhysicsWorld.AddObject(g); err != nil {
		return errors.Wrap(err, "spawn")
	}
	w.Scene.AddGameObject(g)
	return nil
}

// Destroy removes g from the scene and the physics world.
func (w *World) Destroy(g *engine.GameObject) {
	w.PhysicsWorld.RemoveObject(g)
	w.Scene.RemoveGameObject(g)
}

// Start calls Start on every object once.
func (w *World) Start() {
	w.Scene.Start()
}

// Update runs components with the frame time, then as many fixed physics ticks as the
// accumulated time allows, at most MaxSubsteps. Time beyond that is dropped. It returns
// the number of ticks run.
func (w *World) Update(frameTime float32) int {
	if frameTime <= 0 {
		return 0
	}
	w.Scene.Update(frameTime)

	w.accumulator += frameTime
	steps := 0
	for w.accumulator >= w.fixedStep && steps < w.maxSubsteps {
		w.PhysicsWorld.Step(w.fixedStep)
		w.accumulator -= w.fixedStep
		steps++
	}
	if steps == w.maxSubsteps && w.accumulator >= w.fixedStep {
		w.logger.Debug("World: dropping simulation time", zap.Float32("seconds", w.accumulator))
		w.accumulator = 0
	}
	w.ticks += uint64(steps)
	return steps
}

// Ticks is the number of physics steps run so far.
func (w *World) Ticks() uint64 {
	return w.ticks
}

func (w *World) Release() {
	w.PhysicsWorld.Release()
}
