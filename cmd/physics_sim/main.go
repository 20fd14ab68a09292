// Headless physics runner: loads a scene, steps it and reports where everything ended up.
// With -bench it times the GPU broad phase against the CPU reference instead.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"rigidcore/internal/compute"
	"rigidcore/internal/config"
	"rigidcore/internal/logging"
	"rigidcore/internal/world"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "rigidcore.yaml", "config file (defaults when missing)")
	scenePath := flag.String("scene", "assets/scenes/stack.yaml", "scene to simulate")
	steps := flag.Int("steps", 600, "frames to simulate")
	frame := flag.Float64("dt", 0, "frame time in seconds (0: one fixed timestep)")
	gpu := flag.Bool("gpu", false, "use the GPU broad phase when available")
	savePath := flag.String("save", "", "write the final scene here")
	bench := flag.Bool("bench", false, "benchmark GPU vs CPU broad phase and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *bench {
		runBench(logger)
		return
	}

	if err := simulate(cfg, logger, *scenePath, *steps, float32(*frame), *gpu, *savePath); err != nil {
		logger.Fatal("Simulation failed", zap.Error(err))
	}
}

func simulate(cfg config.Config, logger *zap.Logger, scenePath string, steps int, frame float32, gpu bool, savePath string) error {
	if gpu {
		cfg.BroadPhase.UseGPU = true
	}
	w := world.New(cfg, logger)
	defer w.Release()
	if gpu {
		w.EnableGPU()
	}

	if err := w.LoadScene(scenePath); err != nil {
		return err
	}
	contacts := 0
	w.PhysicsWorld.Contacts.AddListener(func(e world.ContactEvent) {
		if e.Phase == world.ContactEnter {
			contacts++
		}
		fields := []zap.Field{zap.Stringer("phase", e.Phase),
			zap.String("a", e.Pair.A.Name), zap.String("b", e.Pair.B.Name)}
		if e.Phase == world.ContactEnter {
			n := e.Manifold.Normal
			fields = append(fields, zap.Float32("penetration", e.Manifold.Penetration),
				zap.Float32s("normal", []float32{n.X, n.Y, n.Z}))
		}
		logger.Debug("Contact", fields...)
	})

	if frame <= 0 {
		frame = cfg.Physics.FixedTimestep
	}
	w.Start()
	start := time.Now()
	for i := 0; i < steps; i++ {
		w.Update(frame)
	}
	elapsed := time.Since(start)

	for _, g := range w.Scene.GameObjects {
		p := g.Position()
		logger.Info("Final transform", zap.String("object", g.Name),
			zap.Float32("x", p.X), zap.Float32("y", p.Y), zap.Float32("z", p.Z))
	}
	logger.Info("Simulation done",
		zap.Uint64("ticks", w.Ticks()), zap.Int("contacts", contacts),
		zap.Int("activePairs", len(w.PhysicsWorld.Pairs())),
		zap.Bool("gpu", w.PhysicsWorld.UsingGPU()), zap.Duration("elapsed", elapsed))

	if savePath != "" {
		if err := world.SaveScene(w.Scene, savePath); err != nil {
			return errors.Wrapf(err, "save %s", savePath)
		}
	}
	return nil
}

func runBench(logger *zap.Logger) {
	info, err := compute.Initialize()
	if err != nil {
		logger.Fatal("Compute: init failed", zap.Error(err))
	}
	fmt.Printf("GPU: %s | %s | %s\n\n", info.Backend, info.Vendor, info.Name)

	for _, count := range []int{100, 500, 1000, 2000, 5000, 10000, 20000} {
		benchBroadPhase(count)
	}
}

func benchBroadPhase(count int) {
	rng := rand.New(rand.NewSource(42))
	spawnSize := float32(50.0) + float32(count)/100.0

	spheres := make([]compute.Sphere, count)
	for i := range spheres {
		spheres[i] = compute.Sphere{
			X:      rng.Float32()*spawnSize - spawnSize/2,
			Y:      rng.Float32()*spawnSize - spawnSize/2,
			Z:      rng.Float32()*spawnSize - spawnSize/2,
			Radius: 0.5 + rng.Float32()*0.5,
			Layer:  1,
			Mask:   ^uint32(0),
		}
	}

	bp, err := compute.NewBroadPhase(uint32(count), uint32(count*20))
	if err != nil {
		fmt.Printf("%5d objects: GPU ERROR: %v\n", count, err)
		return
	}
	defer bp.Release()

	// Warm up
	if _, err := bp.DetectPairs(spheres); err != nil {
		fmt.Printf("%5d objects: GPU ERROR: %v\n", count, err)
		return
	}

	const iterations = 10
	gpuPairs, gpuTime, err := timePairs(bp.DetectPairs, spheres, iterations)
	if err != nil {
		fmt.Printf("%5d objects: GPU ERROR: %v\n", count, err)
		return
	}
	cpuPairs, cpuTime, _ := timePairs(func(s []compute.Sphere) ([]compute.Pair, error) {
		return compute.DetectPairsCPU(s), nil
	}, spheres, iterations)

	match := "ok"
	if len(gpuPairs) != len(cpuPairs) {
		match = "MISMATCH"
	}
	fmt.Printf("%5d objects: GPU %8v (%4d pairs) | CPU %10v (%4d pairs) | %.1fx speedup | %s\n",
		count, gpuTime.Round(time.Microsecond), len(gpuPairs),
		cpuTime.Round(time.Microsecond), len(cpuPairs), float64(cpuTime)/float64(gpuTime), match)
}

// timePairs runs detect iterations times and returns the last result with the mean duration.
// The first error stops the run.
func timePairs(detect func([]compute.Sphere) ([]compute.Pair, error), spheres []compute.Sphere, iterations int) ([]compute.Pair, time.Duration, error) {
	var pairs []compute.Pair
	start := time.Now()
	for i := 0; i < iterations; i++ {
		var err error
		if pairs, err = detect(spheres); err != nil {
			return nil, 0, errors.Wrapf(err, "iteration %d", i)
		}
	}
	return pairs, time.Since(start) / time.Duration(iterations), nil
}
