package world

import (
	"os"
	"path/filepath"
	"testing"

	"rigidcore/internal/components"
	"rigidcore/internal/config"
	"rigidcore/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestHeadless(t *testing.T, step float32, substeps int) (*World, *observer.ObservedLogs) {
	t.Helper()
	cfg := config.Default()
	cfg.Physics.FixedTimestep = step
	cfg.Physics.MaxSubsteps = substeps
	core, logs := observer.New(zapcore.DebugLevel)
	w := New(cfg, zap.New(core))
	t.Cleanup(w.Release)
	return w, logs
}

func TestUpdateRunsFixedTicks(t *testing.T) {
	w, _ := newTestHeadless(t, 0.01, 8)

	assert.Equal(t, 2, w.Update(0.025))
	assert.Equal(t, 1, w.Update(0.006), "leftover time carries into the next frame")
	assert.Equal(t, 0, w.Update(0.001))
	assert.Equal(t, 0, w.Update(0))
	assert.Equal(t, uint64(3), w.Ticks())
}

func TestUpdateDropsTimeBeyondSubsteps(t *testing.T) {
	w, logs := newTestHeadless(t, 0.01, 4)

	assert.Equal(t, 4, w.Update(1))
	assert.Equal(t, 1, logs.FilterMessage("World: dropping simulation time").Len())
	assert.Equal(t, 0, w.Update(0.005))
}

func TestLoadSceneSpawnsObjects(t *testing.T) {
	w, logs := newTestHeadless(t, 0.01, 8)
	path := filepath.Join(t.TempDir(), "yard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yardScene), 0644))

	require.NoError(t, w.LoadScene(path))
	assert.Equal(t, "Yard", w.Scene.Name)
	assert.Len(t, w.Scene.GameObjects, 3)
	assert.Len(t, w.PhysicsWorld.Objects(), 3)
	assert.Equal(t, 1, logs.FilterMessage("World: scene loaded").Len())

	crate := w.Scene.FindByName("Crate")
	require.NotNil(t, crate)
	assert.Same(t, w.Scene, crate.Scene)

	w.Start()
	y := crate.Position().Y
	w.Update(0.1)
	assert.Less(t, crate.Position().Y, y, "dynamic bodies fall")

	ball := w.Scene.FindByName("Ball")
	assert.Equal(t, float32(8), ball.Position().Y, "inactive objects stay put")

	w.Destroy(crate)
	assert.Nil(t, w.Scene.FindByUID(crate.UID))
	assert.Len(t, w.PhysicsWorld.Objects(), 2)
}

func TestSpawnTwiceFails(t *testing.T) {
	w, _ := newTestHeadless(t, 0.01, 8)
	g := object("crate", rl.Vector3{}, unitBox())

	require.NoError(t, w.Spawn(g))
	err := w.Spawn(g)
	require.Error(t, err)
	assert.ErrorContains(t, err, "spawn")
	assert.Len(t, w.Scene.GameObjects, 1)
}

func TestEnableGPUFallsBack(t *testing.T) {
	w, logs := newTestHeadless(t, 0.01, 8)
	if w.EnableGPU() {
		t.Skip("GPU adapter present")
	}
	assert.Equal(t, 1, logs.FilterMessage("Compute: GPU broad-phase unavailable").Len())

	g := engine.NewGameObject("probe")
	require.NoError(t, w.Spawn(g))
	assert.Equal(t, 1, w.Update(0.01))
	assert.False(t, w.PhysicsWorld.UsingGPU())
}

func TestSampleSceneRuns(t *testing.T) {
	cfg, err := config.Load("../../rigidcore.yaml")
	require.NoError(t, err)
	w := New(cfg, nil)
	defer w.Release()

	require.NoError(t, w.LoadScene("../../assets/scenes/stack.yaml"))
	w.Start()
	for i := 0; i < 120; i++ {
		w.Update(cfg.Physics.FixedTimestep)
	}
	assert.Equal(t, uint64(120), w.Ticks())
	assert.Len(t, w.PhysicsWorld.Objects(), 8)
	assert.NotNil(t, engine.GetComponent[*components.ContactCounter](w.Scene.FindByName("Goal")))
}
