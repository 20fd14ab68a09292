package physics

import (
	"rigidcore/internal/collision"
	"rigidcore/internal/config"
	"rigidcore/internal/logging"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"
)

// Tuning holds the runtime constants of the dynamics.
type Tuning struct {
	Gravity rl.Vector3
	// FrictionSmoothing is the exponential smoothing factor in (0,1] used to blend friction
	// torque into a body's torque accumulator. 1 means no smoothing.
	FrictionSmoothing float32
	Collision         collision.Settings
}

// DefaultTuning matches config.Default().
func DefaultTuning() Tuning {
	return TuningFromConfig(config.Default().Physics)
}

func TuningFromConfig(c config.Physics) Tuning {
	return Tuning{
		Gravity:           rl.Vector3{X: c.Gravity[0], Y: c.Gravity[1], Z: c.Gravity[2]},
		FrictionSmoothing: c.FrictionSmoothing,
		Collision: collision.Settings{
			EjectionRatio: c.EjectionRatio,
			NormalEpsilon: c.NormalEpsilon,
			RayEpsilon:    c.RayEpsilon,
		},
	}
}

// Context carries what collision resolution needs beyond the two bodies: the narrow phase,
// the tuning values and the diagnostics sink.
type Context struct {
	Detector *collision.Detector
	Tuning   Tuning
	Logger   *zap.Logger
}

// NewContext builds a context with its own detector. A nil logger discards diagnostics.
func NewContext(tuning Tuning, logger *zap.Logger) *Context {
	logger = logging.OrNop(logger)
	return &Context{
		Detector: collision.NewDetector(tuning.Collision, logger),
		Tuning:   tuning,
		Logger:   logger,
	}
}
