package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the simulation configuration, usually read from a YAML file.
type Config struct {
	Physics    Physics    `json:"physics" yaml:"physics"`
	BroadPhase BroadPhase `json:"broad_phase" yaml:"broad_phase"`
	Log        Log        `json:"log" yaml:"log"`
}

// Physics holds the dynamics and narrow phase tuning values.
type Physics struct {
	Gravity           [3]float32 `json:"gravity" yaml:"gravity"`
	EjectionRatio     float32    `json:"ejection_ratio" yaml:"ejection_ratio"`
	NormalEpsilon     float32    `json:"normal_epsilon" yaml:"normal_epsilon"`
	RayEpsilon        float32    `json:"ray_epsilon" yaml:"ray_epsilon"`
	FrictionSmoothing float32    `json:"friction_smoothing" yaml:"friction_smoothing"`
	// FixedTimestep is the tick length World.Update steps the physics with, in seconds.
	FixedTimestep float32 `json:"fixed_timestep" yaml:"fixed_timestep"`
	// MaxSubsteps caps the ticks run per frame so a long frame cannot stall the loop.
	MaxSubsteps int `json:"max_substeps" yaml:"max_substeps"`
}

// BroadPhase configures how candidate pairs are found.
type BroadPhase struct {
	CellSize     float32 `json:"cell_size" yaml:"cell_size"`
	GPUThreshold int     `json:"gpu_threshold" yaml:"gpu_threshold"`
	MaxObjects   int     `json:"max_objects" yaml:"max_objects"`
	UseGPU       bool    `json:"use_gpu" yaml:"use_gpu"`
}

type Log struct {
	Level    string `json:"level" yaml:"level"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

// Default returns the engine defaults.
func Default() Config {
	return Config{
		Physics: Physics{
			Gravity:           [3]float32{0, -20, 0},
			EjectionRatio:     1.0,
			NormalEpsilon:     0.05,
			RayEpsilon:        1e-6,
			FrictionSmoothing: 0.2,
			FixedTimestep:     1.0 / 60,
			MaxSubsteps:       8,
		},
		BroadPhase: BroadPhase{
			CellSize:     5.0,
			GPUThreshold: 750,
			MaxObjects:   50000,
			UseGPU:       false,
		},
		Log: Log{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads a YAML config file on top of the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result. Keys left out keep
// their default values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	p := c.Physics
	if p.EjectionRatio < 0 {
		return errors.Errorf("physics.ejection_ratio must not be negative, got %v", p.EjectionRatio)
	}
	if p.NormalEpsilon < 0 || p.RayEpsilon < 0 {
		return errors.New("physics epsilons must not be negative")
	}
	if p.FrictionSmoothing <= 0 || p.FrictionSmoothing > 1 {
		return errors.Errorf("physics.friction_smoothing must be in (0,1], got %v", p.FrictionSmoothing)
	}
	if p.FixedTimestep <= 0 || p.MaxSubsteps <= 0 {
		return errors.New("physics.fixed_timestep and physics.max_substeps must be positive")
	}
	if c.BroadPhase.CellSize <= 0 {
		return errors.Errorf("broad_phase.cell_size must be positive, got %v", c.BroadPhase.CellSize)
	}
	if c.BroadPhase.GPUThreshold < 0 || c.BroadPhase.MaxObjects <= 0 {
		return errors.New("broad_phase object limits must be positive")
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return errors.Errorf("log.encoding must be json or console, got %q", c.Log.Encoding)
	}
	return nil
}
