// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Electron   ElectronConfig   `yaml:"electron"`
	Spark      SparkConfig      `yaml:"spark"`
	Discharge  DischargeConfig  `yaml:"discharge"`
	Limbs      LimbsConfig      `yaml:"limbs"`
	Projection ProjectionConfig `yaml:"projection"`
	Scenario   ScenarioConfig   `yaml:"scenario"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ElectronConfig holds free-motion parameters for electrons in the body.
// The repulsion constants are a tuned heuristic, not Coulomb's law.
type ElectronConfig struct {
	MaxElectrons        int     `yaml:"max_electrons"`
	Radius              float64 `yaml:"radius"`
	InitialVelocity     r2.Vec  `yaml:"initial_velocity"`
	MaxSpeed            float64 `yaml:"max_speed"`
	Damping             float64 `yaml:"damping"`          // Velocity multiplier applied after the speed clamp
	SkipProbability     float64 `yaml:"skip_probability"` // Chance a pair interaction is skipped this tick
	RepulsionScale      float64 `yaml:"repulsion_scale"`
	RepulsionExponent   float64 `yaml:"repulsion_exponent"`
	DistanceScale       float64 `yaml:"distance_scale"` // Distance is multiplied by this before the power
	MinDistance         float64 `yaml:"min_distance"`   // Floor for pair distance
	ForceCap            float64 `yaml:"force_cap"`
	ForceLineThreshold  float64 `yaml:"force_line_threshold"`  // Arrival distance at a force line's far end
	ForceLineAttraction float64 `yaml:"force_line_attraction"` // Pull toward the target force line (0 = bookkeeping only)
	MaxDT               float64 `yaml:"max_dt"`
}

// SparkConfig holds spark path generation parameters.
type SparkConfig struct {
	MaxPoints      int     `yaml:"max_points"`
	MaxTurnDivisor float64 `yaml:"max_turn_divisor"` // Max turn angle = pi / divisor
	StepLength     float64 `yaml:"step_length"`
	Source         r2.Vec  `yaml:"source"` // Used until an arm supplies the finger position
	Sink           r2.Vec  `yaml:"sink"`
}

// DischargeConfig holds discharge walk and trigger parameters.
type DischargeConfig struct {
	WalkSpeed           float64 `yaml:"walk_speed"`
	ArriveSpeed         float64 `yaml:"arrive_speed"` // Arrival threshold = arrive_speed * dt
	Jitter              float64 `yaml:"jitter"`       // Full width of the heading perturbation (radians)
	MinDistance         float64 `yaml:"min_distance"`
	DistancePerElectron float64 `yaml:"distance_per_electron"`
	MaxDistance         float64 `yaml:"max_distance"`
}

// AppendageConfig describes one rotating limb.
type AppendageConfig struct {
	Pivot        r2.Vec  `yaml:"pivot"`
	InitialAngle float64 `yaml:"initial_angle"`
	MinAngle     float64 `yaml:"min_angle"`
	MaxAngle     float64 `yaml:"max_angle"`
}

// ArmConfig adds the sampled fingertip to the appendage description.
type ArmConfig struct {
	AppendageConfig `yaml:",inline"`
	Finger          r2.Vec `yaml:"finger"` // Fingertip at angle 0
}

// LimbsConfig holds limb geometry and the charge pickup policy.
type LimbsConfig struct {
	Arm            ArmConfig       `yaml:"arm"`
	Leg            AppendageConfig `yaml:"leg"`
	CarpetMinAngle float64         `yaml:"carpet_min_angle"`
	CarpetMaxAngle float64         `yaml:"carpet_max_angle"`
	RubStep        float64         `yaml:"rub_step"` // Radians of leg travel per picked-up electron
	SpawnPoint     r2.Vec          `yaml:"spawn_point"`
	SpawnJitter    float64         `yaml:"spawn_jitter"`
}

// ProjectionConfig holds display-frame projection parameters.
type ProjectionConfig struct {
	HistorySize int    `yaml:"history_size"`
	LegRegion   r2.Box `yaml:"leg_region"`
	ArmRegion   r2.Box `yaml:"arm_region"`
}

// ScenarioConfig holds the scripted headless driver parameters.
type ScenarioConfig struct {
	DT           float64 `yaml:"dt"`
	RubSeconds   float64 `yaml:"rub_seconds"`
	RubFrequency float64 `yaml:"rub_frequency"` // Leg swings per second
	ReachSpeed   float64 `yaml:"reach_speed"`   // Arm radians per second
	RestSeconds  float64 `yaml:"rest_seconds"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxTurnAngle     float64 // pi / Spark.MaxTurnDivisor
	StatsWindowTicks int32   // Telemetry.StatsWindow in scenario ticks
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Spark.MaxTurnDivisor > 0 {
		c.Derived.MaxTurnAngle = math.Pi / c.Spark.MaxTurnDivisor
	} else {
		c.Derived.MaxTurnAngle = 0
	}

	ticks := int32(1)
	if c.Scenario.DT > 0 {
		ticks = int32(c.Telemetry.StatsWindow / c.Scenario.DT)
	}
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.StatsWindowTicks = ticks

	if c.Projection.HistorySize < 1 {
		c.Projection.HistorySize = 1
	}
	if c.Projection.HistorySize > MaxHistorySize {
		c.Projection.HistorySize = MaxHistorySize
	}
}

// Recompute refreshes derived values after fields were changed in code.
func (c *Config) Recompute() {
	c.computeDerived()
}

// MaxHistorySize bounds projection.history_size; region histories are fixed-size arrays.
const MaxHistorySize = 16

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
