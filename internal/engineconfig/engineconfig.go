package engineconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"particle-sim/internal/env"
	"particle-sim/internal/physics"
	"particle-sim/internal/population"
)

// ConfigPath is the default config file, relative to the process working directory.
const ConfigPath = "config/particles.yaml"

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "PARTICLES_"

// Config is the full simulation configuration as it appears in the YAML file.
// Keys under the top level are the physics surface; population and driver are
// only read by cmd/particles.
type Config struct {
	Width                     float64    `yaml:"width"`
	Height                    float64    `yaml:"height"`
	GravityEnabled            bool       `yaml:"gravity_enabled"`
	GravitationalConstant     float64    `yaml:"gravitational_constant"`
	MaxForceMagnitude         float64    `yaml:"max_force_magnitude"`
	ConstantAcceleration      [2]float64 `yaml:"constant_acceleration,flow"`
	MaxSpeed                  float64    `yaml:"max_speed"`
	SimulationTimeFactor      float64    `yaml:"simulation_time_factor"`
	CollisionSeparationPolicy string     `yaml:"collision_separation_policy"`
	PushBackStep              float64    `yaml:"push_back_step"`
	MaxPushBackIterations     int        `yaml:"max_push_back_iterations"`
	BarnesHutTheta            float64    `yaml:"barnes_hut_theta"`
	ForceWorkers              int        `yaml:"force_workers"`

	Population population.Options `yaml:"population"`
	// Bodies, when non-empty, replaces the random population with fixed initial states.
	Bodies []population.BodyDef `yaml:"bodies,omitempty"`

	Driver Driver `yaml:"driver"`
}

// Driver holds the headless run loop settings.
type Driver struct {
	Ticks          int     `yaml:"ticks"`
	Dt             float64 `yaml:"dt"`
	ReportInterval int     `yaml:"report_interval"`
	LogPath        string  `yaml:"log_path"`
}

// Default returns the 1200×600 arena, gravity off, push-back separation, a random
// population of twenty bodies, and a ten second run at 60 ticks per second.
func Default() Config {
	p := physics.DefaultConfig()
	return Config{
		Width:                     p.Width,
		Height:                    p.Height,
		GravityEnabled:            p.GravityEnabled,
		GravitationalConstant:     p.GravitationalConstant,
		MaxForceMagnitude:         p.MaxForce,
		MaxSpeed:                  p.MaxSpeed,
		SimulationTimeFactor:      p.TimeFactor,
		CollisionSeparationPolicy: p.Separation.String(),
		PushBackStep:              p.PushBackStep,
		MaxPushBackIterations:     p.MaxPushBackIterations,
		BarnesHutTheta:            p.BarnesHutTheta,
		ForceWorkers:              p.ForceWorkers,
		Population:                population.DefaultOptions(),
		Driver: Driver{
			Ticks:          600,
			Dt:             1.0 / 60,
			ReportInterval: 60,
			LogPath:        "logs/particles.txt",
		},
	}
}

// Load reads the YAML file at path on top of Default(). A missing file yields
// Default() and is not an error; a malformed file is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal encodes cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// ApplyEnv overrides fields from PARTICLES_* environment variables, e.g.
// PARTICLES_GRAVITY_ENABLED=true or PARTICLES_POPULATION_COUNT=50. All unparsable
// values are reported together.
func (c *Config) ApplyEnv() error {
	env.String(EnvPrefix+"COLLISION_SEPARATION_POLICY", &c.CollisionSeparationPolicy)
	env.String(EnvPrefix+"DRIVER_LOG_PATH", &c.Driver.LogPath)
	return errors.Join(
		env.Float(EnvPrefix+"WIDTH", &c.Width),
		env.Float(EnvPrefix+"HEIGHT", &c.Height),
		env.Bool(EnvPrefix+"GRAVITY_ENABLED", &c.GravityEnabled),
		env.Float(EnvPrefix+"GRAVITATIONAL_CONSTANT", &c.GravitationalConstant),
		env.Float(EnvPrefix+"MAX_FORCE_MAGNITUDE", &c.MaxForceMagnitude),
		env.Float(EnvPrefix+"CONSTANT_ACCELERATION_X", &c.ConstantAcceleration[0]),
		env.Float(EnvPrefix+"CONSTANT_ACCELERATION_Y", &c.ConstantAcceleration[1]),
		env.Float(EnvPrefix+"MAX_SPEED", &c.MaxSpeed),
		env.Float(EnvPrefix+"SIMULATION_TIME_FACTOR", &c.SimulationTimeFactor),
		env.Float(EnvPrefix+"PUSH_BACK_STEP", &c.PushBackStep),
		env.Int(EnvPrefix+"MAX_PUSH_BACK_ITERATIONS", &c.MaxPushBackIterations),
		env.Float(EnvPrefix+"BARNES_HUT_THETA", &c.BarnesHutTheta),
		env.Int(EnvPrefix+"FORCE_WORKERS", &c.ForceWorkers),
		env.Int(EnvPrefix+"POPULATION_COUNT", &c.Population.Count),
		env.Int64(EnvPrefix+"POPULATION_SEED", &c.Population.Seed),
		env.Bool(EnvPrefix+"POPULATION_UNIFORM_MASS", &c.Population.UniformMass),
		env.Int(EnvPrefix+"DRIVER_TICKS", &c.Driver.Ticks),
		env.Float(EnvPrefix+"DRIVER_DT", &c.Driver.Dt),
	)
}

// Physics converts the file representation to a validated physics.Config.
func (c Config) Physics() (physics.Config, error) {
	policy, err := physics.ParseSeparationPolicy(c.CollisionSeparationPolicy)
	if err != nil {
		return physics.Config{}, err
	}
	p := physics.Config{
		Width:                 c.Width,
		Height:                c.Height,
		GravityEnabled:        c.GravityEnabled,
		GravitationalConstant: c.GravitationalConstant,
		MaxForce:              c.MaxForceMagnitude,
		ConstantAcceleration:  physics.Vec(c.ConstantAcceleration[0], c.ConstantAcceleration[1]),
		MaxSpeed:              c.MaxSpeed,
		TimeFactor:            c.SimulationTimeFactor,
		Separation:            policy,
		PushBackStep:          c.PushBackStep,
		MaxPushBackIterations: c.MaxPushBackIterations,
		BarnesHutTheta:        c.BarnesHutTheta,
		ForceWorkers:          c.ForceWorkers,
	}
	if err := p.Validate(); err != nil {
		return physics.Config{}, err
	}
	return p, nil
}

// Validate checks the physics surface and the driver settings.
func (c Config) Validate() error {
	if _, err := c.Physics(); err != nil {
		return err
	}
	if c.Driver.Ticks < 0 {
		return fmt.Errorf("%w: driver.ticks must not be negative, got %d", physics.ErrInvalidConfiguration, c.Driver.Ticks)
	}
	if !(c.Driver.Dt > 0) {
		return fmt.Errorf("%w: driver.dt must be positive, got %g", physics.ErrInvalidConfiguration, c.Driver.Dt)
	}
	if len(c.Bodies) == 0 && c.Population.Count < 0 {
		return fmt.Errorf("%w: population.count must not be negative, got %d", physics.ErrInvalidConfiguration, c.Population.Count)
	}
	return nil
}

// InitialBodies builds the initial population: the fixed Bodies list when present,
// otherwise a random population sized to the arena.
func (c Config) InitialBodies() ([]physics.Body, error) {
	if len(c.Bodies) > 0 {
		return population.FromDefs(c.Bodies)
	}
	return population.Generate(c.Population, c.Width, c.Height)
}
