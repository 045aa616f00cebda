package physics

import (
	"fmt"
	"math"
)

// SeparationPolicy selects how an overlapping pair is un-overlapped before the impulse.
type SeparationPolicy uint8

const (
	// PushBack steps both centers backward along their own velocity until they no longer overlap.
	PushBack SeparationPolicy = iota
	// TimeBacktrack rolls both bodies back to the instant of first contact within the tick.
	TimeBacktrack
)

// String returns the configuration name of the policy.
func (p SeparationPolicy) String() string {
	switch p {
	case PushBack:
		return "push_back"
	case TimeBacktrack:
		return "time_backtrack"
	default:
		return fmt.Sprintf("SeparationPolicy(%d)", uint8(p))
	}
}

// ParseSeparationPolicy maps "push_back" and "time_backtrack" to a policy.
func ParseSeparationPolicy(s string) (SeparationPolicy, error) {
	switch s {
	case "push_back", "pushback", "push-back":
		return PushBack, nil
	case "time_backtrack", "backtrack", "time-backtrack":
		return TimeBacktrack, nil
	}
	return 0, fmt.Errorf("%w: unknown collision separation policy %q", ErrInvalidConfiguration, s)
}

const (
	// DefaultMaxForce caps the per-pair gravitational acceleration.
	DefaultMaxForce = 100.0
	// DefaultPushBackStep is the fraction of a velocity unit each push-back iteration retreats.
	DefaultPushBackStep = 1e-5
	// DefaultMaxPushBackIterations bounds the push-back loop for one pair.
	DefaultMaxPushBackIterations = 1_000_000
)

// Config is the complete physics configuration of a World.
type Config struct {
	Width, Height float64

	GravityEnabled        bool
	GravitationalConstant float64
	MaxForce              float64
	// ConstantAcceleration is added to every body regardless of GravityEnabled.
	ConstantAcceleration Vector2D

	MaxSpeed   float64
	TimeFactor float64

	Separation            SeparationPolicy
	PushBackStep          float64
	MaxPushBackIterations int

	// BarnesHutTheta > 0 approximates the pairwise sum with a quadtree. 0 is exact.
	BarnesHutTheta float64
	// ForceWorkers > 1 spreads the force pass over that many goroutines.
	ForceWorkers int
}

// DefaultConfig returns the 1200×600 arena with gravity off and push-back separation.
func DefaultConfig() Config {
	return Config{
		Width:                 1200,
		Height:                600,
		GravityEnabled:        false,
		GravitationalConstant: 1000,
		MaxForce:              DefaultMaxForce,
		MaxSpeed:              500,
		TimeFactor:            1,
		Separation:            PushBack,
		PushBackStep:          DefaultPushBackStep,
		MaxPushBackIterations: DefaultMaxPushBackIterations,
	}
}

// Validate reports the first configuration value that would make the engine misbehave.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"max_force_magnitude", c.MaxForce},
		{"max_speed", c.MaxSpeed},
		{"simulation_time_factor", c.TimeFactor},
		{"push_back_step", c.PushBackStep},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be positive and finite, got %g", ErrInvalidConfiguration, p.name, p.v)
		}
	}
	if c.GravitationalConstant < 0 || math.IsNaN(c.GravitationalConstant) {
		return fmt.Errorf("%w: gravitational_constant must not be negative, got %g", ErrInvalidConfiguration, c.GravitationalConstant)
	}
	if !c.ConstantAcceleration.IsFinite() {
		return fmt.Errorf("%w: constant_acceleration must be finite", ErrInvalidConfiguration)
	}
	if c.Separation != PushBack && c.Separation != TimeBacktrack {
		return fmt.Errorf("%w: unknown separation policy %v", ErrInvalidConfiguration, c.Separation)
	}
	if c.MaxPushBackIterations <= 0 {
		return fmt.Errorf("%w: max_push_back_iterations must be positive, got %d", ErrInvalidConfiguration, c.MaxPushBackIterations)
	}
	if c.BarnesHutTheta < 0 || math.IsNaN(c.BarnesHutTheta) {
		return fmt.Errorf("%w: barnes_hut_theta must not be negative, got %g", ErrInvalidConfiguration, c.BarnesHutTheta)
	}
	if c.ForceWorkers < 0 {
		return fmt.Errorf("%w: force_workers must not be negative, got %d", ErrInvalidConfiguration, c.ForceWorkers)
	}
	return nil
}
