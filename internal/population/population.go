package population

import (
	"fmt"
	"math"
	"time"

	"github.com/chewxy/math32"
	"golang.org/x/exp/rand"

	"particle-sim/internal/physics"
)

// Options controls random population generation.
// Radii are drawn uniformly from [MinRadius, MaxRadius]. Mass is Density·π·r²
// unless UniformMass is set, in which case every body has mass 1.
// Speeds are uniform in [0, MaxSpeed] with a uniform random heading.
// Seed controls randomness; Seed == 0 uses a time-based seed.
// PlacementAttempts bounds the search for a non-overlapping spot per body; when it
// runs out the body is placed anyway and the collision pass separates it.
type Options struct {
	Count       int     `yaml:"count"`
	Seed        int64   `yaml:"seed"`
	MinRadius   float64 `yaml:"min_radius"`
	MaxRadius   float64 `yaml:"max_radius"`
	Density     float64 `yaml:"density"`
	UniformMass bool    `yaml:"uniform_mass"`
	MaxSpeed    float64 `yaml:"max_speed"`

	PlacementAttempts int `yaml:"placement_attempts"`
}

// DefaultOptions returns a sane default configuration.
func DefaultOptions() Options {
	return Options{
		Count:             20,
		Seed:              0,
		MinRadius:         8,
		MaxRadius:         24,
		Density:           0.01,
		MaxSpeed:          120,
		PlacementAttempts: 64,
	}
}

// Generate builds opts.Count bodies inside a width×height arena with ids 0..Count-1.
// Every body lies fully inside the arena.
func Generate(opts Options, width, height float64) ([]physics.Body, error) {
	if opts.Count < 0 {
		return nil, fmt.Errorf("population: count %d must not be negative", opts.Count)
	}
	if opts.MinRadius <= 0 {
		opts.MinRadius = 1
	}
	if opts.MaxRadius < opts.MinRadius {
		opts.MaxRadius = opts.MinRadius
	}
	if opts.Density <= 0 {
		opts.Density = 0.01
	}
	if opts.MaxSpeed < 0 {
		opts.MaxSpeed = 0
	}
	if opts.PlacementAttempts <= 0 {
		opts.PlacementAttempts = 1
	}
	if 2*opts.MaxRadius > width || 2*opts.MaxRadius > height {
		return nil, fmt.Errorf("population: max radius %g does not fit in %gx%g", opts.MaxRadius, width, height)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(uint64(seed)))
	hue := rng.Float32()

	bodies := make([]physics.Body, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		r := opts.MinRadius + rng.Float64()*(opts.MaxRadius-opts.MinRadius)
		pos := place(rng, bodies, r, width, height, opts.PlacementAttempts)

		speed := rng.Float64() * opts.MaxSpeed
		sin, cos := math.Sincos(2 * math.Pi * rng.Float64())
		vel := physics.Vec(speed*cos, speed*sin)

		mass := 1.0
		if !opts.UniformMass {
			mass = opts.Density * math.Pi * r * r
		}

		b, err := physics.NewBody(i, pos, vel, r, mass, goldenColor(hue, i))
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// place samples a center for a disc of radius r that does not overlap the bodies
// placed so far, giving up after attempts tries.
func place(rng *rand.Rand, placed []physics.Body, r, width, height float64, attempts int) physics.Vector2D {
	var pos physics.Vector2D
	for try := 0; try < attempts; try++ {
		pos = physics.Vec(r+rng.Float64()*(width-2*r), r+rng.Float64()*(height-2*r))
		free := true
		for _, b := range placed {
			if b.Position.Distance(pos) < b.Radius+r {
				free = false
				break
			}
		}
		if free {
			return pos
		}
	}
	return pos
}

// goldenRatioConjugate spaces successive hues so neighbouring ids stay distinguishable.
const goldenRatioConjugate = 0.618033988749895

// goldenColor returns an opaque color whose hue advances by the golden ratio per index.
func goldenColor(offset float32, i int) physics.Color {
	h := math32.Mod(offset+float32(i)*goldenRatioConjugate, 1)
	r, g, b := hsvToRGB(h, 0.65, 0.95)
	return physics.Color{r, g, b, 1}
}

// hsvToRGB converts h, s, v in [0,1] to RGB components in [0,1].
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	h6 := h * 6
	c := v * s
	x := c * (1 - math32.Abs(math32.Mod(h6, 2)-1))
	m := v - c
	switch int(math32.Floor(h6)) % 6 {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
