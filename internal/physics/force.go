package physics

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// ForceField computes the per-body acceleration of one tick from a read-only
// snapshot: pairwise gravity (when enabled) plus a constant field.
type ForceField struct {
	Enabled  bool
	G        float64
	MaxForce float64
	Constant Vector2D
	// Theta is the Barnes-Hut opening angle. Zero sums every pair exactly.
	Theta   float64
	Workers int
	Diag    Diagnostics
}

// NewForceField returns the force field described by cfg.
func NewForceField(cfg Config, diag Diagnostics) *ForceField {
	return &ForceField{
		Enabled:  cfg.GravityEnabled,
		G:        cfg.GravitationalConstant,
		MaxForce: cfg.MaxForce,
		Constant: cfg.ConstantAcceleration,
		Theta:    cfg.BarnesHutTheta,
		Workers:  cfg.ForceWorkers,
		Diag:     diag,
	}
}

// particle adapts a body snapshot to barneshut.Particle2. Identity is the pointer.
type particle struct {
	pos  r2.Vec
	mass float64
}

func (p *particle) Coord2() r2.Vec { return p.pos }
func (p *particle) Mass() float64  { return p.mass }

// Accelerations returns one acceleration per body, indexed like bodies. Bodies are
// not modified; every result depends only on the positions at the time of the call.
func (f *ForceField) Accelerations(bodies []Body) []Vector2D {
	out := make([]Vector2D, len(bodies))
	if !f.Enabled || len(bodies) < 2 {
		for i := range out {
			out[i] = f.Constant
		}
		return out
	}

	particles := make([]barneshut.Particle2, len(bodies))
	for i, b := range bodies {
		particles[i] = &particle{pos: r2.Vec(b.Position), mass: b.Mass}
	}
	plane := &barneshut.Plane{Particles: particles}
	theta := f.Theta
	if theta > 0 {
		if err := plane.Reset(); err != nil {
			report(f.Diag, "force: quadtree unavailable, summing exactly: %v", err)
			theta = 0
		}
	}

	accel := func(i int) {
		a := plane.ForceOn(particles[i], theta, f.pairAcceleration)
		out[i] = Vector2D(a).Add(f.Constant)
	}

	workers := f.Workers
	if workers > len(bodies) {
		workers = len(bodies)
	}
	if workers <= 1 {
		for i := range bodies {
			accel(i)
		}
		return out
	}

	chunk := (len(bodies) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(bodies); start += chunk {
		end := min(start+chunk, len(bodies))
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				accel(i)
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

// pairAcceleration is the barneshut.Force2 for body p1 attracted by p2 (or by an
// aggregated tile when p2 is nil). v points from p1 to p2. The magnitude G·m2/d²
// is capped at MaxForce so near-coincident pairs stay bounded.
func (f *ForceField) pairAcceleration(p1, p2 barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
	if p1 == p2 {
		return r2.Vec{}
	}
	d2 := r2.Norm2(v)
	if d2 == 0 {
		report(f.Diag, "force: coincident bodies at (%g, %g), direction undefined, contribution skipped", p1.Coord2().X, p1.Coord2().Y)
		return r2.Vec{}
	}
	mag := f.G * m2 / d2
	if mag > f.MaxForce {
		mag = f.MaxForce
	}
	return r2.Scale(mag/math.Sqrt(d2), v)
}
