package physics

import (
	"fmt"
	"slices"

	"github.com/jinzhu/copier"
)

// Phase is the stage of the tick state machine the World is in.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseComputeForces
	PhaseIntegrate
	PhaseResolveBoundaries
	PhaseResolveCollisions
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseComputeForces:
		return "compute_forces"
	case PhaseIntegrate:
		return "integrate"
	case PhaseResolveBoundaries:
		return "resolve_boundaries"
	case PhaseResolveCollisions:
		return "resolve_collisions"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// TickStats summarizes the corrections made during one tick.
type TickStats struct {
	Tick     int
	Dt       float64
	WallHits int
	Contacts int
}

// World owns a fixed population of bodies and advances it one tick at a time:
// forces, integration, boundaries, collisions. It holds no rendering state;
// renderers read Bodies() after each tick. A World is not safe for concurrent use.
type World struct {
	cfg      Config
	bodies   []Body
	forces   *ForceField
	resolver *CollisionResolver
	diag     Diagnostics

	phase Phase
	ticks int
	last  TickStats
	// OnPhase, if set, is called each time the tick enters a new phase.
	OnPhase func(Phase)
}

// NewWorld validates cfg and bodies and returns a World that owns a copy of bodies.
// diag receives per-tick numeric diagnostics and may be nil.
func NewWorld(cfg Config, bodies []Body, diag Diagnostics) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(bodies))
	for _, b := range bodies {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("%w: duplicate body id %d", ErrInvalidBody, b.ID)
		}
		seen[b.ID] = true
		if 2*b.Radius > cfg.Width || 2*b.Radius > cfg.Height {
			return nil, fmt.Errorf("%w: body %d (radius %g) does not fit in %gx%g", ErrInvalidConfiguration, b.ID, b.Radius, cfg.Width, cfg.Height)
		}
	}
	return &World{
		cfg:      cfg,
		bodies:   slices.Clone(bodies),
		forces:   NewForceField(cfg, diag),
		resolver: NewCollisionResolver(cfg, diag),
		diag:     diag,
	}, nil
}

// Config returns the configuration the World was built with.
func (w *World) Config() Config {
	return w.cfg
}

// Len returns the population size.
func (w *World) Len() int {
	return len(w.bodies)
}

// Ticks returns the number of completed ticks.
func (w *World) Ticks() int {
	return w.ticks
}

// Phase returns the current phase. Outside Tick it is always PhaseIdle.
func (w *World) Phase() Phase {
	return w.phase
}

// LastTick returns the statistics of the most recent tick.
func (w *World) LastTick() TickStats {
	return w.last
}

// Bodies returns a deep copy of the population in its current order (ascending X
// after any tick). Mutating the result does not affect the World.
func (w *World) Bodies() []Body {
	var out []Body
	if err := copier.CopyWithOption(&out, &w.bodies, copier.Option{DeepCopy: true}); err != nil {
		report(w.diag, "world: snapshot copy failed, cloning: %v", err)
		return slices.Clone(w.bodies)
	}
	return out
}

// Body returns the body with the given id.
func (w *World) Body(id int) (Body, bool) {
	for _, b := range w.bodies {
		if b.ID == id {
			return b, true
		}
	}
	return Body{}, false
}

// Advance runs one tick of elapsed real time scaled by the configured time factor.
func (w *World) Advance(elapsed float64) {
	w.Tick(elapsed * w.cfg.TimeFactor)
}

// Tick advances every body by dt, which is used as given. The collection is replaced
// wholesale at the end; no partially updated state is observable.
func (w *World) Tick(dt float64) {
	stats := TickStats{Tick: w.ticks + 1, Dt: dt}

	w.enter(PhaseComputeForces)
	acc := w.forces.Accelerations(w.bodies)

	w.enter(PhaseIntegrate)
	next := make([]Body, len(w.bodies))
	for i, b := range w.bodies {
		next[i] = Integrate(b, acc[i], dt, w.cfg.MaxSpeed)
	}

	w.enter(PhaseResolveBoundaries)
	for i := range next {
		var hit Wall
		// Reflection points the component into the arena (±|v|) rather than negating it.
		next[i], hit = ClampToBounds(next[i], w.cfg.Width, w.cfg.Height)
		if hit != 0 {
			stats.WallHits++
		}
	}

	w.enter(PhaseResolveCollisions)
	w.bodies = w.resolver.Resolve(next, dt)
	stats.Contacts = w.resolver.Contacts()

	w.ticks++
	w.last = stats
	w.enter(PhaseIdle)
}

func (w *World) enter(p Phase) {
	w.phase = p
	if w.OnPhase != nil {
		w.OnPhase(p)
	}
}
