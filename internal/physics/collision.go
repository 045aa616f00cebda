package physics

import (
	"cmp"
	"math"
	"slices"
)

// CollisionResolver separates overlapping pairs and applies the elastic impulse.
// Both separation policies share the impulse; they differ only in how the
// positions are fixed up before it is computed.
type CollisionResolver struct {
	Policy                SeparationPolicy
	Width, Height         float64
	MaxSpeed              float64
	PushBackStep          float64
	MaxPushBackIterations int
	Diag                  Diagnostics

	contacts int
}

// NewCollisionResolver returns the resolver described by cfg.
func NewCollisionResolver(cfg Config, diag Diagnostics) *CollisionResolver {
	return &CollisionResolver{
		Policy:                cfg.Separation,
		Width:                 cfg.Width,
		Height:                cfg.Height,
		MaxSpeed:              cfg.MaxSpeed,
		PushBackStep:          cfg.PushBackStep,
		MaxPushBackIterations: cfg.MaxPushBackIterations,
		Diag:                  diag,
	}
}

// Contacts returns the number of pairs resolved by the last Resolve call.
func (c *CollisionResolver) Contacts() int {
	return c.contacts
}

// Resolve returns a new slice with every overlapping pair separated and bounced.
// The result is sorted by ascending X. Every pair i<j is compared against the
// snapshot taken on entry, so a pair never sees another pair's update from the
// same pass; a body in several contacts keeps the last pair's result. dt is the
// tick length, used by TimeBacktrack to re-advance after the contact instant.
func (c *CollisionResolver) Resolve(bodies []Body, dt float64) []Body {
	snap := slices.Clone(bodies)
	slices.SortStableFunc(snap, func(a, b Body) int {
		return cmp.Compare(a.Position.X, b.Position.X)
	})
	out := slices.Clone(snap)

	c.contacts = 0
	for i := 0; i < len(snap); i++ {
		for j := i + 1; j < len(snap); j++ {
			a, b, ok := c.resolvePair(snap[i], snap[j], dt)
			if !ok {
				continue
			}
			out[i], out[j] = a, b
			c.contacts++
		}
	}

	for i := range out {
		out[i].Velocity = out[i].Velocity.ClampNorm(c.MaxSpeed)
		out[i], _ = ClampToBounds(out[i], c.Width, c.Height)
	}
	return out
}

// resolvePair returns the corrected pair and true when a and b were in contact.
func (c *CollisionResolver) resolvePair(a, b Body, dt float64) (Body, Body, bool) {
	delta := a.Position.Sub(b.Position)
	d := delta.Norm()
	if d >= a.Radius+b.Radius {
		return a, b, false
	}
	if d == 0 {
		report(c.Diag, "collision: bodies %d and %d share center (%g, %g), impulse skipped", a.ID, b.ID, a.Position.X, a.Position.Y)
		return a, b, false
	}

	rel := a.Velocity.Sub(b.Velocity)
	if rel.Dot(delta) >= 0 {
		// Not approaching: moving backward would deepen the overlap.
		if rel.Norm2() != 0 {
			return a, b, false
		}
		a, b = separate(a, b)
		return a, b, true
	}

	if c.Policy == TimeBacktrack {
		if t, ok := c.contactTime(a, b); ok {
			a, b = c.backtrack(a, b, t, dt)
			return a, b, true
		}
	}
	a, b = c.pushBack(a, b)
	a, b = c.impulse(a, b)
	return a, b, true
}

// contactTime solves |v + t·u|² = (ra+rb)² over the tick for the earlier root,
// where v is the separation at the start of the tick and u the change in
// separation across it. ok is false when no root lies in [0,1).
func (c *CollisionResolver) contactTime(a, b Body) (t float64, ok bool) {
	u := a.Position.Sub(a.PreviousPosition).Sub(b.Position.Sub(b.PreviousPosition))
	v := a.PreviousPosition.Sub(b.PreviousPosition)
	r := a.Radius + b.Radius

	qa := u.Dot(u)
	qb := 2 * v.Dot(u)
	qc := v.Dot(v) - r*r
	if qa == 0 {
		return 0, false
	}
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		report(c.Diag, "collision: bodies %d and %d have no real contact time (discriminant %g), pushing back", a.ID, b.ID, disc)
		return 0, false
	}
	t = (-qb - math.Sqrt(disc)) / (2 * qa)
	if t < 0 || t >= 1 || math.IsNaN(t) {
		return 0, false
	}
	return t, true
}

// backtrack rolls a and b back to the contact instant t, applies the impulse there,
// and moves both along their new velocity for the rest of the tick.
func (c *CollisionResolver) backtrack(a, b Body, t, dt float64) (Body, Body) {
	a.Position = lerp(a.PreviousPosition, a.Position, t)
	b.Position = lerp(b.PreviousPosition, b.Position, t)
	a, b = c.impulse(a, b)
	rest := (1 - t) * dt
	a.Position = a.Position.Add(a.Velocity.Scale(rest))
	b.Position = b.Position.Add(b.Velocity.Scale(rest))
	return a, b
}

// pushBack retreats both centers along their own velocity in PushBackStep increments
// until they no longer overlap. The caller guarantees the pair is approaching, so
// every step widens the gap. If the iteration budget runs out the pair is separated
// along the line of centers instead.
func (c *CollisionResolver) pushBack(a, b Body) (Body, Body) {
	r := a.Radius + b.Radius
	stepA := a.Velocity.Scale(c.PushBackStep)
	stepB := b.Velocity.Scale(c.PushBackStep)
	for n := 0; n < c.MaxPushBackIterations; n++ {
		if a.Position.Distance(b.Position) >= r {
			return a, b
		}
		a.Position = a.Position.Sub(stepA)
		b.Position = b.Position.Sub(stepB)
	}
	if a.Position.Distance(b.Position) >= r {
		return a, b
	}
	report(c.Diag, "collision: push-back for bodies %d and %d exhausted %d iterations, separating along centers", a.ID, b.ID, c.MaxPushBackIterations)
	return separate(a, b)
}

// impulse applies the two-body elastic collision along the line of centers and caps
// both speeds. Momentum and kinetic energy are conserved before the cap.
func (c *CollisionResolver) impulse(a, b Body) (Body, Body) {
	dx := a.Position.Sub(b.Position)
	d2 := dx.Norm2()
	if d2 == 0 {
		report(c.Diag, "collision: bodies %d and %d coincide after separation, impulse skipped", a.ID, b.ID)
		return a, b
	}
	dv := a.Velocity.Sub(b.Velocity)
	total := a.Mass + b.Mass
	k := dv.Dot(dx) / d2

	a.Velocity = a.Velocity.Sub(dx.Scale(2 * b.Mass / total * k)).ClampNorm(c.MaxSpeed)
	b.Velocity = b.Velocity.Add(dx.Scale(2 * a.Mass / total * k)).ClampNorm(c.MaxSpeed)
	return a, b
}

// separate moves a and b apart along the line of centers until they just touch,
// each by a share inversely proportional to its mass. Velocities are untouched.
func separate(a, b Body) (Body, Body) {
	delta := a.Position.Sub(b.Position)
	n, ok := delta.Unit()
	if !ok {
		return a, b
	}
	gap := a.Radius + b.Radius - delta.Norm()
	if gap <= 0 {
		return a, b
	}
	total := a.Mass + b.Mass
	a.Position = a.Position.Add(n.Scale(gap * b.Mass / total))
	b.Position = b.Position.Sub(n.Scale(gap * a.Mass / total))
	return a, b
}

func lerp(from, to Vector2D, t float64) Vector2D {
	return from.Add(to.Sub(from).Scale(t))
}
