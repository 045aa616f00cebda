package physics

import (
	"math"
	"slices"
	"testing"
)

func testResolver(policy SeparationPolicy) *CollisionResolver {
	return &CollisionResolver{
		Policy:                policy,
		Width:                 1000,
		Height:                1000,
		MaxSpeed:              1e6,
		PushBackStep:          DefaultPushBackStep,
		MaxPushBackIterations: DefaultMaxPushBackIterations,
	}
}

func byID(bodies []Body, id int) Body {
	for _, b := range bodies {
		if b.ID == id {
			return b
		}
	}
	panic("missing body")
}

func vecClose(a, b Vector2D, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestResolveEqualMassHeadOnSwapsVelocities(t *testing.T) {
	for _, policy := range []SeparationPolicy{PushBack, TimeBacktrack} {
		t.Run(policy.String(), func(t *testing.T) {
			bodies := []Body{
				{ID: 1, Position: Vec(100, 100), PreviousPosition: Vec(100, 100), Velocity: Vec(50, 0), Radius: 10, Mass: 1},
				{ID: 2, Position: Vec(115, 100), PreviousPosition: Vec(115, 100), Velocity: Vec(-50, 0), Radius: 10, Mass: 1},
			}
			out := testResolver(policy).Resolve(bodies, 1.0/60)

			a, b := byID(out, 1), byID(out, 2)
			if !vecClose(a.Velocity, Vec(-50, 0), 1e-9) {
				t.Fatalf("v1' = %v, want (-50,0)", a.Velocity)
			}
			if !vecClose(b.Velocity, Vec(50, 0), 1e-9) {
				t.Fatalf("v2' = %v, want (50,0)", b.Velocity)
			}
			if d := a.Position.Distance(b.Position); d < 20-1e-6 {
				t.Fatalf("bodies still overlap after resolve: distance %v", d)
			}
		})
	}
}

func TestResolveConservesMomentumAndEnergy(t *testing.T) {
	bodies := []Body{
		{ID: 1, Position: Vec(200, 200), Velocity: Vec(30, 10), Radius: 10, Mass: 2},
		{ID: 2, Position: Vec(215, 205), Velocity: Vec(-20, 5), Radius: 12, Mass: 5},
	}
	p0 := bodies[0].Momentum().Add(bodies[1].Momentum())
	e0 := bodies[0].KineticEnergy() + bodies[1].KineticEnergy()

	r := testResolver(PushBack)
	out := r.Resolve(bodies, 1.0/60)
	if r.Contacts() != 1 {
		t.Fatalf("contacts = %d, want 1", r.Contacts())
	}

	p1 := out[0].Momentum().Add(out[1].Momentum())
	e1 := out[0].KineticEnergy() + out[1].KineticEnergy()
	if p1.Sub(p0).Norm() > 1e-9*p0.Norm() {
		t.Fatalf("momentum not conserved: before %v after %v", p0, p1)
	}
	if math.Abs(e1-e0) > 1e-9*e0 {
		t.Fatalf("kinetic energy not conserved: before %v after %v", e0, e1)
	}
	if out[0].Velocity == bodies[0].Velocity {
		t.Fatalf("expected velocity change after collision")
	}
}

func TestResolveTimeBacktrackUsesContactInstant(t *testing.T) {
	bodies := []Body{
		{ID: 1, PreviousPosition: Vec(100, 100), Position: Vec(112, 100), Velocity: Vec(12, 0), Radius: 5, Mass: 1},
		{ID: 2, PreviousPosition: Vec(130, 100), Position: Vec(118, 100), Velocity: Vec(-12, 0), Radius: 5, Mass: 1},
	}
	out := testResolver(TimeBacktrack).Resolve(bodies, 1)
	a, b := byID(out, 1), byID(out, 2)

	// Contact at t=5/6 (110 and 120), then 1/6 of a tick on the swapped velocities.
	if !vecClose(a.Velocity, Vec(-12, 0), 1e-9) || !vecClose(b.Velocity, Vec(12, 0), 1e-9) {
		t.Fatalf("velocities = %v %v, want swapped", a.Velocity, b.Velocity)
	}
	if !vecClose(a.Position, Vec(108, 100), 1e-9) {
		t.Fatalf("a.Position = %v, want (108,100)", a.Position)
	}
	if !vecClose(b.Position, Vec(122, 100), 1e-9) {
		t.Fatalf("b.Position = %v, want (122,100)", b.Position)
	}
}

func TestContactTimeNoRealRootReportsAndFails(t *testing.T) {
	rec := &recorder{}
	r := testResolver(TimeBacktrack)
	r.Diag = rec
	a := Body{ID: 1, PreviousPosition: Vec(0, 0), Position: Vec(10, 0), Radius: 1, Mass: 1}
	b := Body{ID: 2, PreviousPosition: Vec(5, 20), Position: Vec(5, 20), Radius: 1, Mass: 1}
	if _, ok := r.contactTime(a, b); ok {
		t.Fatalf("expected no contact time for a pair that never touches")
	}
	if !rec.contains("discriminant") {
		t.Fatalf("expected discriminant diagnostic, got %v", rec.lines)
	}
}

func TestResolveCoincidentCentersSkipsImpulse(t *testing.T) {
	rec := &recorder{}
	r := testResolver(PushBack)
	r.Diag = rec
	bodies := []Body{
		{ID: 1, Position: Vec(50, 50), Velocity: Vec(3, 0), Radius: 5, Mass: 1},
		{ID: 2, Position: Vec(50, 50), Velocity: Vec(-3, 0), Radius: 5, Mass: 1},
	}
	out := r.Resolve(bodies, 1)
	for _, b := range out {
		if !b.Velocity.IsFinite() || !b.Position.IsFinite() {
			t.Fatalf("non-finite state after degenerate contact: %+v", b)
		}
	}
	if byID(out, 1).Velocity != Vec(3, 0) || byID(out, 2).Velocity != Vec(-3, 0) {
		t.Fatalf("velocities changed for degenerate pair: %+v", out)
	}
	if !rec.contains("share center") {
		t.Fatalf("expected degenerate separation diagnostic, got %v", rec.lines)
	}
}

// A sorted scan that stopped a row at the first non-overlapping neighbour would
// miss the (1,3) contact: body 2 sits between them in X but far away in Y.
func TestResolveChecksEveryPairInRow(t *testing.T) {
	bodies := []Body{
		{ID: 1, Position: Vec(100, 100), Velocity: Vec(10, 0), Radius: 10, Mass: 1},
		{ID: 2, Position: Vec(105, 300), Velocity: Vec(0, 0), Radius: 10, Mass: 1},
		{ID: 3, Position: Vec(115, 100), Velocity: Vec(-10, 0), Radius: 10, Mass: 1},
	}
	out := testResolver(PushBack).Resolve(bodies, 1)
	if v := byID(out, 1).Velocity; !vecClose(v, Vec(-10, 0), 1e-9) {
		t.Fatalf("body 1 velocity = %v, want (-10,0)", v)
	}
	if v := byID(out, 3).Velocity; !vecClose(v, Vec(10, 0), 1e-9) {
		t.Fatalf("body 3 velocity = %v, want (10,0)", v)
	}
	if v := byID(out, 2).Velocity; v != (Vector2D{}) {
		t.Fatalf("body 2 should be untouched, got %v", v)
	}
}

// Body 2 is struck by 1 and 3 in the same pass. The (2,3) pair must read body 2's
// velocity from the start of the pass, not the one (1,2) just produced, and body 2's
// output is whatever (2,3) wrote last.
func TestResolveBodyInTwoContactsUsesSnapshotAndLastWriteWins(t *testing.T) {
	bodies := []Body{
		{ID: 1, Position: Vec(100, 100), Velocity: Vec(10, 0), Radius: 10, Mass: 1},
		{ID: 2, Position: Vec(118, 100), Velocity: Vec(0, 0), Radius: 10, Mass: 1},
		{ID: 3, Position: Vec(136, 100), Velocity: Vec(-10, 0), Radius: 10, Mass: 1},
	}
	r := testResolver(PushBack)
	out := r.Resolve(bodies, 1)

	if r.Contacts() != 2 {
		t.Fatalf("contacts = %d, want 2", r.Contacts())
	}
	if v := byID(out, 1).Velocity; !vecClose(v, Vec(0, 0), 1e-6) {
		t.Fatalf("body 1 velocity = %v, want (0,0)", v)
	}
	// With body 2 at rest in the snapshot, (2,3) swaps 0 and -10. Had it seen the
	// (10,0) written by (1,2), body 3 would leave with (10,0) and body 2 would have
	// been pushed back off x=118.
	if v := byID(out, 3).Velocity; !vecClose(v, Vec(0, 0), 1e-6) {
		t.Fatalf("body 3 velocity = %v, want (0,0)", v)
	}
	b2 := byID(out, 2)
	if !vecClose(b2.Velocity, Vec(-10, 0), 1e-6) {
		t.Fatalf("body 2 velocity = %v, want (-10,0) from the (2,3) contact", b2.Velocity)
	}
	if b2.Position != Vec(118, 100) {
		t.Fatalf("body 2 position = %v, want (118,100)", b2.Position)
	}
	if x := byID(out, 3).Position.X; x < 138-1e-3 {
		t.Fatalf("body 3 x = %v, want pushed back to about 138", x)
	}
}

func TestResolveDoesNotMutateInputAndSortsByX(t *testing.T) {
	bodies := []Body{
		{ID: 1, Position: Vec(300, 10), Radius: 1, Mass: 1},
		{ID: 2, Position: Vec(100, 10), Radius: 1, Mass: 1},
		{ID: 3, Position: Vec(200, 10), Radius: 1, Mass: 1},
	}
	in := slices.Clone(bodies)
	out := testResolver(PushBack).Resolve(bodies, 1)

	if !slices.Equal(in, bodies) {
		t.Fatalf("Resolve mutated its input")
	}
	ids := []int{out[0].ID, out[1].ID, out[2].ID}
	if !slices.Equal(ids, []int{2, 3, 1}) {
		t.Fatalf("order = %v, want [2 3 1]", ids)
	}
}

func TestResolveStationaryOverlapIsSeparated(t *testing.T) {
	bodies := []Body{
		{ID: 1, Position: Vec(100, 100), Radius: 10, Mass: 1},
		{ID: 2, Position: Vec(110, 100), Radius: 10, Mass: 3},
	}
	out := testResolver(PushBack).Resolve(bodies, 1)
	a, b := byID(out, 1), byID(out, 2)
	if d := a.Position.Distance(b.Position); math.Abs(d-20) > 1e-9 {
		t.Fatalf("distance = %v, want 20", d)
	}
	// The lighter body moves three times as far.
	if !vecClose(a.Position, Vec(92.5, 100), 1e-9) || !vecClose(b.Position, Vec(112.5, 100), 1e-9) {
		t.Fatalf("positions = %v %v", a.Position, b.Position)
	}
	if a.Velocity != (Vector2D{}) || b.Velocity != (Vector2D{}) {
		t.Fatalf("stationary pair gained velocity: %v %v", a.Velocity, b.Velocity)
	}
}

func TestResolveSeparatingOverlapIsLeftAlone(t *testing.T) {
	bodies := []Body{
		{ID: 1, Position: Vec(100, 100), Velocity: Vec(-5, 0), Radius: 10, Mass: 1},
		{ID: 2, Position: Vec(110, 100), Velocity: Vec(5, 0), Radius: 10, Mass: 1},
	}
	r := testResolver(PushBack)
	out := r.Resolve(bodies, 1)
	if r.Contacts() != 0 {
		t.Fatalf("contacts = %d, want 0", r.Contacts())
	}
	if !slices.Equal(out, bodies) {
		t.Fatalf("separating pair changed: %+v", out)
	}
}

func TestPushBackTerminatesAndFallsBackWhenExhausted(t *testing.T) {
	rec := &recorder{}
	r := testResolver(PushBack)
	r.Diag = rec
	r.MaxPushBackIterations = 10
	bodies := []Body{
		{ID: 1, Position: Vec(100, 100), Velocity: Vec(0.01, 0), Radius: 10, Mass: 1},
		{ID: 2, Position: Vec(105, 100), Velocity: Vec(-0.01, 0), Radius: 10, Mass: 1},
	}
	out := r.Resolve(bodies, 1)
	if d := out[0].Position.Distance(out[1].Position); d < 20-1e-9 {
		t.Fatalf("distance = %v, want >= 20", d)
	}
	if !rec.contains("exhausted") {
		t.Fatalf("expected exhaustion diagnostic, got %v", rec.lines)
	}
}

func TestPushBackSeparatesWithinBoundedIterations(t *testing.T) {
	r := testResolver(PushBack)
	a := Body{ID: 1, Position: Vec(100, 100), Velocity: Vec(40, 30), Radius: 8, Mass: 1}
	b := Body{ID: 2, Position: Vec(110, 105), Velocity: Vec(-20, -10), Radius: 9, Mass: 2}
	a, b = r.pushBack(a, b)
	if d := a.Position.Distance(b.Position); d < a.Radius+b.Radius {
		t.Fatalf("push-back left overlap: distance %v", d)
	}
}

func TestResolveCapsSpeedAndReclampsToBounds(t *testing.T) {
	r := testResolver(PushBack)
	r.MaxSpeed = 60
	bodies := []Body{
		{ID: 1, Position: Vec(12, 500), Velocity: Vec(50, 0), Radius: 10, Mass: 100},
		{ID: 2, Position: Vec(27, 500), Velocity: Vec(-10, 0), Radius: 10, Mass: 1},
	}
	out := r.Resolve(bodies, 1)
	for _, b := range out {
		if b.Speed() > 60+1e-9 {
			t.Fatalf("body %d speed %v exceeds cap", b.ID, b.Speed())
		}
		if b.Position.X < b.Radius || b.Position.X > r.Width-b.Radius {
			t.Fatalf("body %d out of bounds at %v", b.ID, b.Position)
		}
	}
}
