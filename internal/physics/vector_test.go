package physics

import (
	"math"
	"testing"
)

func TestVectorArithmetic(t *testing.T) {
	a := Vec(3, 4)
	b := Vec(1, -2)

	if got := a.Add(b); got != Vec(4, 2) {
		t.Fatalf("Add = %v, want (4,2)", got)
	}
	if got := a.Sub(b); got != Vec(2, 6) {
		t.Fatalf("Sub = %v, want (2,6)", got)
	}
	if got := a.Scale(0.5); got != Vec(1.5, 2) {
		t.Fatalf("Scale = %v, want (1.5,2)", got)
	}
	if got := a.Dot(b); got != -5 {
		t.Fatalf("Dot = %v, want -5", got)
	}
	if got := a.Norm(); got != 5 {
		t.Fatalf("Norm = %v, want 5", got)
	}
	if got := a.Norm2(); got != 25 {
		t.Fatalf("Norm2 = %v, want 25", got)
	}
	if got := a.Distance(Vec(0, 0)); got != 5 {
		t.Fatalf("Distance = %v, want 5", got)
	}
}

func TestVectorUnitOfZeroIsZero(t *testing.T) {
	u, ok := Vector2D{}.Unit()
	if ok {
		t.Fatalf("expected ok=false for zero vector")
	}
	if u != (Vector2D{}) {
		t.Fatalf("unit of zero vector = %v, want zero", u)
	}
	if n := (Vector2D{}).Normalize(); !n.IsFinite() {
		t.Fatalf("Normalize produced non-finite %v", n)
	}
}

func TestVectorNormalizeHasUnitLength(t *testing.T) {
	n := Vec(-7, 24).Normalize()
	if math.Abs(n.Norm()-1) > 1e-12 {
		t.Fatalf("normalized length = %v, want 1", n.Norm())
	}
	if n.X >= 0 || n.Y <= 0 {
		t.Fatalf("normalize flipped direction: %v", n)
	}
}

func TestVectorClampNorm(t *testing.T) {
	tests := []struct {
		name  string
		in    Vector2D
		limit float64
		want  Vector2D
	}{
		{"under", Vec(3, 4), 10, Vec(3, 4)},
		{"exact", Vec(3, 4), 5, Vec(3, 4)},
		{"over", Vec(30, 40), 5, Vec(3, 4)},
		{"zero", Vector2D{}, 5, Vector2D{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.ClampNorm(tt.limit)
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 {
				t.Fatalf("ClampNorm(%v, %v) = %v, want %v", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}
