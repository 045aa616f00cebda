package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vector2D is a 2D vector with value semantics. Its layout matches r2.Vec, so the
// arithmetic is delegated to gonum without copying.
type Vector2D struct {
	X, Y float64
}

// Vec returns a Vector2D with the given components.
func Vec(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

func (v Vector2D) r2() r2.Vec { return r2.Vec(v) }

// Add returns v+o.
func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D(r2.Add(v.r2(), o.r2()))
}

// Sub returns v-o.
func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D(r2.Sub(v.r2(), o.r2()))
}

// Scale returns v scaled by f.
func (v Vector2D) Scale(f float64) Vector2D {
	return Vector2D(r2.Scale(f, v.r2()))
}

// Dot returns the dot product v·o.
func (v Vector2D) Dot(o Vector2D) float64 {
	return r2.Dot(v.r2(), o.r2())
}

// Norm returns the Euclidean length of v.
func (v Vector2D) Norm() float64 {
	return r2.Norm(v.r2())
}

// Norm2 returns the squared length of v.
func (v Vector2D) Norm2() float64 {
	return r2.Norm2(v.r2())
}

// Distance returns |v-o|.
func (v Vector2D) Distance(o Vector2D) float64 {
	return v.Sub(o).Norm()
}

// Unit returns v scaled to length 1. ok is false for the zero vector, in which
// case the zero vector is returned instead of NaN components.
func (v Vector2D) Unit() (u Vector2D, ok bool) {
	n := v.Norm()
	if n == 0 || math.IsNaN(n) {
		return Vector2D{}, false
	}
	return v.Scale(1 / n), true
}

// Normalize returns the unit vector of v, or the zero vector when v has no length.
func (v Vector2D) Normalize() Vector2D {
	u, _ := v.Unit()
	return u
}

// ClampNorm returns v rescaled to length limit when it is longer, preserving direction.
func (v Vector2D) ClampNorm(limit float64) Vector2D {
	n := v.Norm()
	if n <= limit || n == 0 {
		return v
	}
	return v.Scale(limit / n)
}

// IsFinite reports whether both components are finite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
