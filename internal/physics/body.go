package physics

import "fmt"

// Color is an RGBA display attribute in [0,1]. The engine never reads it.
type Color [4]float32

// Body is a circular point mass. PreviousPosition is the center at the start of
// the current tick and is only read by the time-backtrack collision policy.
type Body struct {
	ID               int
	Position         Vector2D
	PreviousPosition Vector2D
	Velocity         Vector2D
	Acceleration     Vector2D
	Radius           float64
	Mass             float64
	Color            Color
}

// NewBody returns a body at position with the given velocity. PreviousPosition
// starts equal to position. Radius and mass must be strictly positive.
func NewBody(id int, position, velocity Vector2D, radius, mass float64, color Color) (Body, error) {
	b := Body{
		ID:               id,
		Position:         position,
		PreviousPosition: position,
		Velocity:         velocity,
		Radius:           radius,
		Mass:             mass,
		Color:            color,
	}
	if err := b.Validate(); err != nil {
		return Body{}, err
	}
	return b, nil
}

// Validate checks the body's construction invariants.
func (b Body) Validate() error {
	if !(b.Radius > 0) {
		return fmt.Errorf("%w: body %d radius %g must be positive", ErrInvalidBody, b.ID, b.Radius)
	}
	if !(b.Mass > 0) {
		return fmt.Errorf("%w: body %d mass %g must be positive", ErrInvalidBody, b.ID, b.Mass)
	}
	if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
		return fmt.Errorf("%w: body %d has non-finite state", ErrInvalidBody, b.ID)
	}
	return nil
}

// Speed returns |Velocity|.
func (b Body) Speed() float64 {
	return b.Velocity.Norm()
}

// KineticEnergy returns ½m|v|².
func (b Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Velocity.Norm2()
}

// Momentum returns m·v.
func (b Body) Momentum() Vector2D {
	return b.Velocity.Scale(b.Mass)
}

// Overlaps reports whether the two discs interpenetrate.
func (b Body) Overlaps(o Body) bool {
	return b.Position.Distance(o.Position) < b.Radius+o.Radius
}
