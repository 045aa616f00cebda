package physics

import "math"

// Wall is a bit set of the boundaries a body touched in one clamp.
type Wall uint8

const (
	WallBottom Wall = 1 << iota
	WallTop
	WallRight
	WallLeft
)

// ClampToBounds keeps b inside [r, width-r] × [r, height-r]. The half-plane tests
// run bottom, top, right, left; each violation puts the center back on the wall
// and points that velocity component into the arena. Touching the bottom or right
// wall counts as a hit; the top and left walls need actual penetration.
func ClampToBounds(b Body, width, height float64) (Body, Wall) {
	var hit Wall
	r := b.Radius
	// Not a plain negation: a body already moving inward keeps its component, so a
	// clamped body never bounces back out on the next tick.
	if b.Position.Y+r >= height {
		b.Position.Y = height - r
		b.Velocity.Y = -math.Abs(b.Velocity.Y)
		hit |= WallBottom
	}
	if b.Position.Y-r < 0 {
		b.Position.Y = r
		b.Velocity.Y = math.Abs(b.Velocity.Y)
		hit |= WallTop
	}
	if b.Position.X+r >= width {
		b.Position.X = width - r
		b.Velocity.X = -math.Abs(b.Velocity.X)
		hit |= WallRight
	}
	if b.Position.X-r < 0 {
		b.Position.X = r
		b.Velocity.X = math.Abs(b.Velocity.X)
		hit |= WallLeft
	}
	return b, hit
}
