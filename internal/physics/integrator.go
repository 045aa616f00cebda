package physics

// Integrate advances b by dt with semi-implicit Euler: velocity first (capped at
// speedCap), then position from the new velocity. PreviousPosition records the
// center before the move.
func Integrate(b Body, acc Vector2D, dt, speedCap float64) Body {
	b.Acceleration = acc
	b.Velocity = b.Velocity.Add(acc.Scale(dt)).ClampNorm(speedCap)
	b.PreviousPosition = b.Position
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
	return b
}
