package population

import (
	"encoding/hex"
	"fmt"

	"particle-sim/internal/physics"
)

// DefaultRadius is used by a BodyDef that leaves radius out.
const DefaultRadius = 50.0

// BodyDef is the YAML definition of one body with a fixed initial state.
// Mass defaults to 1 and radius to DefaultRadius when omitted.
type BodyDef struct {
	Position [2]float64 `yaml:"position,flow"`
	Velocity [2]float64 `yaml:"velocity,flow"`
	Radius   float64    `yaml:"radius,omitempty"`
	Mass     float64    `yaml:"mass,omitempty"`
	Color    string     `yaml:"color,omitempty"`
}

// DefaultScene is a single red body bouncing diagonally from the top-left corner.
func DefaultScene() []BodyDef {
	return []BodyDef{{
		Position: [2]float64{50, 50},
		Velocity: [2]float64{1, 1},
		Radius:   DefaultRadius,
		Mass:     1,
		Color:    "#ff0000",
	}}
}

// FromDefs converts definitions to bodies with ids 0..len(defs)-1.
func FromDefs(defs []BodyDef) ([]physics.Body, error) {
	bodies := make([]physics.Body, 0, len(defs))
	for i, d := range defs {
		r := d.Radius
		if r == 0 {
			r = DefaultRadius
		}
		m := d.Mass
		if m == 0 {
			m = 1
		}
		c, err := ParseColor(d.Color)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		b, err := physics.NewBody(i,
			physics.Vec(d.Position[0], d.Position[1]),
			physics.Vec(d.Velocity[0], d.Velocity[1]),
			r, m, c)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". An empty string is opaque white.
func ParseColor(s string) (physics.Color, error) {
	if s == "" {
		return physics.Color{1, 1, 1, 1}, nil
	}
	if (len(s) != 7 && len(s) != 9) || s[0] != '#' {
		return physics.Color{}, fmt.Errorf("invalid color %q", s)
	}
	ch, err := hex.DecodeString(s[1:])
	if err != nil {
		return physics.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(ch) == 3 {
		ch = append(ch, 255)
	}
	return physics.Color{float32(ch[0]) / 255, float32(ch[1]) / 255, float32(ch[2]) / 255, float32(ch[3]) / 255}, nil
}

// ToDefs converts bodies back to definitions, e.g. to save a final state as a new
// starting scene.
func ToDefs(bodies []physics.Body) []BodyDef {
	defs := make([]BodyDef, len(bodies))
	for i, b := range bodies {
		defs[i] = BodyDef{
			Position: [2]float64{b.Position.X, b.Position.Y},
			Velocity: [2]float64{b.Velocity.X, b.Velocity.Y},
			Radius:   b.Radius,
			Mass:     b.Mass,
			Color:    FormatColor(b.Color),
		}
	}
	return defs
}

// FormatColor is the inverse of ParseColor. Alpha is omitted when opaque.
func FormatColor(c physics.Color) string {
	var ch [4]uint8
	for i, f := range c {
		ch[i] = uint8(min(max(f, 0), 1)*255 + 0.5)
	}
	if ch[3] == 255 {
		return fmt.Sprintf("#%02x%02x%02x", ch[0], ch[1], ch[2])
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", ch[0], ch[1], ch[2], ch[3])
}
