// Package sim holds the two-block simulation state and its per-frame stepper.
package sim

// SideScale converts a block's mass (kg) into its side length (pixels).
const SideScale = 10

// BodyID identifies one of the two blocks.
type BodyID int

const (
	BodyA BodyID = iota // Starts flush with the left wall
	BodyB               // Starts flush with the right wall
)

// String returns "A" or "B".
func (id BodyID) String() string {
	switch id {
	case BodyA:
		return "A"
	case BodyB:
		return "B"
	default:
		return "?"
	}
}

// Tint is a 0xRRGGBB color used by renderers to draw a block.
type Tint uint32

// Default block tints.
const (
	TintA Tint = 0x00ff00
	TintB Tint = 0x0000ff
)

// RGB splits the tint into its color channels.
func (t Tint) RGB() (r, g, b uint8) {
	return uint8(t >> 16), uint8(t >> 8), uint8(t)
}

// Body is a square block moving along the x-axis.
type Body struct {
	Mass     float64 // Kilograms, always > 0 for a body built by State
	Side     float64 // Side length in pixels, Mass * SideScale
	Position float64 // x of the left edge
	Velocity float64 // Pixels per nominal frame, sign is direction
	Tint     Tint
}

// newBody creates a body whose side is derived from its mass.
func newBody(mass, velocity, position float64, tint Tint) Body {
	return Body{
		Mass:     mass,
		Side:     mass * SideScale,
		Position: position,
		Velocity: velocity,
		Tint:     tint,
	}
}

// Right returns the x of the body's right edge.
func (b Body) Right() float64 {
	return b.Position + b.Side
}
