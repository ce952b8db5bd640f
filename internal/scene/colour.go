package scene

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Colour is an RGBA colour with double components.
// The zero-argument default is opaque black, see DefaultColour.
type Colour struct {
	R, G, B, A float64
}

// DefaultColour is opaque black (r=g=b=0, a=1).
var DefaultColour = Colour{A: 1}

// RGB returns an opaque colour.
func RGB(r, g, b float64) Colour {
	return Colour{R: r, G: g, B: b, A: 1}
}

// Float32 returns the colour as four GPU channels.
func (c Colour) Float32() [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

// Hex formats the RGB part as #rrggbb, clamping out-of-gamut components.
func (c Colour) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}
