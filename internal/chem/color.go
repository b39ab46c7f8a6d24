package chem

import "github.com/lucasb-eyer/go-colorful"

// Color is an opaque 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

var (
	White  = RGB(255, 255, 255)
	Yellow = RGB(255, 255, 0)
	Black  = RGB(0, 0, 0)
)

func (c Color) toColorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b}
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	return c.toColorful().Hex()
}

// Interpolate blends linearly in RGB space; t=0 is c, t=1 is to.
func (c Color) Interpolate(to Color, t float64) Color {
	return fromColorful(c.toColorful().BlendRgb(to.toColorful(), t))
}

// Darker scales every channel by 0.7.
func (c Color) Darker() Color {
	const factor = 0.7
	return Color{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
	}
}

// ParseHex parses #rrggbb.
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, err
	}
	return fromColorful(c), nil
}
