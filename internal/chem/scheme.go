package chem

// ColorScheme maps concentration to color through three anchor points.
// Below Min the color is MinColor, above Max it is MaxColor; between
// anchors the color is interpolated in RGB.
type ColorScheme struct {
	MinConcentration float64
	MinColor         Color
	MidConcentration float64
	MidColor         Color
	MaxConcentration float64
	MaxColor         Color
}

func (s ColorScheme) ConcentrationToColor(c float64) Color {
	switch {
	case c >= s.MaxConcentration:
		return s.MaxColor
	case c <= s.MinConcentration:
		return s.MinColor
	case c <= s.MidConcentration:
		t := (c - s.MinConcentration) / (s.MidConcentration - s.MinConcentration)
		return s.MinColor.Interpolate(s.MidColor, t)
	default:
		t := (c - s.MidConcentration) / (s.MaxConcentration - s.MidConcentration)
		return s.MidColor.Interpolate(s.MaxColor, t)
	}
}
