// Package export renders lab state and recorded runs as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/beerslab/internal/analysis"
	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/sim"
	"github.com/san-kum/beerslab/internal/tui"
)

const background = "#0a0a0a"

// braille dot bits by row and column
var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasSVG draws every set dot of a Braille canvas as a circle. Each
// cell is 2x4 dots of scale pixels.
func CanvasSVG(canvas *tui.Canvas, scale float64, fill string) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, fill)

	r := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := int(canvas.Grid[row][col] - 0x2800)
			if pattern <= 0 {
				continue
			}
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ConcentrationSVG plots concentration against time. The line takes a
// darker shade of the final solution color and saturated stretches are
// shaded.
func ConcentrationSVG(r *sim.Result, width, height int) (string, error) {
	if r == nil || len(r.Samples) < 2 {
		return "", fmt.Errorf("export: need at least two samples")
	}

	stroke, err := chem.ParseHex(r.Final().Color)
	if err != nil {
		return "", err
	}

	minT, maxT := r.Times[0], r.Times[len(r.Times)-1]
	maxC := 0.0
	for _, s := range r.Samples {
		maxC = max(maxC, s.Concentration)
	}
	if maxT == minT {
		maxT = minT + 1
	}
	if maxC == 0 {
		maxC = 1
	}
	// headroom above the peak
	maxC *= 1.1

	x := func(t float64) float64 { return (t - minT) / (maxT - minT) * float64(width) }
	y := func(c float64) float64 { return float64(height) - c/maxC*float64(height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	for _, iv := range analysis.SaturationIntervals(r) {
		fmt.Fprintf(&sb, "<rect class=\"saturated\" x=\"%.1f\" y=\"0\" width=\"%.1f\" height=\"%d\" fill=\"#ffffff\" fill-opacity=\"0.1\"/>\n",
			x(iv.Start), x(iv.End)-x(iv.Start), height)
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke.Darker().Hex())
	for i, s := range r.Samples {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x(r.Times[i]), y(s.Concentration))
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String(), nil
}

