package tui

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/beerslab/internal/concentration"
)

// viewport maps model coordinates (y grows downward) onto canvas dots.
type viewport struct {
	min, max r2.Vec
	w, h     int
}

func newViewport(c *Canvas) viewport {
	return viewport{
		min: r2.Vec{X: 0, Y: 150},
		max: r2.Vec{X: 850, Y: 650},
		w:   c.Width * 2,
		h:   c.Height * 4,
	}
}

func (v viewport) dot(p r2.Vec) (int, int) {
	x := (p.X - v.min.X) / (v.max.X - v.min.X) * float64(v.w-1)
	y := (p.Y - v.min.Y) / (v.max.Y - v.min.Y) * float64(v.h-1)
	return int(x + 0.5), int(y + 0.5)
}

// band is the range of cell rows covered by the solution, inclusive.
// An empty beaker has top > bottom.
type band struct {
	top, bottom int
}

// drawScene draws the beaker, solution, precipitate and active
// dispensers of m onto c.
func drawScene(c *Canvas, m *concentration.Model) band {
	c.Clear()
	v := newViewport(c)
	b := m.Beaker

	bottom := b.Location.Y
	top := bottom - b.Size.Height
	lx, ty := v.dot(r2.Vec{X: b.Left(), Y: top})
	rx, by := v.dot(r2.Vec{X: b.Right(), Y: bottom})
	c.DrawLine(lx, ty, lx, by)
	c.DrawLine(rx, ty, rx, by)
	c.DrawLine(lx, by, rx, by)

	level := band{top: 1, bottom: 0}
	volume := m.Solution.Volume.Get()
	if volume > 0 {
		_, sy := v.dot(r2.Vec{Y: bottom - b.SolutionHeight(volume)})
		for y := sy; y < by; y++ {
			for x := lx + 1; x < rx; x++ {
				if (x+y)%2 == 0 {
					c.Set(x, y)
				}
			}
		}
		level = band{top: sy / 4, bottom: by / 4}

		if m.Evaporator.Rate() > 0 {
			for x := lx + 3; x < rx-2; x += 6 {
				c.Set(x, sy-2)
				c.Set(x+1, sy-3)
			}
		}
	}

	for _, p := range m.Precipitate.Particles() {
		px, py := v.dot(r2.Add(b.Location, p.Offset))
		c.FillRect(px-1, py-2, px, py-1)
	}

	drawFaucet(c, v, m.SolventFaucet, by)
	drawFaucet(c, v, m.DrainFaucet, -1)

	if m.Shaker.Visible.Get() {
		sx, sy := v.dot(m.Shaker.Location)
		c.FillRect(sx-2, sy-4, sx+2, sy)
		if m.Shaker.DispensingRate.Get() > 0 {
			for y := sy + 3; y < ty; y += 3 {
				c.Set(sx-1, y)
				c.Set(sx+1, y+1)
			}
		}
	}
	if m.Dropper.Visible.Get() {
		dx, dy := v.dot(m.Dropper.Location)
		c.DrawLine(dx, dy-8, dx, dy)
		if m.Dropper.FlowRate.Get() > 0 {
			for y := dy + 3; y < ty; y += 4 {
				c.Set(dx, y)
			}
		}
	}
	return level
}

// drawFaucet draws the spout and, while flowing, a stream whose width
// follows the flow rate. A negative floor draws a short outflow.
func drawFaucet(c *Canvas, v viewport, f *concentration.Faucet, floor int) {
	fx, fy := v.dot(f.Location)
	px, _ := v.dot(r2.Vec{X: f.PipeMinX})
	if px < 0 {
		px = 0
	}
	c.DrawLine(px, fy-2, fx, fy-2)
	c.DrawLine(fx, fy-2, fx, fy)

	rate := f.FlowRate.Get()
	if rate <= 0 || f.MaxFlowRate <= 0 {
		return
	}
	half := int(rate / f.MaxFlowRate * 2)
	end := floor
	if end < 0 {
		end = fy + 6
	}
	for x := fx - half; x <= fx+half; x++ {
		c.DrawLine(x, fy+1, x, end)
	}
}

// RenderScene draws m onto a new w x h cell canvas.
func RenderScene(m *concentration.Model, w, h int) *Canvas {
	c := NewCanvas(w, h)
	drawScene(c, m)
	return c
}
