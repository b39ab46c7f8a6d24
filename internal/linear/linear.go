// Package linear maps between two ranges with a straight line.
package linear

// Function maps x1→y1 and x2→y2, optionally clamping to [y1, y2].
type Function struct {
	X1, Y1 float64
	X2, Y2 float64
	Clamp  bool
}

func New(x1, y1, x2, y2 float64, clamp bool) Function {
	return Function{X1: x1, Y1: y1, X2: x2, Y2: y2, Clamp: clamp}
}

// Evaluate returns y for x.
func (f Function) Evaluate(x float64) float64 {
	y := f.Y1 + (f.Y2-f.Y1)*(x-f.X1)/(f.X2-f.X1)
	if f.Clamp {
		y = clamp(y, f.Y1, f.Y2)
	}
	return y
}

// Inverse returns x for y, clamping to [x1, x2] when the function clamps.
func (f Function) Inverse(y float64) float64 {
	x := f.X1 + (f.X2-f.X1)*(y-f.Y1)/(f.Y2-f.Y1)
	if f.Clamp {
		x = clamp(x, f.X1, f.X2)
	}
	return x
}

func clamp(v, a, b float64) float64 {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
