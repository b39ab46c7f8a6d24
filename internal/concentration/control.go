package concentration

import (
	"math"

	"github.com/san-kum/beerslab/internal/linear"
	"github.com/san-kum/beerslab/internal/property"
)

// HandleOrientationMin and HandleOrientationMax are the off and full-on
// handle orientations, in radians.
const (
	HandleOrientationMin = -math.Pi / 4
	HandleOrientationMax = 0.0
)

// FaucetControl turns a 1-D drag coordinate into a faucet flow rate. The
// coordinate passes through a chain of clamped linear maps; the last one
// produces the flow rate.
type FaucetControl struct {
	faucet *Faucet
	stages []linear.Function

	// Input follows the faucet's flow rate, including programmatic
	// changes such as reset.
	Input *property.Derived[float64]
}

// NewHandleControl maps handle orientation in [-π/4, 0] to [0, max].
func NewHandleControl(f *Faucet) *FaucetControl {
	return newFaucetControl(f,
		linear.New(HandleOrientationMin, 0, HandleOrientationMax, f.MaxFlowRate, true))
}

// NewLeverControl maps the lever's y-coordinate to an orientation and
// the orientation to a flow rate. offY is the off position.
func NewLeverControl(f *Faucet, offY, onY float64) *FaucetControl {
	return newFaucetControl(f,
		linear.New(offY, HandleOrientationMin, onY, HandleOrientationMax, true),
		linear.New(HandleOrientationMin, 0, HandleOrientationMax, f.MaxFlowRate, true))
}

func newFaucetControl(f *Faucet, stages ...linear.Function) *FaucetControl {
	c := &FaucetControl{faucet: f, stages: stages}
	c.Input = property.NewDerived("faucetInput", func() float64 {
		return c.InputOf(f.FlowRate.Get())
	}, f.FlowRate)
	return c
}

func (c *FaucetControl) Faucet() *Faucet { return c.faucet }

// FlowRateOf evaluates the mapping for an input coordinate.
func (c *FaucetControl) FlowRateOf(input float64) float64 {
	v := input
	for _, s := range c.stages {
		v = s.Evaluate(v)
	}
	return v
}

// InputOf is the inverse of FlowRateOf.
func (c *FaucetControl) InputOf(flowRate float64) float64 {
	v := flowRate
	for i := len(c.stages) - 1; i >= 0; i-- {
		v = c.stages[i].Inverse(v)
	}
	return v
}

// Drag sets the flow rate for the given input. Ignored while the faucet
// is disabled.
func (c *FaucetControl) Drag(input float64) error {
	if !c.faucet.Enabled.Get() {
		return nil
	}
	return c.faucet.FlowRate.Set(c.FlowRateOf(input))
}

// Release ends the gesture and shuts the faucet off.
func (c *FaucetControl) Release() error {
	return c.faucet.FlowRate.Set(0)
}
