package concentration

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/beerslab/internal/property"
)

// Faucet is a flow source or drain. Location is the center of the spout
// output; PipeMinX is where the input pipe starts.
type Faucet struct {
	Location    r2.Vec
	PipeMinX    float64
	SpoutWidth  float64
	MaxFlowRate float64 // L/s

	FlowRate *property.Property[float64]
	Enabled  *property.Property[bool]
}

func NewFaucet(location r2.Vec, pipeMinX, spoutWidth, maxFlowRate float64) (*Faucet, error) {
	if !(maxFlowRate > 0) {
		return nil, fmt.Errorf("concentration: max flow rate must be positive, got %g", maxFlowRate)
	}
	flow, err := property.NewNumber("flowRate", 0, property.Range{Min: 0, Max: maxFlowRate})
	if err != nil {
		return nil, err
	}
	f := &Faucet{
		Location:    location,
		PipeMinX:    pipeMinX,
		SpoutWidth:  spoutWidth,
		MaxFlowRate: maxFlowRate,
		FlowRate:    flow,
		Enabled:     property.New(true),
	}
	f.Enabled.LazyLink(func(enabled, _ bool) {
		if !enabled {
			if err := f.FlowRate.Set(0); err != nil {
				panic(fmt.Sprintf("faucet: %v", err))
			}
		}
	})
	return f, nil
}

// SetFlowRate sets the rate, or does nothing while disabled.
func (f *Faucet) SetFlowRate(litersPerSecond float64) error {
	if !f.Enabled.Get() {
		return nil
	}
	return f.FlowRate.Set(litersPerSecond)
}

func (f *Faucet) Reset() error {
	if err := f.FlowRate.Reset(); err != nil {
		return err
	}
	return f.Enabled.Reset()
}
