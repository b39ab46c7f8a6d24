package control

import (
	"math"

	"github.com/san-kum/beerslab/internal/concentration"
)

// Regulator steers the solution toward the PID target concentration.
// A positive output evaporates water, a negative one adds solvent, both
// clamped to the device maximum. It never drains, since draining does not
// change the concentration.
type Regulator struct {
	pid *PID
}

func NewRegulator(pid *PID) *Regulator {
	return &Regulator{pid: pid}
}

func (r *Regulator) PID() *PID { return r.pid }

// Control sets the faucet and evaporator for the next step. Devices that
// are disabled ignore the request, so a full beaker stops dilution and an
// empty one stops evaporation.
func (r *Regulator) Control(m *concentration.Model, t float64) error {
	u := r.pid.Compute(m.Solution.Concentration.Get(), t)

	inflow, evaporation := 0.0, 0.0
	if u > 0 {
		evaporation = math.Min(u, m.Evaporator.MaxEvaporationRate)
	} else {
		inflow = math.Min(-u, m.SolventFaucet.MaxFlowRate)
	}

	if err := m.SolventFaucet.SetFlowRate(inflow); err != nil {
		return err
	}
	return m.Evaporator.SetEvaporationRate(evaporation)
}

func (r *Regulator) Reset() {
	r.pid.Reset()
}
