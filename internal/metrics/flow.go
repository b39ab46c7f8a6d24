package metrics

import "github.com/san-kum/beerslab/internal/concentration"

// SolventUsed integrates the solvent faucet's flow, in liters. The rate
// recorded with a sample is the rate that produced it.
type SolventUsed struct {
	name    string
	total   float64
	lastT   float64
	samples int
}

func NewSolventUsed() *SolventUsed {
	return &SolventUsed{name: "solvent_used"}
}

func (s *SolventUsed) Name() string { return s.name }

func (s *SolventUsed) Observe(snap concentration.Snapshot, t float64) {
	if s.samples > 0 {
		s.total += snap.SolventFlowRate * (t - s.lastT)
	}
	s.lastT = t
	s.samples++
}

func (s *SolventUsed) Value() float64 { return s.total }

func (s *SolventUsed) Reset() {
	s.total = 0
	s.lastT = 0
	s.samples = 0
}
