package metrics

import (
	"math"

	"github.com/san-kum/beerslab/internal/concentration"
)

type PeakConcentration struct {
	name string
	peak float64
}

func NewPeakConcentration() *PeakConcentration {
	return &PeakConcentration{name: "peak_concentration"}
}

func (p *PeakConcentration) Name() string { return p.name }

func (p *PeakConcentration) Observe(s concentration.Snapshot, t float64) {
	p.peak = math.Max(p.peak, s.Concentration)
}

func (p *PeakConcentration) Value() float64 { return p.peak }
func (p *PeakConcentration) Reset()         { p.peak = 0 }

// MeanConcentration is the time-weighted average concentration.
type MeanConcentration struct {
	name     string
	integral float64
	lastT    float64
	lastC    float64
	samples  int
}

func NewMeanConcentration() *MeanConcentration {
	return &MeanConcentration{name: "mean_concentration"}
}

func (m *MeanConcentration) Name() string { return m.name }

func (m *MeanConcentration) Observe(s concentration.Snapshot, t float64) {
	if m.samples > 0 {
		// trapezoid
		m.integral += 0.5 * (m.lastC + s.Concentration) * (t - m.lastT)
	}
	m.lastT = t
	m.lastC = s.Concentration
	m.samples++
}

func (m *MeanConcentration) Value() float64 {
	if m.samples < 2 || m.lastT == 0 {
		return m.lastC
	}
	return m.integral / m.lastT
}

func (m *MeanConcentration) Reset() {
	m.integral = 0
	m.lastT = 0
	m.lastC = 0
	m.samples = 0
}

type PrecipitateMax struct {
	name string
	max  float64
}

func NewPrecipitateMax() *PrecipitateMax {
	return &PrecipitateMax{name: "precipitate_max"}
}

func (p *PrecipitateMax) Name() string { return p.name }

func (p *PrecipitateMax) Observe(s concentration.Snapshot, t float64) {
	p.max = math.Max(p.max, s.PrecipitateAmount)
}

func (p *PrecipitateMax) Value() float64 { return p.max }
func (p *PrecipitateMax) Reset()         { p.max = 0 }
