package concentration

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/beerslab/internal/property"
)

// Shaker dispenses solid solute while it is being shaken.
type Shaker struct {
	Location          r2.Vec
	MaxDispensingRate float64 // mol/s

	Visible    *property.Property[bool]
	Empty      *property.Property[bool]
	Dispensing *property.Property[bool]

	// DispensingRate is MaxDispensingRate while shaking a visible,
	// non-empty shaker, else 0.
	DispensingRate *property.Derived[float64]
}

func NewShaker(location r2.Vec, maxDispensingRate float64, visible bool) *Shaker {
	s := &Shaker{
		Location:          location,
		MaxDispensingRate: maxDispensingRate,
		Visible:           property.New(visible),
		Empty:             property.New(false),
		Dispensing:        property.New(false),
	}
	s.DispensingRate = property.NewDerived("shakerDispensingRate", func() float64 {
		if s.Visible.Get() && s.Dispensing.Get() && !s.Empty.Get() {
			return s.MaxDispensingRate
		}
		return 0
	}, s.Visible, s.Empty, s.Dispensing)
	return s
}

func (s *Shaker) Reset() error {
	if err := s.Dispensing.Reset(); err != nil {
		return err
	}
	if err := s.Empty.Reset(); err != nil {
		return err
	}
	return s.Visible.Reset()
}

// Dropper dispenses stock solution of the current solute.
type Dropper struct {
	Location    r2.Vec
	MaxFlowRate float64 // L/s

	Visible    *property.Property[bool]
	Empty      *property.Property[bool]
	Enabled    *property.Property[bool]
	Dispensing *property.Property[bool]

	FlowRate *property.Derived[float64]
}

func NewDropper(location r2.Vec, maxFlowRate float64, visible bool) *Dropper {
	d := &Dropper{
		Location:    location,
		MaxFlowRate: maxFlowRate,
		Visible:     property.New(visible),
		Empty:       property.New(false),
		Enabled:     property.New(true),
		Dispensing:  property.New(false),
	}
	d.FlowRate = property.NewDerived("dropperFlowRate", func() float64 {
		if d.Visible.Get() && d.Enabled.Get() && !d.Empty.Get() && d.Dispensing.Get() {
			return d.MaxFlowRate
		}
		return 0
	}, d.Visible, d.Enabled, d.Empty, d.Dispensing)
	return d
}

func (d *Dropper) Reset() error {
	for _, p := range []*property.Property[bool]{d.Dispensing, d.Enabled, d.Empty, d.Visible} {
		if err := p.Reset(); err != nil {
			return err
		}
	}
	return nil
}
