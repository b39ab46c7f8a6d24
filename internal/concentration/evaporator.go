package concentration

import (
	"fmt"

	"github.com/san-kum/beerslab/internal/property"
)

// Evaporator removes solvent at a user-controlled rate. It is enabled
// while the beaker holds solution; disabling zeroes the rate.
type Evaporator struct {
	MaxEvaporationRate float64 // L/s

	rate    *property.Property[float64]
	enabled *property.Derived[bool]
}

func NewEvaporator(maxRate float64, solution *Solution) (*Evaporator, error) {
	if !(maxRate > 0) {
		return nil, fmt.Errorf("concentration: max evaporation rate must be positive, got %g", maxRate)
	}
	rate, err := property.NewNumber("evaporationRate", 0, property.Range{Min: 0, Max: maxRate})
	if err != nil {
		return nil, err
	}
	e := &Evaporator{MaxEvaporationRate: maxRate, rate: rate}

	e.enabled = property.NewDerived("evaporatorEnabled", func() bool {
		return solution.Volume.Get() > 0
	}, solution.Volume)

	e.enabled.LazyLink(func(enabled, _ bool) {
		if !enabled {
			if err := e.rate.Set(0); err != nil {
				panic(fmt.Sprintf("evaporator: %v", err))
			}
		}
	})
	return e, nil
}

// EvaporationRate is the current rate in L/s.
func (e *Evaporator) EvaporationRate() property.ReadOnly[float64] { return e.rate }
func (e *Evaporator) Enabled() property.ReadOnly[bool]            { return e.enabled }
func (e *Evaporator) Rate() float64                               { return e.rate.Get() }
func (e *Evaporator) IsEnabled() bool                             { return e.enabled.Get() }

// SetEvaporationRate sets the rate. Values outside [0, max] are reported
// as ErrInvalidRange. While disabled the call is a no-op.
func (e *Evaporator) SetEvaporationRate(litersPerSecond float64) error {
	if !e.enabled.Get() {
		return nil
	}
	return e.rate.Set(litersPerSecond)
}

func (e *Evaporator) Reset() error {
	return e.rate.Reset()
}
