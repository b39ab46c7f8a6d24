package concentration

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/property"
)

// SolutionConfig enumerates every Solution option.
type SolutionConfig struct {
	Solvent      *chem.Solvent // defaults to chem.Water
	Solute       *chem.Solute  // required
	SoluteAmount float64       // mol
	Volume       float64       // L
	// MaxVolume is the beaker capacity in liters. Defaults to 1.
	MaxVolume float64
	// MaxSoluteAmount bounds SoluteAmount in mol. Zero means unbounded.
	MaxSoluteAmount float64
}

// Solution is a solvent with some amount of one solute in it.
type Solution struct {
	Solvent *chem.Solvent

	Solute       *property.Property[*chem.Solute]
	SoluteAmount *property.Property[float64] // mol
	Volume       *property.Property[float64] // L

	PrecipitateAmount *property.Derived[float64] // mol
	Concentration     *property.Derived[float64] // mol/L
	Saturated         *property.Derived[bool]
	Color             *property.Derived[chem.Color]

	maxVolume     float64
	deferring     bool
	deferralEnded property.Emitter[struct{}]
}

// NewSolution creates a solution of water in a 1 L beaker.
func NewSolution(solute *chem.Solute, soluteAmount, volume float64) (*Solution, error) {
	return NewSolutionWithConfig(SolutionConfig{
		Solute:       solute,
		SoluteAmount: soluteAmount,
		Volume:       volume,
	})
}

func NewSolutionWithConfig(cfg SolutionConfig) (*Solution, error) {
	if cfg.Solute == nil {
		return nil, errors.New("concentration: solution requires a solute")
	}
	if cfg.Solvent == nil {
		cfg.Solvent = chem.Water
	}
	if cfg.MaxVolume == 0 {
		cfg.MaxVolume = 1
	}
	if !(cfg.MaxVolume > 0) {
		return nil, fmt.Errorf("concentration: max volume must be positive, got %g", cfg.MaxVolume)
	}

	s := &Solution{Solvent: cfg.Solvent, maxVolume: cfg.MaxVolume}

	var err error
	s.Solute, err = property.NewWithOptions(cfg.Solute, property.Options[*chem.Solute]{
		Name: "solute",
		Validate: func(v *chem.Solute) error {
			if v == nil {
				return fmt.Errorf("%w: nil", ErrUnknownSolute)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	amountCheck := property.NonNegative("soluteAmount")
	if cfg.MaxSoluteAmount > 0 {
		amountCheck = property.Range{Min: 0, Max: cfg.MaxSoluteAmount}.Validator("soluteAmount")
	}
	s.SoluteAmount, err = property.NewWithOptions(cfg.SoluteAmount, property.Options[float64]{
		Name:     "soluteAmount",
		Validate: amountCheck,
	})
	if err != nil {
		return nil, err
	}

	s.Volume, err = property.NewNumber("volume", cfg.Volume, property.Range{Min: 0, Max: cfg.MaxVolume})
	if err != nil {
		return nil, err
	}

	// Link order fixes recompute order: precipitate and concentration
	// before saturated, and color after concentration.
	s.PrecipitateAmount = property.NewDerived("precipitateAmount", s.computePrecipitateAmount,
		s.Solute, s.SoluteAmount, s.Volume)
	s.Concentration = property.NewDerived("concentration", s.computeConcentration,
		s.Solute, s.SoluteAmount, s.Volume)
	s.Saturated = property.NewDerived("saturated", s.computeSaturated,
		s.Solute, s.SoluteAmount, s.Volume)
	s.Color = property.NewDerived("color", s.computeColor,
		s.Solute, s.Concentration)

	return s, nil
}

func (s *Solution) computePrecipitateAmount() float64 {
	if s.deferring {
		return s.PrecipitateAmount.Get()
	}
	v := s.Volume.Get()
	return math.Max(0, s.SoluteAmount.Get()-v*s.SaturatedConcentration())
}

func (s *Solution) computeConcentration() float64 {
	v := s.Volume.Get()
	if v > 0 {
		return math.Min(s.SaturatedConcentration(), s.SoluteAmount.Get()/v)
	}
	return 0
}

func (s *Solution) computeSaturated() bool {
	v := s.Volume.Get()
	return v > 0 && s.SoluteAmount.Get()/v > s.SaturatedConcentration()
}

func (s *Solution) computeColor() chem.Color {
	return chem.SolutionColor(s.Solvent, s.Solute.Get(), s.Concentration.Get())
}

func (s *Solution) SetSolute(solute *chem.Solute) error { return s.Solute.Set(solute) }
func (s *Solution) SetSoluteAmount(mol float64) error   { return s.SoluteAmount.Set(mol) }
func (s *Solution) SetVolume(liters float64) error      { return s.Volume.Set(liters) }

// MaxVolume returns the beaker capacity in liters.
func (s *Solution) MaxVolume() float64 {
	return s.maxVolume
}

// SaturatedConcentration of the current solute, in mol/L.
func (s *Solution) SaturatedConcentration() float64 {
	return s.Solute.Get().SaturatedConcentration
}

// IsSaturated is shorthand for Saturated.Get.
func (s *Solution) IsSaturated() bool {
	return s.Saturated.Get()
}

// DissolvedAmount is the amount of solute in solution, in mol.
func (s *Solution) DissolvedAmount() float64 {
	return s.Concentration.Get() * s.Volume.Get()
}

// NumberOfPrecipitateParticles converts the precipitate amount to a
// particle count. Any non-zero precipitate yields at least one particle.
func (s *Solution) NumberOfPrecipitateParticles() int {
	amount := s.PrecipitateAmount.Get()
	n := int(math.Floor(s.Solute.Get().ParticlesPerMole*amount + 0.5))
	if n == 0 && amount > 0 {
		n = 1
	}
	return n
}

// PercentConcentration is the mass fraction of dissolved solute, in
// percent. It is 0 for an empty beaker.
func (s *Solution) PercentConcentration() float64 {
	v := s.Volume.Get()
	if v <= 0 {
		return 0
	}
	soluteGrams := s.Solute.Get().MolesToGrams(s.SoluteAmount.Get() - s.PrecipitateAmount.Get())
	solventGrams := v * s.Solvent.Density
	total := soluteGrams + solventGrams
	if total <= 0 {
		return 0
	}
	return 100 * soluteGrams / total
}

// BeginDeferral opens a window in which the precipitate amount keeps its
// cached value. Windows do not nest.
func (s *Solution) BeginDeferral() error {
	if s.deferring {
		return fmt.Errorf("%w: deferral already open", ErrInconsistentDeferral)
	}
	s.deferring = true
	return nil
}

// EndDeferral closes the window and recomputes the precipitate amount
// once from the final volume and solute amount.
func (s *Solution) EndDeferral() error {
	if !s.deferring {
		return fmt.Errorf("%w: end without begin", ErrInconsistentDeferral)
	}
	s.deferring = false
	if err := s.PrecipitateAmount.Recompute(); err != nil {
		return err
	}
	s.deferralEnded.Emit(struct{}{})
	return nil
}

// OnDeferralEnd registers fn to run after each deferral window closes and
// the precipitate amount is current again.
func (s *Solution) OnDeferralEnd(fn func()) property.ListenerID {
	return s.deferralEnded.AddListener(func(struct{}) { fn() })
}

func (s *Solution) UnlinkDeferralEnd(id property.ListenerID) bool {
	return s.deferralEnded.RemoveListener(id)
}

// Deferred runs fn inside a deferral window. The window is closed even
// when fn fails; fn's error takes precedence.
func (s *Solution) Deferred(fn func() error) error {
	if err := s.BeginDeferral(); err != nil {
		return err
	}
	fnErr := fn()
	endErr := s.EndDeferral()
	if fnErr != nil {
		return fnErr
	}
	return endErr
}

func (s *Solution) Deferring() bool {
	return s.deferring
}

// Reset restores the initial solute, solute amount and volume.
func (s *Solution) Reset() error {
	if s.deferring {
		return fmt.Errorf("%w: reset inside deferral window", ErrInconsistentDeferral)
	}
	return s.Deferred(func() error {
		return errors.Join(s.Solute.Reset(), s.SoluteAmount.Reset(), s.Volume.Reset())
	})
}

func (s *Solution) String() string {
	return fmt.Sprintf("solution[%s %.4g mol in %.4g L, c=%.4g mol/L]",
		s.Solute.Get(), s.SoluteAmount.Get(), s.Volume.Get(), s.Concentration.Get())
}
