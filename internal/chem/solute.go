package chem

const (
	DefaultParticleSize     = 5.0
	DefaultParticlesPerMole = 200.0
)

// Solute describes a dissolvable species. Solutes are selected by
// reference and never copied or mutated after construction.
type Solute struct {
	Key     string
	Name    string
	Formula string

	MolarMass                  float64 // g/mol
	Density                    float64 // g/L, solid form
	SaturatedConcentration     float64 // mol/L
	StockSolutionConcentration float64 // mol/L, dropper contents

	ColorScheme   ColorScheme
	ParticleColor Color
	ParticleSize  float64
	// ParticlesPerMole is a visualization density, not a physical constant.
	ParticlesPerMole float64
}

// SoluteOptions lists every optional Solute field with its default.
type SoluteOptions struct {
	ParticleColor    *Color  // defaults to the scheme's max color
	ParticleSize     float64 // defaults to DefaultParticleSize
	ParticlesPerMole float64 // defaults to DefaultParticlesPerMole
}

func NewSolute(key, name, formula string, molarMass, density, stock float64, scheme ColorScheme, opts SoluteOptions) *Solute {
	s := &Solute{
		Key:                        key,
		Name:                       name,
		Formula:                    formula,
		MolarMass:                  molarMass,
		Density:                    density,
		SaturatedConcentration:     scheme.MaxConcentration,
		StockSolutionConcentration: stock,
		ColorScheme:                scheme,
		ParticleColor:              scheme.MaxColor,
		ParticleSize:               DefaultParticleSize,
		ParticlesPerMole:           DefaultParticlesPerMole,
	}
	if opts.ParticleColor != nil {
		s.ParticleColor = *opts.ParticleColor
	}
	if opts.ParticleSize > 0 {
		s.ParticleSize = opts.ParticleSize
	}
	if opts.ParticlesPerMole > 0 {
		s.ParticlesPerMole = opts.ParticlesPerMole
	}
	return s
}

func (s *Solute) ConcentrationToColor(c float64) Color {
	return s.ColorScheme.ConcentrationToColor(c)
}

// MolesToGrams converts an amount of this solute to mass.
func (s *Solute) MolesToGrams(mol float64) float64 {
	return mol * s.MolarMass
}

func (s *Solute) String() string {
	return s.Key
}

// StockColor is the color of the dropper's stock solution.
func StockColor(solvent *Solvent, solute *Solute) Color {
	return SolutionColor(solvent, solute, solute.StockSolutionConcentration)
}

// SolutionColor is the solvent color at zero concentration and the
// solute's mapped color otherwise.
func SolutionColor(solvent *Solvent, solute *Solute, concentration float64) Color {
	if concentration > 0 {
		return solute.ConcentrationToColor(concentration)
	}
	return solvent.Color
}
