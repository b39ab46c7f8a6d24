package concentration

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/property"
)

const (
	DefaultBeakerVolume       = 1.0  // L
	DefaultInitialVolume      = 0.5  // L
	DefaultMaxSoluteAmount    = 5.0  // mol
	DefaultMaxEvaporationRate = 0.25 // L/s
	DefaultMaxInflowRate      = 0.25 // L/s
	DefaultMaxOutflowRate     = 0.25 // L/s
	DefaultMaxDropperFlowRate = 0.05 // L/s
	DefaultMaxShakerRate      = 0.2  // mol/s
)

// SoluteForm selects how solute is added.
type SoluteForm string

const (
	Solid  SoluteForm = "solid"  // shaker
	Liquid SoluteForm = "liquid" // dropper
)

func ParseSoluteForm(s string) (SoluteForm, error) {
	switch SoluteForm(s) {
	case Solid, Liquid:
		return SoluteForm(s), nil
	}
	return "", fmt.Errorf("concentration: unknown solute form %q", s)
}

// ModelConfig enumerates every Model option. Start from
// DefaultModelConfig; zero rates and capacities fall back to defaults.
type ModelConfig struct {
	Catalog      *chem.Catalog
	Solute       *chem.Solute // defaults to the first catalog entry
	SoluteAmount float64      // mol
	Volume       float64      // L
	SoluteForm   SoluteForm

	BeakerVolume       float64
	MaxSoluteAmount    float64
	MaxEvaporationRate float64
	MaxInflowRate      float64
	MaxOutflowRate     float64
	MaxDropperFlowRate float64
	MaxShakerRate      float64

	Rand   *rand.Rand
	Logger logrus.FieldLogger
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Catalog:            chem.DefaultCatalog(),
		Volume:             DefaultInitialVolume,
		SoluteForm:         Solid,
		BeakerVolume:       DefaultBeakerVolume,
		MaxSoluteAmount:    DefaultMaxSoluteAmount,
		MaxEvaporationRate: DefaultMaxEvaporationRate,
		MaxInflowRate:      DefaultMaxInflowRate,
		MaxOutflowRate:     DefaultMaxOutflowRate,
		MaxDropperFlowRate: DefaultMaxDropperFlowRate,
		MaxShakerRate:      DefaultMaxShakerRate,
	}
}

func (c *ModelConfig) applyDefaults() {
	d := DefaultModelConfig()
	if c.Catalog == nil {
		c.Catalog = d.Catalog
	}
	if c.Solute == nil && c.Catalog.Len() > 0 {
		c.Solute = c.Catalog.All()[0]
	}
	if c.SoluteForm == "" {
		c.SoluteForm = d.SoluteForm
	}
	defaultRate(&c.BeakerVolume, d.BeakerVolume)
	defaultRate(&c.MaxSoluteAmount, d.MaxSoluteAmount)
	defaultRate(&c.MaxEvaporationRate, d.MaxEvaporationRate)
	defaultRate(&c.MaxInflowRate, d.MaxInflowRate)
	defaultRate(&c.MaxOutflowRate, d.MaxOutflowRate)
	defaultRate(&c.MaxDropperFlowRate, d.MaxDropperFlowRate)
	defaultRate(&c.MaxShakerRate, d.MaxShakerRate)
	if c.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.Logger = l
	}
}

func defaultRate(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

// Model is the Concentration screen: a beaker, two faucets, an
// evaporator, a shaker and a dropper acting on one solution.
type Model struct {
	Solution      *Solution
	Beaker        *Beaker
	Precipitate   *Precipitate
	SolventFaucet *Faucet
	DrainFaucet   *Faucet
	Evaporator    *Evaporator
	Shaker        *Shaker
	Dropper       *Dropper
	SoluteForm    *property.Property[SoluteForm]

	catalog         *chem.Catalog
	solutes         []*chem.Solute
	maxSoluteAmount float64
	log             logrus.FieldLogger
}

func NewModel(cfg ModelConfig) (*Model, error) {
	cfg.applyDefaults()
	if cfg.Solute == nil {
		return nil, errors.New("concentration: empty solute catalog")
	}
	if !cfg.Catalog.Contains(cfg.Solute) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSolute, cfg.Solute)
	}
	if _, err := ParseSoluteForm(string(cfg.SoluteForm)); err != nil {
		return nil, err
	}

	m := &Model{
		catalog:         cfg.Catalog,
		solutes:         cfg.Catalog.All(),
		maxSoluteAmount: cfg.MaxSoluteAmount,
		log:             cfg.Logger,
	}

	var err error
	m.Solution, err = NewSolutionWithConfig(SolutionConfig{
		Solute:          cfg.Solute,
		SoluteAmount:    cfg.SoluteAmount,
		Volume:          cfg.Volume,
		MaxVolume:       cfg.BeakerVolume,
		MaxSoluteAmount: cfg.MaxSoluteAmount,
	})
	if err != nil {
		return nil, err
	}
	m.Beaker = NewBeaker(r2.Vec{X: 350, Y: 550}, Size{Width: 600, Height: 300}, cfg.BeakerVolume)
	m.Precipitate = NewPrecipitate(m.Solution, m.Beaker, PrecipitateConfig{Rand: cfg.Rand})

	if m.SolventFaucet, err = NewFaucet(r2.Vec{X: 155, Y: 220}, -400, 45, cfg.MaxInflowRate); err != nil {
		return nil, err
	}
	if m.DrainFaucet, err = NewFaucet(r2.Vec{X: 750, Y: 630}, m.Beaker.Right(), 45, cfg.MaxOutflowRate); err != nil {
		return nil, err
	}
	if m.Evaporator, err = NewEvaporator(cfg.MaxEvaporationRate, m.Solution); err != nil {
		return nil, err
	}
	m.Shaker = NewShaker(r2.Vec{X: 340, Y: 170}, cfg.MaxShakerRate, cfg.SoluteForm == Solid)
	m.Dropper = NewDropper(r2.Vec{X: 410, Y: 225}, cfg.MaxDropperFlowRate, cfg.SoluteForm == Liquid)
	m.SoluteForm = property.New(cfg.SoluteForm)

	m.wire()
	return m, nil
}

func (m *Model) wire() {
	s := m.Solution
	s.Volume.Link(func(v, _ float64) {
		must(m.SolventFaucet.Enabled.Set(v < s.MaxVolume()))
		must(m.DrainFaucet.Enabled.Set(v > 0))
		m.updateDropperEnabled()
	})
	s.SoluteAmount.Link(func(a, _ float64) {
		empty := a >= m.maxSoluteAmount
		must(m.Shaker.Empty.Set(empty))
		must(m.Dropper.Empty.Set(empty))
		m.updateDropperEnabled()
	})
	s.Saturated.LazyLink(func(saturated, _ bool) {
		m.updateDropperEnabled()
		m.log.WithFields(logrus.Fields{
			"solute":        s.Solute.Get().Key,
			"volume":        s.Volume.Get(),
			"concentration": s.Concentration.Get(),
			"saturated":     saturated,
		}).Debug("saturation changed")
	})
	s.Solute.LazyLink(func(solute, old *chem.Solute) {
		m.log.WithFields(logrus.Fields{"solute": solute.Key, "previous": old.Key}).Debug("solute selected")
	})
	m.SoluteForm.Link(func(form, _ SoluteForm) {
		must(m.Shaker.Visible.Set(form == Solid))
		must(m.Dropper.Visible.Set(form == Liquid))
	})
}

func (m *Model) updateDropperEnabled() {
	s := m.Solution
	enabled := !m.Dropper.Empty.Get() && !s.IsSaturated() && s.Volume.Get() < s.MaxVolume()
	must(m.Dropper.Enabled.Set(enabled))
}

// must turns an error from an internal observer into a panic; observers
// have no caller to report to.
func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("concentration: %v", err))
	}
}

func (m *Model) Catalog() *chem.Catalog { return m.catalog }

// Solutes returns the selectable solutes.
func (m *Model) Solutes() []*chem.Solute {
	out := make([]*chem.Solute, len(m.solutes))
	copy(out, m.solutes)
	return out
}

// SetSolutes restricts the selectable solutes. Every entry must belong to
// the catalog. If the current solute is not selectable, the first entry
// is selected.
func (m *Model) SetSolutes(solutes []*chem.Solute) error {
	if len(solutes) == 0 {
		return errors.New("concentration: solute list is empty")
	}
	for _, s := range solutes {
		if !m.catalog.Contains(s) {
			return fmt.Errorf("%w: %v", ErrUnknownSolute, s)
		}
	}
	m.solutes = append([]*chem.Solute(nil), solutes...)
	if !m.selectable(m.Solution.Solute.Get()) {
		return m.Solution.SetSolute(m.solutes[0])
	}
	return nil
}

func (m *Model) selectable(s *chem.Solute) bool {
	for _, candidate := range m.solutes {
		if candidate == s {
			return true
		}
	}
	return false
}

// SelectSolute makes s the current solute.
func (m *Model) SelectSolute(s *chem.Solute) error {
	if !m.selectable(s) {
		return fmt.Errorf("%w: %v", ErrUnknownSolute, s)
	}
	return m.Solution.SetSolute(s)
}

func (m *Model) SelectSoluteByKey(key string) error {
	s, err := m.catalog.Lookup(key)
	if err != nil {
		return err
	}
	return m.SelectSolute(s)
}

func (m *Model) SetSoluteForm(form SoluteForm) error {
	if _, err := ParseSoluteForm(string(form)); err != nil {
		return err
	}
	return m.SoluteForm.Set(form)
}

// RemoveSolute empties the beaker of solute, keeping the solvent.
func (m *Model) RemoveSolute() error {
	return m.Solution.SetSoluteAmount(0)
}

// Step advances every flow by dt seconds.
func (m *Model) Step(dt float64) error {
	if !(dt >= 0) {
		return fmt.Errorf("concentration: negative time step %g", dt)
	}
	if err := m.addSolvent(m.SolventFaucet.FlowRate.Get() * dt); err != nil {
		return fmt.Errorf("add solvent: %w", err)
	}
	if err := m.drainSolution(m.DrainFaucet.FlowRate.Get() * dt); err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	if err := m.evaporateSolvent(m.Evaporator.Rate() * dt); err != nil {
		return fmt.Errorf("evaporate: %w", err)
	}
	if err := m.addSolute(m.Shaker.DispensingRate.Get() * dt); err != nil {
		return fmt.Errorf("shake: %w", err)
	}
	if err := m.addStockSolution(m.Dropper.FlowRate.Get() * dt); err != nil {
		return fmt.Errorf("drop: %w", err)
	}
	return nil
}

func (m *Model) addSolvent(deltaVolume float64) error {
	if deltaVolume <= 0 {
		return nil
	}
	s := m.Solution
	return s.SetVolume(math.Min(s.MaxVolume(), s.Volume.Get()+deltaVolume))
}

// drainSolution removes solution; dissolved solute leaves with it at the
// current concentration.
func (m *Model) drainSolution(deltaVolume float64) error {
	if deltaVolume <= 0 {
		return nil
	}
	s := m.Solution
	removed := math.Min(deltaVolume, s.Volume.Get())
	concentration := s.Concentration.Get()
	return s.Deferred(func() error {
		if err := s.SetVolume(s.Volume.Get() - removed); err != nil {
			return err
		}
		return s.SetSoluteAmount(math.Max(0, s.SoluteAmount.Get()-concentration*removed))
	})
}

func (m *Model) evaporateSolvent(deltaVolume float64) error {
	if deltaVolume <= 0 {
		return nil
	}
	s := m.Solution
	return s.SetVolume(math.Max(0, s.Volume.Get()-deltaVolume))
}

func (m *Model) addSolute(deltaAmount float64) error {
	if deltaAmount <= 0 {
		return nil
	}
	s := m.Solution
	return s.SetSoluteAmount(math.Min(m.maxSoluteAmount, s.SoluteAmount.Get()+deltaAmount))
}

// addStockSolution adds dropper contents: volume and the solute it
// carries at stock concentration.
func (m *Model) addStockSolution(deltaVolume float64) error {
	s := m.Solution
	added := math.Min(deltaVolume, s.MaxVolume()-s.Volume.Get())
	if added <= 0 {
		return nil
	}
	stock := s.Solute.Get().StockSolutionConcentration
	return s.Deferred(func() error {
		if err := s.SetVolume(s.Volume.Get() + added); err != nil {
			return err
		}
		return s.SetSoluteAmount(math.Min(m.maxSoluteAmount, s.SoluteAmount.Get()+added*stock))
	})
}

// Reset restores every component to its initial state.
func (m *Model) Reset() error {
	err := errors.Join(
		m.SolventFaucet.Reset(),
		m.DrainFaucet.Reset(),
		m.Shaker.Reset(),
		m.Dropper.Reset(),
		m.SoluteForm.Reset(),
		m.Solution.Reset(),
		m.Evaporator.Reset(),
	)
	if err != nil {
		return err
	}
	m.syncEnablement()
	m.log.WithField("solute", m.Solution.Solute.Get().Key).Info("model reset")
	return nil
}

// syncEnablement reapplies the rules that components reset to defaults.
func (m *Model) syncEnablement() {
	s := m.Solution
	v, a := s.Volume.Get(), s.SoluteAmount.Get()
	must(m.SolventFaucet.Enabled.Set(v < s.MaxVolume()))
	must(m.DrainFaucet.Enabled.Set(v > 0))
	must(m.Shaker.Empty.Set(a >= m.maxSoluteAmount))
	must(m.Dropper.Empty.Set(a >= m.maxSoluteAmount))
	form := m.SoluteForm.Get()
	must(m.Shaker.Visible.Set(form == Solid))
	must(m.Dropper.Visible.Set(form == Liquid))
	m.updateDropperEnabled()
}

// Snapshot is a value copy of the observable state.
type Snapshot struct {
	Solute               string  `json:"solute"`
	SoluteForm           string  `json:"soluteForm"`
	SoluteAmount         float64 `json:"soluteAmount"`
	Volume               float64 `json:"volume"`
	Concentration        float64 `json:"concentration"`
	PercentConcentration float64 `json:"percentConcentration"`
	PrecipitateAmount    float64 `json:"precipitateAmount"`
	Saturated            bool    `json:"saturated"`
	Particles            int     `json:"particles"`
	Color                string  `json:"color"`
	SolventFlowRate      float64 `json:"solventFlowRate"`
	DrainFlowRate        float64 `json:"drainFlowRate"`
	EvaporationRate      float64 `json:"evaporationRate"`
	ShakerRate           float64 `json:"shakerRate"`
	DropperFlowRate      float64 `json:"dropperFlowRate"`
}

func (m *Model) Snapshot() Snapshot {
	s := m.Solution
	return Snapshot{
		Solute:               s.Solute.Get().Key,
		SoluteForm:           string(m.SoluteForm.Get()),
		SoluteAmount:         s.SoluteAmount.Get(),
		Volume:               s.Volume.Get(),
		Concentration:        s.Concentration.Get(),
		PercentConcentration: s.PercentConcentration(),
		PrecipitateAmount:    s.PrecipitateAmount.Get(),
		Saturated:            s.IsSaturated(),
		Particles:            m.Precipitate.Len(),
		Color:                s.Color.Get().Hex(),
		SolventFlowRate:      m.SolventFaucet.FlowRate.Get(),
		DrainFlowRate:        m.DrainFaucet.FlowRate.Get(),
		EvaporationRate:      m.Evaporator.Rate(),
		ShakerRate:           m.Shaker.DispensingRate.Get(),
		DropperFlowRate:      m.Dropper.FlowRate.Get(),
	}
}
