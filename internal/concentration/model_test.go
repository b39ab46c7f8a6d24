package concentration_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/concentration"
)

func newModel(mutate func(*concentration.ModelConfig)) *concentration.Model {
	cfg := concentration.DefaultModelConfig()
	cfg.Rand = rand.New(rand.NewSource(42))
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := concentration.NewModel(cfg)
	Expect(err).NotTo(HaveOccurred())
	return m
}

var _ = Describe("Model", func() {
	var m *concentration.Model

	BeforeEach(func() {
		m = newModel(nil)
	})

	It("starts with half a liter of water and drink mix", func() {
		snap := m.Snapshot()
		Expect(snap.Solute).To(Equal("drinkMix"))
		Expect(snap.Volume).To(Equal(0.5))
		Expect(snap.SoluteAmount).To(BeZero())
		Expect(snap.SoluteForm).To(Equal("solid"))
		Expect(snap.Color).To(Equal(chem.Water.Color.Hex()))
		Expect(m.Shaker.Visible.Get()).To(BeTrue())
		Expect(m.Dropper.Visible.Get()).To(BeFalse())
	})

	Describe("Step", func() {
		It("adds solvent up to the beaker capacity", func() {
			Expect(m.SolventFaucet.SetFlowRate(0.25)).To(Succeed())
			Expect(m.Step(1)).To(Succeed())
			Expect(m.Solution.Volume.Get()).To(Equal(0.75))

			Expect(m.Step(2)).To(Succeed())
			Expect(m.Solution.Volume.Get()).To(Equal(1.0))
			Expect(m.SolventFaucet.Enabled.Get()).To(BeFalse())
			Expect(m.SolventFaucet.FlowRate.Get()).To(BeZero())
		})

		It("drains dissolved solute with the solution", func() {
			Expect(m.Solution.SetSoluteAmount(1)).To(Succeed())
			Expect(m.DrainFaucet.SetFlowRate(0.25)).To(Succeed())
			Expect(m.Step(1)).To(Succeed())

			Expect(m.Solution.Volume.Get()).To(Equal(0.25))
			Expect(m.Solution.SoluteAmount.Get()).To(BeNumerically("~", 0.5, tolerance))
			Expect(m.Solution.Concentration.Get()).To(BeNumerically("~", 2, tolerance))
		})

		It("leaves precipitate behind when draining a saturated solution", func() {
			Expect(m.Solution.SetSoluteAmount(4)).To(Succeed())
			before := m.Solution.PrecipitateAmount.Get()

			var updates int
			m.Solution.PrecipitateAmount.LazyLink(func(float64, float64) { updates++ })

			Expect(m.DrainFaucet.SetFlowRate(0.25)).To(Succeed())
			Expect(m.Step(1)).To(Succeed())

			Expect(m.Solution.PrecipitateAmount.Get()).To(BeNumerically("~", before, tolerance))
			Expect(updates).To(BeNumerically("<=", 1))
			Expect(m.Solution.IsSaturated()).To(BeTrue())
		})

		It("disables the drain once the beaker is empty", func() {
			Expect(m.DrainFaucet.SetFlowRate(0.25)).To(Succeed())
			Expect(m.Step(3)).To(Succeed())
			Expect(m.Solution.Volume.Get()).To(BeZero())
			Expect(m.DrainFaucet.Enabled.Get()).To(BeFalse())
			Expect(m.DrainFaucet.FlowRate.Get()).To(BeZero())
		})

		It("evaporates solvent only", func() {
			Expect(m.Solution.SetSoluteAmount(1)).To(Succeed())
			Expect(m.Evaporator.SetEvaporationRate(0.25)).To(Succeed())
			Expect(m.Step(1)).To(Succeed())
			Expect(m.Solution.Volume.Get()).To(Equal(0.25))
			Expect(m.Solution.SoluteAmount.Get()).To(Equal(1.0))

			Expect(m.Step(10)).To(Succeed())
			Expect(m.Solution.Volume.Get()).To(BeZero())
			Expect(m.Evaporator.IsEnabled()).To(BeFalse())
			Expect(m.Evaporator.Rate()).To(BeZero())
		})

		It("adds solid solute while shaking until the shaker is empty", func() {
			Expect(m.Shaker.Dispensing.Set(true)).To(Succeed())
			Expect(m.Step(1)).To(Succeed())
			Expect(m.Solution.SoluteAmount.Get()).To(BeNumerically("~", 0.2, tolerance))

			Expect(m.Step(100)).To(Succeed())
			Expect(m.Solution.SoluteAmount.Get()).To(Equal(concentration.DefaultMaxSoluteAmount))
			Expect(m.Shaker.Empty.Get()).To(BeTrue())
			Expect(m.Shaker.DispensingRate.Get()).To(BeZero())
		})

		It("adds stock solution from the dropper", func() {
			Expect(m.SetSoluteForm(concentration.Liquid)).To(Succeed())
			Expect(m.Shaker.Visible.Get()).To(BeFalse())
			Expect(m.Dropper.Visible.Get()).To(BeTrue())

			Expect(m.Dropper.Dispensing.Set(true)).To(Succeed())
			Expect(m.Step(1)).To(Succeed())

			Expect(m.Solution.Volume.Get()).To(BeNumerically("~", 0.55, tolerance))
			Expect(m.Solution.SoluteAmount.Get()).To(BeNumerically("~", 0.05*chem.DrinkMix.StockSolutionConcentration, tolerance))
		})

		It("disables the dropper for a saturated solution", func() {
			Expect(m.SetSoluteForm(concentration.Liquid)).To(Succeed())
			Expect(m.Dropper.Dispensing.Set(true)).To(Succeed())
			Expect(m.Solution.SetSoluteAmount(4)).To(Succeed())

			Expect(m.Dropper.Enabled.Get()).To(BeFalse())
			Expect(m.Dropper.FlowRate.Get()).To(BeZero())

			Expect(m.Solution.SetSoluteAmount(1)).To(Succeed())
			Expect(m.Dropper.Enabled.Get()).To(BeTrue())
		})

		It("rejects negative time steps", func() {
			Expect(m.Step(-1)).To(HaveOccurred())
		})
	})

	Describe("solute selection", func() {
		It("selects by key", func() {
			Expect(m.SelectSoluteByKey("nickelIIChloride")).To(Succeed())
			Expect(m.Solution.Solute.Get()).To(BeIdenticalTo(chem.NickelIIChloride))
			Expect(m.SelectSoluteByKey("unobtainium")).To(MatchError(concentration.ErrUnknownSolute))
		})

		It("rejects solutes outside the catalog", func() {
			impostor := *chem.DrinkMix
			Expect(m.SetSolutes([]*chem.Solute{chem.DrinkMix, &impostor})).To(MatchError(concentration.ErrUnknownSolute))
			Expect(m.SelectSolute(&impostor)).To(MatchError(concentration.ErrUnknownSolute))
			Expect(m.Solutes()).To(HaveLen(chem.DefaultCatalog().Len()))
		})

		It("moves to the first entry when the current solute is dropped", func() {
			Expect(m.SetSolutes([]*chem.Solute{chem.CopperSulfate, chem.SodiumChloride})).To(Succeed())
			Expect(m.Solution.Solute.Get()).To(BeIdenticalTo(chem.CopperSulfate))
			Expect(m.SelectSolute(chem.DrinkMix)).To(MatchError(concentration.ErrUnknownSolute))
		})

		It("keeps the current solute when it remains selectable", func() {
			Expect(m.SetSolutes([]*chem.Solute{chem.CopperSulfate, chem.DrinkMix})).To(Succeed())
			Expect(m.Solution.Solute.Get()).To(BeIdenticalTo(chem.DrinkMix))
		})

		It("requires the initial solute to be in the catalog", func() {
			cfg := concentration.DefaultModelConfig()
			impostor := *chem.CopperSulfate
			cfg.Solute = &impostor
			_, err := concentration.NewModel(cfg)
			Expect(err).To(MatchError(concentration.ErrUnknownSolute))
		})
	})

	It("removes all solute", func() {
		Expect(m.Solution.SetSoluteAmount(4)).To(Succeed())
		Expect(m.Precipitate.Len()).To(BeNumerically(">", 0))
		Expect(m.RemoveSolute()).To(Succeed())
		Expect(m.Solution.SoluteAmount.Get()).To(BeZero())
		Expect(m.Precipitate.Len()).To(BeZero())
	})

	It("rejects unknown solute forms", func() {
		Expect(m.SetSoluteForm("gas")).To(HaveOccurred())
	})

	Describe("Reset", func() {
		It("restores every component and is idempotent", func() {
			Expect(m.SelectSolute(chem.PotassiumChromate)).To(Succeed())
			Expect(m.SetSoluteForm(concentration.Liquid)).To(Succeed())
			Expect(m.Solution.SetSoluteAmount(3)).To(Succeed())
			Expect(m.SolventFaucet.SetFlowRate(0.1)).To(Succeed())
			Expect(m.Evaporator.SetEvaporationRate(0.1)).To(Succeed())
			Expect(m.Step(0.5)).To(Succeed())

			Expect(m.Reset()).To(Succeed())
			once := m.Snapshot()
			Expect(m.Reset()).To(Succeed())
			Expect(m.Snapshot()).To(Equal(once))

			Expect(once.Solute).To(Equal("drinkMix"))
			Expect(once.SoluteForm).To(Equal("solid"))
			Expect(once.Volume).To(Equal(0.5))
			Expect(once.SoluteAmount).To(BeZero())
			Expect(once.SolventFlowRate).To(BeZero())
			Expect(once.EvaporationRate).To(BeZero())
			Expect(once.Particles).To(BeZero())
			Expect(m.SolventFaucet.Enabled.Get()).To(BeTrue())
			Expect(m.DrainFaucet.Enabled.Get()).To(BeTrue())
		})
	})
})
