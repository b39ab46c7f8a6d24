package concentration_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/concentration"
)

const tolerance = 1e-9

func newSolution(solute *chem.Solute, amount, volume float64) *concentration.Solution {
	s, err := concentration.NewSolution(solute, amount, volume)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Solution", func() {
	DescribeTable("derives concentration and precipitate from amount and volume",
		func(amount, volume float64) {
			s := newSolution(chem.DrinkMix, amount, volume)
			csat := chem.DrinkMix.SaturatedConcentration

			Expect(s.Concentration.Get()).To(BeNumerically("~", math.Min(csat, amount/volume), tolerance))
			Expect(s.PrecipitateAmount.Get()).To(BeNumerically("~", math.Max(0, amount-volume*csat), tolerance))
			Expect(s.DissolvedAmount() + s.PrecipitateAmount.Get()).To(BeNumerically("~", amount, tolerance))
			Expect(s.IsSaturated()).To(Equal(amount/volume > csat))
		},
		Entry("empty", 0.0, 0.5),
		Entry("dilute", 0.1, 0.5),
		Entry("just below saturation", 2.97, 0.5),
		Entry("just above saturation", 2.99, 0.5),
		Entry("heavily saturated", 5.0, 0.2),
		Entry("tiny volume", 0.001, 1e-6),
	)

	It("keeps the invariant after every mutation", func() {
		s := newSolution(chem.CopperSulfate, 0, 0.5)
		steps := []struct{ amount, volume float64 }{
			{0.3, 0.5}, {0.8, 0.5}, {0.8, 0.2}, {0.8, 1.0}, {0, 1.0},
		}
		for _, step := range steps {
			Expect(s.SetSoluteAmount(step.amount)).To(Succeed())
			Expect(s.SetVolume(step.volume)).To(Succeed())
			Expect(s.DissolvedAmount() + s.PrecipitateAmount.Get()).To(BeNumerically("~", step.amount, tolerance))
		}
	})

	DescribeTable("has zero concentration when the beaker is empty",
		func(amount float64) {
			s := newSolution(chem.DrinkMix, amount, 0)
			Expect(s.Concentration.Get()).To(BeZero())
			Expect(s.IsSaturated()).To(BeFalse())
			Expect(s.PrecipitateAmount.Get()).To(Equal(amount))
			Expect(s.PercentConcentration()).To(BeZero())
			Expect(s.Color.Get()).To(Equal(chem.Water.Color))
		},
		Entry("no solute", 0.0),
		Entry("some solute", 1.0),
		Entry("lots of solute", 10.0),
	)

	It("reports out-of-range mutations without clamping", func() {
		s := newSolution(chem.DrinkMix, 1, 0.5)

		Expect(s.SetVolume(-0.1)).To(MatchError(concentration.ErrInvalidRange))
		Expect(s.SetVolume(1.5)).To(MatchError(concentration.ErrInvalidRange))
		Expect(s.SetSoluteAmount(-1)).To(MatchError(concentration.ErrInvalidRange))
		Expect(s.SetSolute(nil)).To(MatchError(concentration.ErrUnknownSolute))

		Expect(s.Volume.Get()).To(Equal(0.5))
		Expect(s.SoluteAmount.Get()).To(Equal(1.0))
		Expect(s.Solute.Get()).To(BeIdenticalTo(chem.DrinkMix))
	})

	It("rejects an invalid initial state", func() {
		_, err := concentration.NewSolution(chem.DrinkMix, -1, 0.5)
		Expect(err).To(MatchError(concentration.ErrInvalidRange))

		_, err = concentration.NewSolution(nil, 0, 0.5)
		Expect(err).To(HaveOccurred())
	})

	It("updates concentration and color before saturated observers run", func() {
		s := newSolution(chem.DrinkMix, 0, 0.5)

		var seenConcentration, seenPrecipitate float64
		var seenColor chem.Color
		s.Saturated.LazyLink(func(bool, bool) {
			seenConcentration = s.Concentration.Get()
			seenPrecipitate = s.PrecipitateAmount.Get()
			seenColor = s.Color.Get()
		})

		Expect(s.SetSoluteAmount(4)).To(Succeed())
		Expect(seenConcentration).To(Equal(chem.DrinkMix.SaturatedConcentration))
		Expect(seenPrecipitate).To(BeNumerically("~", 4-0.5*5.96, tolerance))
		Expect(seenColor).To(Equal(chem.DrinkMix.ColorScheme.MaxColor))
	})

	Describe("color", func() {
		It("is the solvent color at zero concentration", func() {
			s := newSolution(chem.PotassiumPermanganate, 0, 0.5)
			Expect(s.Color.Get()).To(Equal(chem.Water.Color))
		})

		for _, solute := range chem.DefaultCatalog().All() {
			solute := solute
			It("follows the color scheme of "+solute.Key, func() {
				scheme := solute.ColorScheme
				s := newSolution(solute, 0, 1)

				samples := []float64{
					scheme.MidConcentration / 2,
					scheme.MidConcentration,
					(scheme.MidConcentration + scheme.MaxConcentration) / 2,
					scheme.MaxConcentration,
				}
				for _, c := range samples {
					Expect(s.SetSoluteAmount(c)).To(Succeed())
					Expect(s.Concentration.Get()).To(BeNumerically("~", c, tolerance))
					Expect(s.Color.Get()).To(Equal(solute.ConcentrationToColor(s.Concentration.Get())))
				}
				Expect(s.Color.Get()).To(Equal(scheme.MaxColor))
			})
		}
	})

	It("computes the mass percent of dissolved solute", func() {
		s := newSolution(chem.DrinkMix, 0.5, 1)
		grams := 0.5 * chem.DrinkMix.MolarMass
		Expect(s.PercentConcentration()).To(BeNumerically("~", 100*grams/(grams+1000), tolerance))

		Expect(s.SetSoluteAmount(10)).To(Succeed())
		grams = chem.DrinkMix.SaturatedConcentration * chem.DrinkMix.MolarMass
		Expect(s.PercentConcentration()).To(BeNumerically("~", 100*grams/(grams+1000), tolerance))
	})

	Describe("Reset", func() {
		It("restores the initial state and is idempotent", func() {
			s := newSolution(chem.DrinkMix, 0.2, 0.5)
			Expect(s.SetSolute(chem.CopperSulfate)).To(Succeed())
			Expect(s.SetSoluteAmount(3)).To(Succeed())
			Expect(s.SetVolume(0.9)).To(Succeed())

			Expect(s.Reset()).To(Succeed())
			once := s.String()
			onceColor := s.Color.Get()
			onceP := s.PrecipitateAmount.Get()

			Expect(s.Reset()).To(Succeed())
			Expect(s.String()).To(Equal(once))
			Expect(s.Color.Get()).To(Equal(onceColor))
			Expect(s.PrecipitateAmount.Get()).To(Equal(onceP))
			Expect(s.Solute.Get()).To(BeIdenticalTo(chem.DrinkMix))
			Expect(s.SoluteAmount.Get()).To(Equal(0.2))
			Expect(s.Volume.Get()).To(Equal(0.5))
		})

		It("recomputes derived values", func() {
			s := newSolution(chem.DrinkMix, 0, 0.5)
			Expect(s.SetSoluteAmount(5)).To(Succeed())
			Expect(s.IsSaturated()).To(BeTrue())

			Expect(s.Reset()).To(Succeed())
			Expect(s.IsSaturated()).To(BeFalse())
			Expect(s.PrecipitateAmount.Get()).To(BeZero())
			Expect(s.Concentration.Get()).To(BeZero())
		})
	})

	Describe("deferral", func() {
		var (
			s       *concentration.Solution
			updates []float64
		)

		BeforeEach(func() {
			s = newSolution(chem.DrinkMix, 4, 0.5)
			updates = nil
			s.PrecipitateAmount.LazyLink(func(v, _ float64) { updates = append(updates, v) })
		})

		It("recomputes the precipitate once from the final pair", func() {
			Expect(s.BeginDeferral()).To(Succeed())
			Expect(s.SetVolume(0.25)).To(Succeed())
			Expect(s.PrecipitateAmount.Get()).To(BeNumerically("~", 4-0.5*5.96, tolerance))
			Expect(s.SetSoluteAmount(1)).To(Succeed())
			Expect(updates).To(BeEmpty())
			Expect(s.EndDeferral()).To(Succeed())

			Expect(updates).To(HaveLen(1))
			Expect(updates[0]).To(BeZero())
			Expect(s.Deferring()).To(BeFalse())
		})

		It("notifies on every intermediate change without a window", func() {
			Expect(s.SetVolume(0.25)).To(Succeed())
			Expect(s.SetSoluteAmount(1)).To(Succeed())
			Expect(updates).To(HaveLen(2))
		})

		It("closes the scoped window even when the body fails", func() {
			err := s.Deferred(func() error {
				Expect(s.SetVolume(0.25)).To(Succeed())
				return s.SetSoluteAmount(-1)
			})
			Expect(err).To(MatchError(concentration.ErrInvalidRange))
			Expect(s.Deferring()).To(BeFalse())
			Expect(updates).To(HaveLen(1))
		})

		It("reports misuse", func() {
			Expect(s.EndDeferral()).To(MatchError(concentration.ErrInconsistentDeferral))

			Expect(s.BeginDeferral()).To(Succeed())
			Expect(s.BeginDeferral()).To(MatchError(concentration.ErrInconsistentDeferral))
			Expect(s.Reset()).To(MatchError(concentration.ErrInconsistentDeferral))
			Expect(s.Deferred(func() error { return nil })).To(MatchError(concentration.ErrInconsistentDeferral))

			Expect(s.EndDeferral()).To(Succeed())
			Expect(s.EndDeferral()).To(MatchError(concentration.ErrInconsistentDeferral))
		})
	})

	Describe("NumberOfPrecipitateParticles", func() {
		It("rounds the particle density", func() {
			s := newSolution(chem.DrinkMix, 3.0, 0.5)
			Expect(s.NumberOfPrecipitateParticles()).To(Equal(4))
		})

		It("is zero without precipitate", func() {
			s := newSolution(chem.DrinkMix, 1.0, 0.5)
			Expect(s.NumberOfPrecipitateParticles()).To(BeZero())
		})
	})
})
