package concentration_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/concentration"
)

var _ = Describe("Evaporator", func() {
	var (
		solution   *concentration.Solution
		evaporator *concentration.Evaporator
	)

	BeforeEach(func() {
		solution = newSolution(chem.DrinkMix, 0, 0.5)
		var err error
		evaporator, err = concentration.NewEvaporator(0.25, solution)
		Expect(err).NotTo(HaveOccurred())
	})

	It("is enabled while there is solution", func() {
		Expect(evaporator.IsEnabled()).To(BeTrue())
		Expect(evaporator.SetEvaporationRate(0.1)).To(Succeed())
		Expect(evaporator.Rate()).To(Equal(0.1))
	})

	It("rejects rates outside [0, max]", func() {
		Expect(evaporator.SetEvaporationRate(0.3)).To(MatchError(concentration.ErrInvalidRange))
		Expect(evaporator.SetEvaporationRate(-0.01)).To(MatchError(concentration.ErrInvalidRange))
		Expect(evaporator.Rate()).To(BeZero())
	})

	It("zeroes the rate and ignores sets once the beaker is empty", func() {
		Expect(evaporator.SetEvaporationRate(0.2)).To(Succeed())
		Expect(solution.SetVolume(0)).To(Succeed())

		Expect(evaporator.IsEnabled()).To(BeFalse())
		Expect(evaporator.Rate()).To(BeZero())

		Expect(evaporator.SetEvaporationRate(0.2)).To(Succeed())
		Expect(evaporator.Rate()).To(BeZero())

		Expect(solution.SetVolume(0.1)).To(Succeed())
		Expect(evaporator.IsEnabled()).To(BeTrue())
		Expect(evaporator.SetEvaporationRate(0.2)).To(Succeed())
		Expect(evaporator.Rate()).To(Equal(0.2))
	})

	It("notifies rate observers when disabled", func() {
		var rates []float64
		evaporator.EvaporationRate().LazyLink(func(v, _ float64) { rates = append(rates, v) })

		Expect(evaporator.SetEvaporationRate(0.2)).To(Succeed())
		Expect(solution.SetVolume(0)).To(Succeed())
		Expect(rates).To(Equal([]float64{0.2, 0}))
	})

	It("resets the rate", func() {
		Expect(evaporator.SetEvaporationRate(0.2)).To(Succeed())
		Expect(evaporator.Reset()).To(Succeed())
		Expect(evaporator.Rate()).To(BeZero())
	})

	It("requires a positive maximum", func() {
		_, err := concentration.NewEvaporator(0, solution)
		Expect(err).To(HaveOccurred())
	})
})
