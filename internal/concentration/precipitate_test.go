package concentration_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/concentration"
)

func newBeaker() *concentration.Beaker {
	return concentration.NewBeaker(r2.Vec{X: 350, Y: 550}, concentration.Size{Width: 600, Height: 300}, 1)
}

var _ = Describe("Precipitate", func() {
	var (
		solution    *concentration.Solution
		precipitate *concentration.Precipitate
		added       []*concentration.PrecipitateParticle
		removed     []*concentration.PrecipitateParticle
	)

	BeforeEach(func() {
		solution = newSolution(chem.DrinkMix, 0, 0.5)
		precipitate = concentration.NewPrecipitate(solution, newBeaker(),
			concentration.PrecipitateConfig{Rand: rand.New(rand.NewSource(1))})
		added, removed = nil, nil
		precipitate.OnParticleAdded(func(p *concentration.PrecipitateParticle) { added = append(added, p) })
		precipitate.OnParticleRemoved(func(p *concentration.PrecipitateParticle) { removed = append(removed, p) })
	})

	It("starts empty for an unsaturated solution", func() {
		Expect(precipitate.Len()).To(BeZero())
	})

	It("matches the particle count of the solution", func() {
		Expect(solution.SetSoluteAmount(3.0)).To(Succeed())
		Expect(precipitate.Len()).To(Equal(solution.NumberOfPrecipitateParticles()))
		Expect(added).To(HaveLen(4))

		Expect(solution.SetSoluteAmount(3.1)).To(Succeed())
		Expect(precipitate.Len()).To(Equal(solution.NumberOfPrecipitateParticles()))
		Expect(precipitate.Len()).To(Equal(24))
	})

	It("removes from the tail without moving survivors", func() {
		Expect(solution.SetSoluteAmount(3.1)).To(Succeed())
		before := precipitate.Particles()
		offsets := make([]r2.Vec, len(before))
		for i, p := range before {
			offsets[i] = p.Offset
		}

		Expect(solution.SetSoluteAmount(3.0)).To(Succeed())
		after := precipitate.Particles()
		Expect(after).To(HaveLen(4))
		for i, p := range after {
			Expect(p).To(BeIdenticalTo(before[i]))
			Expect(p.Offset).To(Equal(offsets[i]))
		}
		Expect(removed).To(HaveLen(20))
		Expect(removed[0]).To(BeIdenticalTo(before[len(before)-1]))
	})

	It("removes everything when the solution dissolves", func() {
		Expect(solution.SetSoluteAmount(3.1)).To(Succeed())
		Expect(solution.SetVolume(1)).To(Succeed())
		Expect(precipitate.Len()).To(BeZero())
		Expect(removed).To(HaveLen(len(added)))
	})

	It("recreates every particle when the solute changes", func() {
		Expect(solution.SetSoluteAmount(3.0)).To(Succeed())
		old := precipitate.Particles()
		added, removed = nil, nil

		Expect(solution.SetSolute(chem.CopperSulfate)).To(Succeed())

		Expect(removed).To(ContainElements(old))
		for _, p := range precipitate.Particles() {
			Expect(p.Solute).To(BeIdenticalTo(chem.CopperSulfate))
		}
		Expect(precipitate.Len()).To(Equal(solution.NumberOfPrecipitateParticles()))
	})

	It("adds no particles when a reset restores another solute", func() {
		Expect(solution.SetSolute(chem.CopperSulfate)).To(Succeed())
		Expect(solution.SetSoluteAmount(3)).To(Succeed())
		copper := precipitate.Particles()
		Expect(copper).NotTo(BeEmpty())
		added, removed = nil, nil

		Expect(solution.Reset()).To(Succeed())

		Expect(added).To(BeEmpty())
		Expect(removed).To(HaveLen(len(copper)))
		Expect(removed).To(ContainElements(copper))
		Expect(precipitate.Len()).To(BeZero())
	})

	It("reconciles once a deferral window closes", func() {
		Expect(solution.SetSoluteAmount(3.1)).To(Succeed())
		added, removed = nil, nil

		Expect(solution.Deferred(func() error {
			if err := solution.SetSolute(chem.CopperSulfate); err != nil {
				return err
			}
			Expect(added).To(BeEmpty())
			return solution.SetSoluteAmount(0.1)
		})).To(Succeed())

		Expect(added).To(BeEmpty())
		Expect(precipitate.Len()).To(BeZero())
		Expect(removed).To(HaveLen(24))

		Expect(solution.Deferred(func() error { return solution.SetSoluteAmount(3) })).To(Succeed())
		Expect(precipitate.Len()).To(Equal(solution.NumberOfPrecipitateParticles()))
		Expect(added).To(HaveLen(precipitate.Len()))
		for _, p := range added {
			Expect(p.Solute).To(BeIdenticalTo(chem.CopperSulfate))
		}
	})

	It("places particles on the beaker floor", func() {
		Expect(solution.SetSoluteAmount(4)).To(Succeed())
		size := chem.DrinkMix.ParticleSize
		for _, p := range precipitate.Particles() {
			Expect(p.Offset.X).To(BeNumerically(">=", size-300))
			Expect(p.Offset.X).To(BeNumerically("<=", 300-2*size))
			Expect(p.Offset.Y).To(Equal(-size))
			Expect(p.Orientation).To(BeNumerically(">=", 0))
			Expect(p.Orientation).To(BeNumerically("<", 2*math.Pi))
		}
	})

	It("is reproducible with an injected generator", func() {
		other := newSolution(chem.DrinkMix, 0, 0.5)
		twin := concentration.NewPrecipitate(other, newBeaker(),
			concentration.PrecipitateConfig{Rand: rand.New(rand.NewSource(1))})

		Expect(solution.SetSoluteAmount(3.5)).To(Succeed())
		Expect(other.SetSoluteAmount(3.5)).To(Succeed())

		a, b := precipitate.Particles(), twin.Particles()
		Expect(a).To(HaveLen(len(b)))
		for i := range a {
			Expect(a[i].Offset).To(Equal(b[i].Offset))
			Expect(a[i].Orientation).To(Equal(b[i].Orientation))
		}
	})

	It("shows one particle for a tiny non-zero precipitate", func() {
		sparse := chem.NewSolute("sparse", "Sparse", "Sp", 100, 1000, 1,
			chem.ColorScheme{
				MinConcentration: 0, MinColor: chem.White,
				MidConcentration: 1, MidColor: chem.Yellow,
				MaxConcentration: 5, MaxColor: chem.Black,
			},
			chem.SoluteOptions{ParticlesPerMole: 1e-22})
		s := newSolution(sparse, 0, 1)
		p := concentration.NewPrecipitate(s, newBeaker(), concentration.PrecipitateConfig{Rand: rand.New(rand.NewSource(7))})

		var adds int
		p.OnParticleAdded(func(*concentration.PrecipitateParticle) { adds++ })

		Expect(s.SetSoluteAmount(10)).To(Succeed())
		Expect(s.PrecipitateAmount.Get()).To(Equal(5.0))
		Expect(s.NumberOfPrecipitateParticles()).To(Equal(1))
		Expect(adds).To(Equal(1))
		Expect(p.Len()).To(Equal(1))
	})

	It("stops following the solution after Dispose", func() {
		precipitate.Dispose()
		Expect(solution.SetSoluteAmount(4)).To(Succeed())
		Expect(precipitate.Len()).To(BeZero())
	})

	It("supports unlinking particle listeners", func() {
		var calls int
		id := precipitate.OnParticleAdded(func(*concentration.PrecipitateParticle) { calls++ })
		Expect(precipitate.UnlinkParticleAdded(id)).To(BeTrue())
		Expect(solution.SetSoluteAmount(3.0)).To(Succeed())
		Expect(calls).To(BeZero())
	})
})
