package concentration_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Beaker", func() {
	beaker := newBeaker()

	DescribeTable("maps volume to solution height",
		func(volume, height float64) {
			Expect(beaker.SolutionHeight(volume)).To(BeNumerically("~", height, 1e-12))
		},
		Entry("empty", 0.0, 0.0),
		Entry("barely wet", 0.001, 5.0),
		Entry("half full", 0.5, 150.0),
		Entry("full", 1.0, 300.0),
	)

	It("knows its edges", func() {
		Expect(beaker.Left()).To(Equal(50.0))
		Expect(beaker.Right()).To(Equal(650.0))
	})
})
