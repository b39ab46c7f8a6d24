package concentration_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/beerslab/internal/concentration"
)

var _ = Describe("Faucet", func() {
	var faucet *concentration.Faucet

	BeforeEach(func() {
		var err error
		faucet, err = concentration.NewFaucet(r2.Vec{X: 155, Y: 220}, -400, 45, 0.25)
		Expect(err).NotTo(HaveOccurred())
	})

	It("forces the flow rate to zero when disabled", func() {
		Expect(faucet.SetFlowRate(0.2)).To(Succeed())
		Expect(faucet.Enabled.Set(false)).To(Succeed())
		Expect(faucet.FlowRate.Get()).To(BeZero())

		Expect(faucet.SetFlowRate(0.2)).To(Succeed())
		Expect(faucet.FlowRate.Get()).To(BeZero())
	})

	It("rejects flow rates above the maximum", func() {
		Expect(faucet.SetFlowRate(0.3)).To(MatchError(concentration.ErrInvalidRange))
	})

	DescribeTable("inverse mapping round-trips",
		func(newControl func(*concentration.Faucet) *concentration.FaucetControl) {
			control := newControl(faucet)
			for _, f := range []float64{0, 0.01, 0.0625, 0.125, 0.2, 0.25} {
				Expect(control.FlowRateOf(control.InputOf(f))).To(BeNumerically("~", f, 1e-12))
			}
		},
		Entry("handle", concentration.NewHandleControl),
		Entry("lever", func(f *concentration.Faucet) *concentration.FaucetControl {
			return concentration.NewLeverControl(f, 40, 10)
		}),
	)

	Describe("handle control", func() {
		var control *concentration.FaucetControl

		BeforeEach(func() {
			control = concentration.NewHandleControl(faucet)
		})

		It("maps the orientation range onto [0, max]", func() {
			Expect(control.FlowRateOf(concentration.HandleOrientationMin)).To(BeZero())
			Expect(control.FlowRateOf(concentration.HandleOrientationMax)).To(Equal(0.25))
			Expect(control.FlowRateOf(-1)).To(BeZero())
			Expect(control.FlowRateOf(1)).To(Equal(0.25))
		})

		It("shuts off on release regardless of the last drag", func() {
			Expect(control.Drag(-0.1)).To(Succeed())
			Expect(faucet.FlowRate.Get()).To(BeNumerically(">", 0))
			Expect(control.Release()).To(Succeed())
			Expect(faucet.FlowRate.Get()).To(BeZero())

			Expect(control.Drag(5)).To(Succeed())
			Expect(faucet.FlowRate.Get()).To(Equal(0.25))
			Expect(control.Release()).To(Succeed())
			Expect(faucet.FlowRate.Get()).To(BeZero())
		})

		It("ignores drags while disabled", func() {
			Expect(faucet.Enabled.Set(false)).To(Succeed())
			Expect(control.Drag(0)).To(Succeed())
			Expect(faucet.FlowRate.Get()).To(BeZero())
		})

		It("follows programmatic flow rate changes", func() {
			Expect(faucet.SetFlowRate(0.25)).To(Succeed())
			Expect(control.Input.Get()).To(Equal(concentration.HandleOrientationMax))

			Expect(faucet.Reset()).To(Succeed())
			Expect(control.Input.Get()).To(Equal(concentration.HandleOrientationMin))
		})
	})

	It("maps the lever's off position to zero flow", func() {
		control := concentration.NewLeverControl(faucet, 40, 10)
		Expect(control.FlowRateOf(40)).To(BeZero())
		Expect(control.FlowRateOf(10)).To(Equal(0.25))
		Expect(control.FlowRateOf(25)).To(BeNumerically("~", 0.125, 1e-12))
		Expect(control.InputOf(0)).To(Equal(40.0))
	})
})
