package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of the first len(xs)/2+1 Fourier
// coefficients of the mean-removed series. Series shorter than two
// samples have no spectrum.
func PowerSpectrum(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	mean := stat.Mean(xs, nil)
	centered := make([]float64, len(xs))
	for i, x := range xs {
		centered[i] = x - mean
	}

	fft := fourier.NewFFT(len(centered))
	coeffs := fft.Coefficients(nil, centered)

	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the largest non-DC
// component of a series sampled every dt seconds.
func DominantFrequency(xs []float64, dt float64) float64 {
	ps := PowerSpectrum(xs)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) / (float64(len(xs)) * dt)
}
