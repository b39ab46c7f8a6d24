// Package metrics summarizes a lab run. Each metric implements sim.Metric.
package metrics

import "github.com/san-kum/beerslab/internal/sim"

// Default returns a fresh instance of every metric.
func Default() []sim.Metric {
	return []sim.Metric{
		NewPeakConcentration(),
		NewMeanConcentration(),
		NewPrecipitateMax(),
		NewSaturatedTime(),
		NewFirstSaturation(),
		NewSolventUsed(),
	}
}
