// Package analysis summarizes recorded concentration runs.
//
// The package works on the samples of a [sim.Result] or on plain series:
//
//   - [Summarize]: mean, spread and extremes of a series
//   - [SaturationIntervals]: time spans during which the solution was saturated
//   - [TimeToSaturation]: first time the solution saturated
//   - [PowerSpectrum]: magnitude spectrum of an evenly sampled series
//   - [Trajectory]: volume against dissolved solute, for plotting
//   - [TrajectoryToASCII]: terminal rendering of a trajectory
//
// # Saturation
//
// A run saturates when the concentration reaches the solute's saturated
// concentration, at which point excess solute precipitates:
//
//	at, ok := analysis.TimeToSaturation(result)
//	if ok {
//	    fmt.Printf("saturated after %.2fs\n", at)
//	}
package analysis
