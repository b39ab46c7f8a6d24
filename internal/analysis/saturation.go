package analysis

import "github.com/san-kum/beerslab/internal/sim"

// Interval is a closed time span.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (i Interval) Duration() float64 { return i.End - i.Start }

// SaturationIntervals returns the spans of consecutive saturated samples.
// A span still open at the end of the run ends at the last sample time.
func SaturationIntervals(r *sim.Result) []Interval {
	var out []Interval
	open := false
	var start float64
	for i, s := range r.Samples {
		t := r.Times[i]
		switch {
		case s.Saturated && !open:
			open = true
			start = t
		case !s.Saturated && open:
			open = false
			out = append(out, Interval{Start: start, End: t})
		}
	}
	if open {
		out = append(out, Interval{Start: start, End: r.Times[len(r.Times)-1]})
	}
	return out
}

// TimeToSaturation reports the first sample time at which the solution
// was saturated.
func TimeToSaturation(r *sim.Result) (float64, bool) {
	for i, s := range r.Samples {
		if s.Saturated {
			return r.Times[i], true
		}
	}
	return 0, false
}
