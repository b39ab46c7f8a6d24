package metrics

import "github.com/san-kum/beerslab/internal/concentration"

// SaturatedTime accumulates the time spent saturated. An interval counts
// when the sample closing it is saturated.
type SaturatedTime struct {
	name    string
	total   float64
	lastT   float64
	samples int
}

func NewSaturatedTime() *SaturatedTime {
	return &SaturatedTime{name: "saturated_time"}
}

func (s *SaturatedTime) Name() string { return s.name }

func (s *SaturatedTime) Observe(snap concentration.Snapshot, t float64) {
	if s.samples > 0 && snap.Saturated {
		s.total += t - s.lastT
	}
	s.lastT = t
	s.samples++
}

func (s *SaturatedTime) Value() float64 { return s.total }

func (s *SaturatedTime) Reset() {
	s.total = 0
	s.lastT = 0
	s.samples = 0
}

// FirstSaturation is the first sample time at which the solution is
// saturated, or -1 if it never is.
type FirstSaturation struct {
	name string
	at   float64
}

func NewFirstSaturation() *FirstSaturation {
	return &FirstSaturation{name: "time_to_saturation", at: -1}
}

func (f *FirstSaturation) Name() string { return f.name }

func (f *FirstSaturation) Observe(snap concentration.Snapshot, t float64) {
	if f.at < 0 && snap.Saturated {
		f.at = t
	}
}

func (f *FirstSaturation) Value() float64 { return f.at }
func (f *FirstSaturation) Reset()         { f.at = -1 }
