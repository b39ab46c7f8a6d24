package property

import "math"

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in the range. NaN is never contained.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) Length() float64 {
	return r.Max - r.Min
}

// Clamp is for callers such as slider handlers; properties never clamp.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Validator returns a validation func reporting values outside the range.
func (r Range) Validator(name string) func(float64) error {
	return func(v float64) error {
		if !r.Contains(v) {
			return &RangeError{Name: name, Value: v, Range: r}
		}
		return nil
	}
}

// NonNegative validates v >= 0.
func NonNegative(name string) func(float64) error {
	return func(v float64) error {
		if !(v >= 0) {
			return &RangeError{Name: name, Value: v, Range: Range{Min: 0, Max: math.Inf(1)}}
		}
		return nil
	}
}
