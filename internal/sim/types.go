package sim

import (
	"fmt"

	"github.com/san-kum/beerslab/internal/concentration"
	"github.com/san-kum/beerslab/internal/config"
)

// Metric folds the recorded samples of a run into one number.
type Metric interface {
	Name() string
	Observe(s concentration.Snapshot, t float64)
	Value() float64
	Reset()
}

// Observer sees every recorded sample as it is produced.
type Observer interface {
	OnStep(s concentration.Snapshot, t float64)
}

// ObserverFunc adapts a func to Observer.
type ObserverFunc func(s concentration.Snapshot, t float64)

func (f ObserverFunc) OnStep(s concentration.Snapshot, t float64) { f(s, t) }

// Controller adjusts the model before every step.
type Controller interface {
	Control(m *concentration.Model, t float64) error
	Reset()
}

type Result struct {
	Config     *config.Config
	Times      []float64
	Samples    []concentration.Snapshot
	Applied    []config.Action
	Metrics    map[string]float64
	StepsTaken int
}

// Series extracts one float per sample.
func (r *Result) Series(field func(concentration.Snapshot) float64) []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = field(s)
	}
	return out
}

// Final returns the last sample.
func (r *Result) Final() concentration.Snapshot {
	if len(r.Samples) == 0 {
		return concentration.Snapshot{}
	}
	return r.Samples[len(r.Samples)-1]
}

// SimError reports a failure at a specific step.
type SimError struct {
	Time    float64
	Step    int
	Message string
	Err     error
}

func (e SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %d (t=%.4f): %s: %v", e.Step, e.Time, e.Message, e.Err)
	}
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }
