package automation

import (
	"context"
	"fmt"

	"github.com/san-kum/beerslab/internal/analysis"
	"github.com/san-kum/beerslab/internal/concentration"
	"github.com/san-kum/beerslab/internal/config"
	"github.com/san-kum/beerslab/internal/sim"
)

// Sweepable parameters. The rate parameters switch the matching control
// on at t=0; volume and solute_amount set the initial state.
const (
	ParamEvaporation  = "evaporation"
	ParamSolvent      = "solvent"
	ParamDrain        = "drain"
	ParamShaker       = "shaker"
	ParamDropper      = "dropper"
	ParamVolume       = "volume"
	ParamSoluteAmount = "solute_amount"
)

// ParameterSweep runs Base once per evenly spaced value of Param.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	ParamMin float64
	ParamMax float64
	NumSteps int
}

// SweepResult holds the outcome of one sweep point. TimeToSaturation is
// -1 when the run never saturated.
type SweepResult struct {
	ParamValue         float64          `json:"paramValue"`
	TimeToSaturation   float64          `json:"timeToSaturation"`
	SaturatedFor       float64          `json:"saturatedFor"`
	FinalConcentration float64          `json:"finalConcentration"`
	Concentration      analysis.Summary `json:"concentration"`
}

// Values returns the parameter values of the sweep.
func (p *ParameterSweep) Values() []float64 {
	if p.NumSteps <= 1 {
		return []float64{p.ParamMin}
	}
	step := (p.ParamMax - p.ParamMin) / float64(p.NumSteps-1)
	vals := make([]float64, p.NumSteps)
	for i := range vals {
		vals[i] = p.ParamMin + float64(i)*step
	}
	return vals
}

// Configs builds one configuration per sweep value.
func (p *ParameterSweep) Configs() ([]*config.Config, error) {
	if p.Base == nil {
		return nil, fmt.Errorf("sweep: no base configuration")
	}
	vals := p.Values()
	cfgs := make([]*config.Config, len(vals))
	for i, v := range vals {
		cfg := p.Base.Clone()
		if err := setParam(cfg, p.Param, v); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		cfgs[i] = cfg
	}
	return cfgs, nil
}

func setParam(cfg *config.Config, name string, v float64) error {
	on := func(target string) {
		cfg.Actions = append([]config.Action{{At: 0, Target: target, Value: v}}, cfg.Actions...)
	}
	switch name {
	case ParamEvaporation:
		on(config.TargetEvaporator)
	case ParamSolvent:
		on(config.TargetSolvent)
	case ParamDrain:
		on(config.TargetDrain)
	case ParamShaker:
		cfg.Limits.MaxShakerRate = v
		on(config.TargetShaker)
	case ParamDropper:
		cfg.Limits.MaxDropperRate = v
		on(config.TargetDropper)
	case ParamVolume:
		cfg.InitState.Volume = v
	case ParamSoluteAmount:
		cfg.InitState.SoluteAmount = v
	default:
		return fmt.Errorf("sweep: unknown parameter %q", name)
	}
	return nil
}

// RunSweep executes every sweep point on batch.
func RunSweep(ctx context.Context, sweep *ParameterSweep, batch *sim.Batch) ([]SweepResult, error) {
	cfgs, err := sweep.Configs()
	if err != nil {
		return nil, err
	}
	runs, err := batch.Run(ctx, cfgs)
	if err != nil {
		return nil, err
	}

	vals := sweep.Values()
	results := make([]SweepResult, len(runs))
	for i, r := range runs {
		sr := SweepResult{
			ParamValue:         vals[i],
			TimeToSaturation:   -1,
			FinalConcentration: r.Final().Concentration,
			Concentration: analysis.Summarize(r.Series(func(s concentration.Snapshot) float64 {
				return s.Concentration
			})),
		}
		if at, ok := analysis.TimeToSaturation(r); ok {
			sr.TimeToSaturation = at
		}
		for _, iv := range analysis.SaturationIntervals(r) {
			sr.SaturatedFor += iv.Duration()
		}
		results[i] = sr
	}
	return results, nil
}
