package automation

import (
	"context"
	"math/rand"
	"time"

	"github.com/san-kum/beerslab/internal/config"
	"github.com/san-kum/beerslab/internal/sim"
)

// MonteCarloConfig perturbs the initial volume and solute amount of Base
// uniformly by up to ±Perturbation (relative) per trial.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult is the outcome of one trial.
type MonteCarloResult struct {
	TrialID       int     `json:"trial"`
	Volume        float64 `json:"volume"`
	SoluteAmount  float64 `json:"soluteAmount"`
	Concentration float64 `json:"finalConcentration"`
	Saturated     bool    `json:"saturated"`
}

// RunMonteCarlo runs the trials on batch. A zero seed uses the clock.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, batch *sim.Batch) ([]MonteCarloResult, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	perturb := func(v float64) float64 {
		return v * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
	}

	cfgs := make([]*config.Config, cfg.NumTrials)
	for i := range cfgs {
		c := cfg.Base.Clone()
		c.InitState.Volume = perturb(c.InitState.Volume)
		c.InitState.SoluteAmount = perturb(c.InitState.SoluteAmount)
		if c.InitState.Volume > c.Limits.BeakerVolume {
			c.InitState.Volume = c.Limits.BeakerVolume
		}
		c.Seed = rng.Int63()
		cfgs[i] = c
	}

	runs, err := batch.Run(ctx, cfgs)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		final := r.Final()
		results[i] = MonteCarloResult{
			TrialID:       i,
			Volume:        cfgs[i].InitState.Volume,
			SoluteAmount:  cfgs[i].InitState.SoluteAmount,
			Concentration: final.Concentration,
			Saturated:     final.Saturated,
		}
	}
	return results, nil
}

// SaturatedFraction is the share of trials that ended saturated.
func SaturatedFraction(results []MonteCarloResult) float64 {
	if len(results) == 0 {
		return 0
	}
	n := 0
	for _, r := range results {
		if r.Saturated {
			n++
		}
	}
	return float64(n) / float64(len(results))
}
