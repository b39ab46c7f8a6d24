// Package optim tunes regulator gains by exhaustive grid search.
package optim

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/beerslab/internal/config"
	"github.com/san-kum/beerslab/internal/sim"
)

// Gain names accepted by GridSearch.
const (
	GainKp = "kp"
	GainKi = "ki"
	GainKd = "kd"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if name != GainKp && name != GainKi && name != GainKd {
			return nil, fmt.Errorf("optim: unknown gain %q", name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Candidate is one point of the grid and its score.
type Candidate struct {
	Params map[string]float64
	Cost   float64
}

// Search runs base once per grid point and returns the candidate with the
// lowest tracking error. Candidates whose configuration is invalid, such
// as all-zero gains, are skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, batch *sim.Batch) (Candidate, []Candidate, error) {
	if base.Control == nil {
		return Candidate{}, nil, fmt.Errorf("optim: base config has no control target")
	}

	var points []map[string]float64
	g.searchRecursive(0, make(map[string]float64), &points)

	cfgs := make([]*config.Config, 0, len(points))
	kept := make([]map[string]float64, 0, len(points))
	for _, p := range points {
		cfg := base.Clone()
		for name, v := range p {
			setGain(cfg.Control, name, v)
		}
		if cfg.Validate() != nil {
			continue
		}
		cfgs = append(cfgs, cfg)
		kept = append(kept, p)
	}
	if len(cfgs) == 0 {
		return Candidate{}, nil, fmt.Errorf("optim: no valid grid points")
	}

	results, err := batch.Run(ctx, cfgs)
	if err != nil {
		return Candidate{}, nil, err
	}

	best := Candidate{Cost: math.Inf(1)}
	all := make([]Candidate, len(results))
	for i, r := range results {
		all[i] = Candidate{Params: kept[i], Cost: TrackingError(r, base.Control.Target)}
		if all[i].Cost < best.Cost {
			best = all[i]
		}
	}
	return best, all, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(depth+1, newParams, out)
	}
}

func setGain(c *config.ControlConfig, name string, v float64) {
	switch name {
	case GainKp:
		c.Kp = v
	case GainKi:
		c.Ki = v
	case GainKd:
		c.Kd = v
	}
}

// TrackingError is the mean absolute distance of the concentration from
// target over all samples.
func TrackingError(r *sim.Result, target float64) float64 {
	if len(r.Samples) == 0 {
		return math.Inf(1)
	}
	diffs := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		diffs[i] = math.Abs(s.Concentration - target)
	}
	return stat.Mean(diffs, nil)
}
