package optim

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/concentration"
	"github.com/san-kum/beerslab/internal/config"
	"github.com/san-kum/beerslab/internal/sim"
)

func testBatch() *sim.Batch {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return sim.NewBatch(chem.DefaultCatalog(), nil, 2, log)
}

func TestNewGridSearchRejectsBadInput(t *testing.T) {
	_, err := NewGridSearch([]string{GainKp}, nil)
	assert.Error(t, err)
	_, err = NewGridSearch([]string{"gain"}, [][]float64{{1}})
	assert.Error(t, err)
	_, err = NewGridSearch([]string{GainKp}, [][]float64{{}})
	assert.Error(t, err)
}

func TestSearchPrefersStrongerGain(t *testing.T) {
	base := config.DefaultConfig()
	base.InitState.SoluteAmount = 2
	base.Duration = 4
	base.Control = &config.ControlConfig{Target: 3, Kp: 1}

	g, err := NewGridSearch([]string{GainKp, GainKi}, [][]float64{{0, 0.05, 1}, {0}})
	require.NoError(t, err)

	best, all, err := g.Search(context.Background(), base, testBatch())
	require.NoError(t, err)

	// kp=0, ki=0 fails validation and is skipped
	assert.Len(t, all, 2)
	assert.Equal(t, 1.0, best.Params[GainKp])
	assert.Less(t, best.Cost, all[0].Cost)
}

func TestSearchNeedsControl(t *testing.T) {
	g, err := NewGridSearch([]string{GainKp}, [][]float64{{1}})
	require.NoError(t, err)

	_, _, err = g.Search(context.Background(), config.DefaultConfig(), testBatch())
	assert.Error(t, err)
}

func TestTrackingError(t *testing.T) {
	r := &sim.Result{Samples: []concentration.Snapshot{
		{Concentration: 1}, {Concentration: 3}, {Concentration: 2},
	}}
	assert.InDelta(t, 1.0, TrackingError(r, 2), 1e-12)
}
