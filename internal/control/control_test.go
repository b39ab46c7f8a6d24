package control_test

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/config"
	"github.com/san-kum/beerslab/internal/control"
	"github.com/san-kum/beerslab/internal/sim"
)

func TestPIDCompute(t *testing.T) {
	pid := control.NewPID(2, 1, 0.5, 3)

	// first call is proportional only
	assert.Equal(t, 2.0, pid.Compute(2, 0))

	// err=1 over dt=1: integral 1, derivative 0
	assert.InDelta(t, 3.0, pid.Compute(2, 1), 1e-12)

	// err=0: integral stays 1, derivative -1
	assert.InDelta(t, 0.5, pid.Compute(3, 2), 1e-12)

	pid.Reset()
	assert.Equal(t, -2.0, pid.Compute(4, 10))
}

func TestPIDSetParam(t *testing.T) {
	pid := control.NewPID(1, 0, 0, 1)
	pid.SetParam("Target", 2.5)
	pid.SetParam("Kd", 0.3)
	pid.SetParam("bogus", 9)

	params := pid.GetParams()
	assert.Equal(t, 2.5, params["Target"])
	assert.Equal(t, 0.3, params["Kd"])
	assert.Len(t, params, 4)
}

func regulatedRun(t *testing.T, amount, target float64) *sim.Result {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := config.DefaultConfig()
	cfg.Solute = "drinkMix"
	cfg.InitState.Volume = 0.5
	cfg.InitState.SoluteAmount = amount
	cfg.Dt = 0.02
	cfg.Duration = 10
	cfg.Control = &config.ControlConfig{Target: target, Kp: 1}

	result, err := sim.New(chem.DefaultCatalog(), log).Run(context.Background(), cfg)
	require.NoError(t, err)
	return result
}

func TestRegulatorDilutes(t *testing.T) {
	result := regulatedRun(t, 2, 3)
	final := result.Final()

	assert.InDelta(t, 3.0, final.Concentration, 0.05)
	assert.Greater(t, final.Volume, 0.5)
	assert.Zero(t, final.EvaporationRate)
}

func TestRegulatorConcentrates(t *testing.T) {
	result := regulatedRun(t, 1, 3)
	final := result.Final()

	assert.InDelta(t, 3.0, final.Concentration, 0.05)
	assert.Less(t, final.Volume, 0.5)
	assert.Zero(t, final.SolventFlowRate)
}

func TestSetControllerOverridesConfig(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	s := sim.New(chem.DefaultCatalog(), log)
	reg := control.NewRegulator(control.NewPID(1, 0, 0, 1))
	s.SetController(reg)

	cfg := config.DefaultConfig()
	cfg.InitState.SoluteAmount = 1
	cfg.Duration = 10
	cfg.Control = &config.ControlConfig{Target: 3, Kp: 1}

	result, err := s.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Final().Concentration, 0.05)
}
