package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/concentration"
	"github.com/san-kum/beerslab/internal/config"
)

// ModelConfig translates a run configuration into model options.
func ModelConfig(cfg *config.Config, catalog *chem.Catalog, log logrus.FieldLogger) (concentration.ModelConfig, error) {
	solute, err := catalog.Lookup(cfg.Solute)
	if err != nil {
		return concentration.ModelConfig{}, err
	}
	form, err := concentration.ParseSoluteForm(cfg.SoluteForm)
	if err != nil {
		return concentration.ModelConfig{}, err
	}
	l := cfg.Limits
	return concentration.ModelConfig{
		Catalog:            catalog,
		Solute:             solute,
		SoluteAmount:       cfg.InitState.SoluteAmount,
		Volume:             cfg.InitState.Volume,
		SoluteForm:         form,
		BeakerVolume:       l.BeakerVolume,
		MaxSoluteAmount:    l.MaxSoluteAmount,
		MaxEvaporationRate: l.MaxEvaporationRate,
		MaxInflowRate:      l.MaxInflowRate,
		MaxOutflowRate:     l.MaxOutflowRate,
		MaxDropperFlowRate: l.MaxDropperRate,
		MaxShakerRate:      l.MaxShakerRate,
		Rand:               rand.New(rand.NewSource(cfg.Seed)),
		Logger:             log,
	}, nil
}

// Apply performs one scripted action on the model. Rate changes on a
// disabled faucet or evaporator are ignored, as they are for a user.
func Apply(m *concentration.Model, a config.Action) error {
	switch a.Target {
	case config.TargetSolvent:
		return m.SolventFaucet.SetFlowRate(a.Value)
	case config.TargetDrain:
		return m.DrainFaucet.SetFlowRate(a.Value)
	case config.TargetEvaporator:
		return m.Evaporator.SetEvaporationRate(a.Value)
	case config.TargetShaker:
		return m.Shaker.Dispensing.Set(a.Value != 0)
	case config.TargetDropper:
		return m.Dropper.Dispensing.Set(a.Value != 0)
	case config.TargetSolute:
		return m.SelectSoluteByKey(a.Name)
	case config.TargetForm:
		return m.SetSoluteForm(concentration.SoluteForm(a.Name))
	case config.TargetSoluteAmount:
		return m.Solution.SetSoluteAmount(a.Value)
	case config.TargetVolume:
		return m.Solution.SetVolume(a.Value)
	case config.TargetRemove:
		return m.RemoveSolute()
	case config.TargetReset:
		return m.Reset()
	default:
		return fmt.Errorf("sim: unknown action target %q", a.Target)
	}
}
