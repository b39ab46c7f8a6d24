package config

import "sort"

// Presets are canned lab sessions.
var Presets = map[string]*Config{
	"saturate": {
		Solute: "drinkMix", SoluteForm: "solid", Dt: 0.02, Duration: 30,
		InitState: InitStateConfig{Volume: 0.5},
		Actions: []Action{
			{At: 0, Target: TargetShaker, Value: 1},
			{At: 20, Target: TargetShaker, Value: 0},
		},
	},
	"evaporate": {
		Solute: "copperSulfate", SoluteForm: "solid", Dt: 0.02, Duration: 4,
		InitState: InitStateConfig{Volume: 0.8, SoluteAmount: 0.5},
		Actions: []Action{
			{At: 0, Target: TargetEvaporator, Value: 0.25},
		},
	},
	"dilute": {
		Solute: "potassiumPermanganate", SoluteForm: "solid", Dt: 0.02, Duration: 4,
		InitState: InitStateConfig{Volume: 0.4, SoluteAmount: 0.3},
		Actions: []Action{
			{At: 0, Target: TargetSolvent, Value: 0.25},
			{At: 2, Target: TargetSolvent, Value: 0},
		},
	},
	"dropper": {
		Solute: "nickelIIChloride", SoluteForm: "liquid", Dt: 0.02, Duration: 12,
		InitState: InitStateConfig{Volume: 0.3},
		Actions: []Action{
			{At: 0, Target: TargetDropper, Value: 1},
			{At: 10, Target: TargetDropper, Value: 0},
		},
	},
	"regulate": {
		Solute: "copperSulfate", SoluteForm: "solid", Dt: 0.02, Duration: 20,
		InitState: InitStateConfig{Volume: 0.4, SoluteAmount: 0.2},
		Control:   &ControlConfig{Target: 0.8, Kp: 1, Ki: 0.05},
	},
	"drain": {
		Solute: "cobaltChloride", SoluteForm: "solid", Dt: 0.02, Duration: 3,
		InitState: InitStateConfig{Volume: 0.6, SoluteAmount: 3},
		Actions: []Action{
			{At: 0.5, Target: TargetDrain, Value: 0.25},
		},
	},
}

// GetPreset returns a copy of the named preset with defaults filled in,
// or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Limits == (LimitsConfig{}) {
		cfg.Limits = DefaultLimits()
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
