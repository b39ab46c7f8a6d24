package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/beerslab/internal/concentration"
)

const (
	DefaultSolute     = "drinkMix"
	DefaultSoluteForm = "solid"
	DefaultDt         = 0.02
	DefaultDuration   = 30.0
	DefaultVolume     = concentration.DefaultInitialVolume
	DefaultLogLevel   = "info"
)

// Limit defaults are the model's own.
const (
	DefaultBeakerVolume       = concentration.DefaultBeakerVolume
	DefaultMaxSoluteAmount    = concentration.DefaultMaxSoluteAmount
	DefaultMaxEvaporationRate = concentration.DefaultMaxEvaporationRate
	DefaultMaxInflowRate      = concentration.DefaultMaxInflowRate
	DefaultMaxOutflowRate     = concentration.DefaultMaxOutflowRate
	DefaultMaxDropperRate     = concentration.DefaultMaxDropperFlowRate
	DefaultMaxShakerRate      = concentration.DefaultMaxShakerRate
)

// Action targets understood by the simulator.
const (
	TargetSolvent      = "solvent"
	TargetDrain        = "drain"
	TargetEvaporator   = "evaporator"
	TargetShaker       = "shaker"
	TargetDropper      = "dropper"
	TargetSolute       = "solute"
	TargetForm         = "form"
	TargetSoluteAmount = "solute_amount"
	TargetVolume       = "volume"
	TargetRemove       = "remove"
	TargetReset        = "reset"
)

var actionTargets = map[string]bool{
	TargetSolvent: true, TargetDrain: true, TargetEvaporator: true,
	TargetShaker: true, TargetDropper: true, TargetSolute: true,
	TargetForm: true, TargetSoluteAmount: true, TargetVolume: true,
	TargetRemove: true, TargetReset: true,
}

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Solute     string          `yaml:"solute" toml:"solute"`
	SoluteForm string          `yaml:"solute_form" toml:"solute_form"`
	Dt         float64         `yaml:"dt" toml:"dt"`
	Duration   float64         `yaml:"duration" toml:"duration"`
	Seed       int64           `yaml:"seed" toml:"seed"`
	LogLevel   string          `yaml:"log_level" toml:"log_level"`
	InitState  InitStateConfig `yaml:"init_state" toml:"init_state"`
	Limits     LimitsConfig    `yaml:"limits" toml:"limits"`
	Actions    []Action        `yaml:"actions,omitempty" toml:"actions,omitempty"`
	Control    *ControlConfig  `yaml:"control,omitempty" toml:"control,omitempty"`
}

// ControlConfig enables closed-loop regulation toward a target
// concentration in mol/L.
type ControlConfig struct {
	Target float64 `yaml:"target" toml:"target"`
	Kp     float64 `yaml:"kp" toml:"kp"`
	Ki     float64 `yaml:"ki" toml:"ki"`
	Kd     float64 `yaml:"kd" toml:"kd"`
}

type InitStateConfig struct {
	Volume       float64 `yaml:"volume" toml:"volume"`               // L
	SoluteAmount float64 `yaml:"solute_amount" toml:"solute_amount"` // mol
}

type LimitsConfig struct {
	BeakerVolume       float64 `yaml:"beaker_volume" toml:"beaker_volume"`
	MaxSoluteAmount    float64 `yaml:"max_solute_amount" toml:"max_solute_amount"`
	MaxEvaporationRate float64 `yaml:"max_evaporation_rate" toml:"max_evaporation_rate"`
	MaxInflowRate      float64 `yaml:"max_inflow_rate" toml:"max_inflow_rate"`
	MaxOutflowRate     float64 `yaml:"max_outflow_rate" toml:"max_outflow_rate"`
	MaxDropperRate     float64 `yaml:"max_dropper_rate" toml:"max_dropper_rate"`
	MaxShakerRate      float64 `yaml:"max_shaker_rate" toml:"max_shaker_rate"`
}

// Action changes one control at a given time. Value is a rate for the
// faucets and the evaporator, an on/off switch (non-zero is on) for the
// shaker and dropper, and an amount or volume for the direct setters.
// Name carries the solute key or solute form.
type Action struct {
	At     float64 `yaml:"at" toml:"at"`
	Target string  `yaml:"target" toml:"target"`
	Value  float64 `yaml:"value,omitempty" toml:"value,omitempty"`
	Name   string  `yaml:"name,omitempty" toml:"name,omitempty"`
}

func (a Action) String() string {
	if a.Name != "" {
		return fmt.Sprintf("t=%g %s=%s", a.At, a.Target, a.Name)
	}
	return fmt.Sprintf("t=%g %s=%g", a.At, a.Target, a.Value)
}

func DefaultLimits() LimitsConfig {
	return LimitsConfig{
		BeakerVolume:       DefaultBeakerVolume,
		MaxSoluteAmount:    DefaultMaxSoluteAmount,
		MaxEvaporationRate: DefaultMaxEvaporationRate,
		MaxInflowRate:      DefaultMaxInflowRate,
		MaxOutflowRate:     DefaultMaxOutflowRate,
		MaxDropperRate:     DefaultMaxDropperRate,
		MaxShakerRate:      DefaultMaxShakerRate,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Solute:     DefaultSolute,
		SoluteForm: DefaultSoluteForm,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		LogLevel:   DefaultLogLevel,
		InitState: InitStateConfig{
			Volume: DefaultVolume,
		},
		Limits: DefaultLimits(),
	}
}

// Load reads a YAML or, for a .toml extension, TOML file on top of the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Actions = append([]Action(nil), c.Actions...)
	if c.Control != nil {
		ctrl := *c.Control
		out.Control = &ctrl
	}
	return &out
}

// Validate checks everything that does not need the solute catalog.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Solute == "" {
		bad("solute is required")
	}
	if c.SoluteForm != "solid" && c.SoluteForm != "liquid" {
		bad("solute_form must be solid or liquid, got %q", c.SoluteForm)
	}
	if c.Dt <= 0 {
		bad("dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		bad("duration must be positive, got %g", c.Duration)
	}
	if c.Dt > c.Duration {
		bad("dt %g exceeds duration %g", c.Dt, c.Duration)
	}

	l := c.Limits
	for _, lim := range []struct {
		name string
		v    float64
	}{
		{"beaker_volume", l.BeakerVolume},
		{"max_solute_amount", l.MaxSoluteAmount},
		{"max_evaporation_rate", l.MaxEvaporationRate},
		{"max_inflow_rate", l.MaxInflowRate},
		{"max_outflow_rate", l.MaxOutflowRate},
		{"max_dropper_rate", l.MaxDropperRate},
		{"max_shaker_rate", l.MaxShakerRate},
	} {
		if lim.v <= 0 {
			bad("limits.%s must be positive, got %g", lim.name, lim.v)
		}
	}
	if c.InitState.Volume < 0 || c.InitState.Volume > l.BeakerVolume {
		bad("init_state.volume %g outside [0, %g]", c.InitState.Volume, l.BeakerVolume)
	}
	if c.InitState.SoluteAmount < 0 || c.InitState.SoluteAmount > l.MaxSoluteAmount {
		bad("init_state.solute_amount %g outside [0, %g]", c.InitState.SoluteAmount, l.MaxSoluteAmount)
	}

	for i, a := range c.Actions {
		if !actionTargets[a.Target] {
			bad("actions[%d]: unknown target %q", i, a.Target)
		}
		if a.At < 0 {
			bad("actions[%d]: negative time %g", i, a.At)
		}
		if (a.Target == TargetSolute || a.Target == TargetForm) && a.Name == "" {
			bad("actions[%d]: %s needs a name", i, a.Target)
		}
	}
	if ctrl := c.Control; ctrl != nil {
		if ctrl.Target < 0 {
			bad("control.target must not be negative, got %g", ctrl.Target)
		}
		if ctrl.Kp == 0 && ctrl.Ki == 0 && ctrl.Kd == 0 {
			bad("control needs at least one non-zero gain")
		}
	}
	return errors.Join(errs...)
}
