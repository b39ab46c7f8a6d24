package automation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/beerslab/internal/config"
	"github.com/san-kum/beerslab/internal/sim"
	"github.com/san-kum/beerslab/internal/storage"
)

// Scenario defines a scripted sequence of lab sessions.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. It starts from a preset, or from the
// defaults when Preset is empty, and overrides whatever is set.
type ScenarioStep struct {
	Preset       string          `yaml:"preset"`
	Solute       string          `yaml:"solute"`
	SoluteForm   string          `yaml:"solute_form"`
	Duration     float64         `yaml:"duration"`
	Dt           float64         `yaml:"dt"`
	Seed         int64           `yaml:"seed"`
	Volume       *float64        `yaml:"volume"`
	SoluteAmount *float64        `yaml:"solute_amount"`
	Actions      []config.Action `yaml:"actions"`
	// SaveAs exports the result; .csv writes samples, anything else JSON.
	SaveAs string `yaml:"save_as"`
	// Store keeps the run in the data directory.
	Store bool `yaml:"store"`
}

// StepResult pairs a finished run with where it was kept.
type StepResult struct {
	Result *sim.Result
	RunID  string
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	return &scenario, nil
}

// Config resolves the step into a validated run configuration.
func (st ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if st.Preset != "" {
		if cfg = config.GetPreset(st.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", st.Preset)
		}
	}
	if st.Solute != "" {
		cfg.Solute = st.Solute
	}
	if st.SoluteForm != "" {
		cfg.SoluteForm = st.SoluteForm
	}
	if st.Duration > 0 {
		cfg.Duration = st.Duration
	}
	if st.Dt > 0 {
		cfg.Dt = st.Dt
	}
	if st.Seed != 0 {
		cfg.Seed = st.Seed
	}
	if st.Volume != nil {
		cfg.InitState.Volume = *st.Volume
	}
	if st.SoluteAmount != nil {
		cfg.InitState.SoluteAmount = *st.SoluteAmount
	}
	if len(st.Actions) > 0 {
		cfg.Actions = append([]config.Action(nil), st.Actions...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes the steps in order and stops at the first error.
// store may be nil when no step asks to be stored.
func RunScenario(ctx context.Context, scenario *Scenario, s *sim.Simulator, store *storage.Store, log logrus.FieldLogger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.WithFields(logrus.Fields{
			"scenario": scenario.Name,
			"step":     fmt.Sprintf("%d/%d", i+1, len(scenario.Steps)),
			"solute":   cfg.Solute,
		}).Info("running step")

		result, err := s.Run(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Result: result}
		if step.Store {
			if store == nil {
				return results, fmt.Errorf("step %d: no store configured", i+1)
			}
			if sr.RunID, err = store.Save(cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		if step.SaveAs != "" {
			if err := export(step.SaveAs, result); err != nil {
				return results, fmt.Errorf("step %d export: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

func export(path string, result *sim.Result) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return storage.ExportCSV(path, result)
	}
	return storage.ExportJSON(path, result)
}
