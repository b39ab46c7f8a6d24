package sim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/concentration"
	"github.com/san-kum/beerslab/internal/config"
	"github.com/san-kum/beerslab/internal/control"
)

// actionEpsilon absorbs float drift when matching action times to steps.
const actionEpsilon = 1e-9

type Simulator struct {
	catalog    *chem.Catalog
	metrics    []Metric
	observers  []Observer
	controller Controller
	log        logrus.FieldLogger
}

func New(catalog *chem.Catalog, log logrus.FieldLogger) *Simulator {
	if catalog == nil {
		catalog = chem.DefaultCatalog()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Simulator{
		catalog:   catalog,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       log,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetController installs a controller that takes precedence over the
// control section of a configuration.
func (s *Simulator) SetController(c Controller) { s.controller = c }

func (s *Simulator) controllerFor(cfg *config.Config) Controller {
	if s.controller != nil {
		return s.controller
	}
	if c := cfg.Control; c != nil {
		return control.NewRegulator(control.NewPID(c.Kp, c.Ki, c.Kd, c.Target))
	}
	return nil
}

// NewModel builds the model a configuration describes.
func (s *Simulator) NewModel(cfg *config.Config) (*concentration.Model, error) {
	mc, err := ModelConfig(cfg, s.catalog, s.log)
	if err != nil {
		return nil, err
	}
	return concentration.NewModel(mc)
}

// Run builds a fresh model and runs cfg on it.
func (s *Simulator) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := s.NewModel(cfg)
	if err != nil {
		return nil, err
	}
	return s.RunModel(ctx, m, cfg)
}

// RunModel steps m for cfg.Duration, applying cfg.Actions when their time
// comes. A sample is recorded before the first step and after each step.
func (s *Simulator) RunModel(ctx context.Context, m *concentration.Model, cfg *config.Config) (*Result, error) {
	if err := validateTiming(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Config:  cfg,
		Times:   make([]float64, 0, steps+1),
		Samples: make([]concentration.Snapshot, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, metric := range s.metrics {
		metric.Reset()
	}

	ctrl := s.controllerFor(cfg)
	if ctrl != nil {
		ctrl.Reset()
	}

	actions := append([]config.Action(nil), cfg.Actions...)
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].At < actions[j].At })
	next := 0

	log := s.log.WithFields(logrus.Fields{"solute": cfg.Solute, "dt": cfg.Dt, "duration": cfg.Duration})
	log.Debug("run started")

	t := 0.0
	s.record(result, m.Snapshot(), t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for next < len(actions) && actions[next].At <= t+actionEpsilon {
			a := actions[next]
			if err := Apply(m, a); err != nil {
				return result, SimError{Time: t, Step: i, Message: "apply " + a.String(), Err: err}
			}
			log.WithField("action", a.String()).Debug("action applied")
			result.Applied = append(result.Applied, a)
			next++
		}

		if ctrl != nil {
			if err := ctrl.Control(m, t); err != nil {
				return result, SimError{Time: t, Step: i, Message: "controller", Err: err}
			}
		}

		if err := m.Step(cfg.Dt); err != nil {
			return result, SimError{Time: t, Step: i, Message: "model step", Err: err}
		}
		t = float64(i+1) * cfg.Dt
		result.StepsTaken++
		s.record(result, m.Snapshot(), t)
	}

	for _, metric := range s.metrics {
		result.Metrics[metric.Name()] = metric.Value()
	}

	final := result.Final()
	log.WithFields(logrus.Fields{
		"steps":         result.StepsTaken,
		"volume":        final.Volume,
		"concentration": final.Concentration,
		"saturated":     final.Saturated,
	}).Info("run finished")

	return result, nil
}

func (s *Simulator) record(r *Result, snap concentration.Snapshot, t float64) {
	r.Samples = append(r.Samples, snap)
	r.Times = append(r.Times, t)
	for _, metric := range s.metrics {
		metric.Observe(snap, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(snap, t)
	}
}

func validateTiming(cfg *config.Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

// RunWithCallback steps m until the duration elapses or callback returns
// false. It is used by interactive front ends that render as they go.
func (s *Simulator) RunWithCallback(ctx context.Context, m *concentration.Model, cfg *config.Config, callback func(concentration.Snapshot, float64) bool) error {
	if err := validateTiming(cfg); err != nil {
		return err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		if !callback(m.Snapshot(), t) || i == steps {
			return nil
		}
		if err := m.Step(cfg.Dt); err != nil {
			return SimError{Time: t, Step: i, Message: "model step", Err: err}
		}
	}
	return nil
}
