package feed

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/beerslab/internal/concentration"
	"github.com/san-kum/beerslab/internal/config"
	"github.com/san-kum/beerslab/internal/sim"
)

// Publisher accepts feed events. *Hub is the production implementation.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Session owns a model and advances it in real time. The model is not
// safe for concurrent use, so every access goes through the session lock.
type Session struct {
	mu      sync.Mutex
	model   *concentration.Model
	dt      float64
	t       float64
	pending []Event
	log     logrus.FieldLogger
}

func NewSession(m *concentration.Model, dt float64, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Session{model: m, dt: dt, log: log.WithField("component", "session")}
	m.Precipitate.OnParticleAdded(func(p *concentration.PrecipitateParticle) {
		s.pending = append(s.pending, Event{Type: EventParticleAdded, Time: s.t, Particle: particleOf(p)})
	})
	m.Precipitate.OnParticleRemoved(func(p *concentration.PrecipitateParticle) {
		s.pending = append(s.pending, Event{Type: EventParticleRemoved, Time: s.t, Particle: particleOf(p)})
	})
	return s
}

// Handle applies a client command.
func (s *Session) Handle(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := config.Action{At: s.t, Target: cmd.Target, Value: cmd.Value, Name: cmd.Name}
	if err := sim.Apply(s.model, a); err != nil {
		s.log.WithError(err).WithField("action", a.String()).Warn("command rejected")
		s.pending = append(s.pending, Event{Type: EventError, Time: s.t, Error: err.Error()})
		return err
	}
	s.log.WithField("action", a.String()).Debug("command applied")
	return nil
}

// Step advances the model by one dt and returns the events it produced,
// particle events first and the snapshot last.
func (s *Session) Step() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.model.Step(s.dt); err != nil {
		return nil, err
	}
	s.t += s.dt

	snap := s.model.Snapshot()
	events := append(s.pending, Event{Type: EventSnapshot, Time: s.t, Snapshot: &snap})
	s.pending = nil
	return events, nil
}

// Snapshot returns the current state without stepping.
func (s *Session) Snapshot() (concentration.Snapshot, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Snapshot(), s.t
}

// Run steps once per interval and publishes the events until ctx is done.
// Publishing a frame may take at most one interval; whatever is still
// queued then is dropped so a slow hub cannot stall the model.
func (s *Session) Run(ctx context.Context, pub Publisher, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		events, err := s.Step()
		if err != nil {
			return err
		}
		if err := s.publish(ctx, pub, events, interval); err != nil {
			return err
		}
	}
}

func (s *Session) publish(ctx context.Context, pub Publisher, events []Event, budget time.Duration) error {
	frameCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	for i, e := range events {
		if err := pub.Publish(frameCtx, e); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.WithError(err).WithField("dropped", len(events)-i).Warn("frame dropped")
			return nil
		}
	}
	return nil
}
