package feed

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/concentration"
	"github.com/san-kum/beerslab/internal/config"
	"github.com/san-kum/beerslab/internal/sim"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newSession(t *testing.T) *Session {
	t.Helper()
	m, err := sim.New(chem.DefaultCatalog(), quietLogger()).NewModel(config.DefaultConfig())
	require.NoError(t, err)
	return NewSession(m, 0.02, quietLogger())
}

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func TestSessionStepEmitsParticleEventsBeforeSnapshot(t *testing.T) {
	s := newSession(t)

	require.NoError(t, s.Handle(Command{Target: config.TargetSoluteAmount, Value: 4}))
	events, err := s.Step()
	require.NoError(t, err)
	require.Greater(t, len(events), 1)

	last := events[len(events)-1]
	assert.Equal(t, EventSnapshot, last.Type)
	require.NotNil(t, last.Snapshot)
	assert.True(t, last.Snapshot.Saturated)
	assert.InDelta(t, 0.02, last.Time, 1e-12)

	for _, e := range events[:len(events)-1] {
		assert.Equal(t, EventParticleAdded, e.Type)
		require.NotNil(t, e.Particle)
		assert.Equal(t, "drinkMix", e.Particle.Solute)
	}
	assert.Equal(t, last.Snapshot.Particles, len(events)-1)

	// pending events are consumed
	events, err = s.Step()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestSessionParticleRemoval(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Handle(Command{Target: config.TargetSoluteAmount, Value: 4}))
	_, err := s.Step()
	require.NoError(t, err)

	require.NoError(t, s.Handle(Command{Target: config.TargetRemove}))
	events, err := s.Step()
	require.NoError(t, err)

	require.Greater(t, len(events), 1)
	assert.Equal(t, EventParticleRemoved, events[0].Type)
	assert.Equal(t, 0, events[len(events)-1].Snapshot.Particles)
}

func TestSessionRejectsBadCommand(t *testing.T) {
	s := newSession(t)

	assert.Error(t, s.Handle(Command{Target: "thermostat", Value: 1}))
	assert.Error(t, s.Handle(Command{Target: config.TargetSolute, Name: "unobtainium"}))

	events, err := s.Step()
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, EventError, events[0].Type)
	assert.NotEmpty(t, events[0].Error)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// blockingPublisher never accepts an event and waits for its context.
type blockingPublisher struct {
	calls atomic.Int32
}

func (b *blockingPublisher) Publish(ctx context.Context, _ Event) error {
	b.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestSessionRunDropsFramesForSlowPublisher(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Handle(Command{Target: config.TargetSolvent, Value: 0.25}))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	pub := &blockingPublisher{}
	err := s.Run(ctx, pub, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// one attempt per frame, and the model kept stepping
	assert.Greater(t, pub.calls.Load(), int32(3))
	_, now := s.Snapshot()
	assert.Greater(t, now, 0.0)
}

func TestSessionRun(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Handle(Command{Target: config.TargetSolvent, Value: 0.25}))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	rec := &recorder{}
	err := s.Run(ctx, rec, 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.events)

	snap, now := s.Snapshot()
	assert.Greater(t, now, 0.0)
	assert.Greater(t, snap.Volume, 0.5)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil, quietLogger())
	defer hub.Close()
	conn := dial(t, hub)

	snap := concentration.Snapshot{Solute: "copperSulfate", Volume: 0.5}
	require.NoError(t, hub.Publish(context.Background(), Event{Type: EventSnapshot, Time: 1, Snapshot: &snap}))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, EventSnapshot, got.Type)
	require.NotNil(t, got.Snapshot)
	assert.Equal(t, "copperSulfate", got.Snapshot.Solute)
	assert.Nil(t, got.Particle)
}

func TestHubForwardsCommands(t *testing.T) {
	cmds := make(chan Command, 1)
	hub := NewHub(func(c Command) { cmds <- c }, quietLogger())
	defer hub.Close()
	conn := dial(t, hub)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(Command{Target: config.TargetEvaporator, Value: 0.1}))

	select {
	case c := <-cmds:
		assert.Equal(t, Command{Target: config.TargetEvaporator, Value: 0.1}, c)
	case <-time.After(time.Second):
		t.Fatal("command not forwarded")
	}
}

func TestHubClientDisconnect(t *testing.T) {
	hub := NewHub(nil, quietLogger())
	defer hub.Close()
	conn := dial(t, hub)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := NewHub(nil, quietLogger())
	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())
	assert.NoError(t, hub.Publish(context.Background(), Event{Type: EventSnapshot}))
}
