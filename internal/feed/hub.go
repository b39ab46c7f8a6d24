package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by Publish when the broadcaster falls behind.
var ErrQueueFull = errors.New("feed: event queue full")

// Hub fans events out to every connected WebSocket client and hands
// client commands to a handler.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
	onCommand  func(Command)
	log        logrus.FieldLogger
}

// NewHub starts the broadcaster. onCommand may be nil, in which case
// client messages are read and dropped.
func NewHub(onCommand func(Command), log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		onCommand: onCommand,
		log:       log.WithField("component", "feed"),
	}

	h.wg.Add(1)
	go h.run()

	return h
}

// ServeHTTP upgrades the request and serves the client until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("upgrade failed")
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}
	h.log.WithField("remote", r.RemoteAddr).Info("client connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.log.WithError(err).Debug("bad command")
			continue
		}
		if h.onCommand != nil {
			h.onCommand(cmd)
		}
	}

	select {
	case h.unregister <- conn:
	case <-h.done:
	}
	h.log.WithField("remote", r.RemoteAddr).Info("client disconnected")
}

// publishTimeout bounds how long Publish retries a full queue.
const publishTimeout = time.Second

// Publish queues e for every client, backing off while the queue is full.
func (h *Hub) Publish(ctx context.Context, e Event) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxElapsedTime = publishTimeout

	return backoff.Retry(func() error {
		select {
		case <-h.done:
			return nil
		case h.broadcast <- e:
			return nil
		default:
			return ErrQueueFull
		}
	}, backoff.WithContext(b, ctx))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case e := <-h.broadcast:
			data, err := e.JSON()
			if err != nil {
				h.log.WithError(err).Error("encode event")
				continue
			}
			h.send(data)
		}
	}
}

// send writes outside the lock and drops clients that fail.
func (h *Hub) send(data []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	var failed []*websocket.Conn
	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = append(failed, conn)
			conn.Close()
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	}
}

// Close disconnects every client and stops the broadcaster.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
	return nil
}
