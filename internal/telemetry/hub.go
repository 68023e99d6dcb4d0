package telemetry

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/roach88/laneracer/internal/race"
)

// DefaultClientBuffer is the number of frames queued per subscriber before
// it is considered too slow and dropped.
const DefaultClientBuffer = 16

// Hub keeps the latest snapshot and broadcasts it to subscribers.
//
// Thread-safety: all methods are safe for concurrent use. Render never
// blocks on a subscriber.
type Hub struct {
	mu      sync.Mutex
	latest  *race.Snapshot
	frame   []byte
	clients map[*client]struct{}
	closed  bool
	frames  uint64
	dropped uint64

	buffer int
	logger *slog.Logger
}

// client is one websocket subscriber. send is closed exactly once, by the
// hub, when the client is removed.
type client struct {
	send chan []byte
	addr string
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithClientBuffer sets the per-subscriber queue length.
func WithClientBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithHubLogger sets the logger. Default: slog.Default().
func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = l
	}
}

// NewHub returns an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		buffer:  DefaultClientBuffer,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Render stores snap as the latest frame and queues it for every
// subscriber. Subscribers with a full queue are dropped.
func (h *Hub) Render(snap *race.Snapshot) {
	if snap == nil {
		return
	}
	frame, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("failed to encode snapshot", "tick", snap.Tick, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = snap
	h.frame = frame
	h.frames++

	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.dropped++
			h.removeLocked(c)
			h.logger.Warn("dropping slow telemetry client", "remote", c.addr, "tick", snap.Tick)
		}
	}
}

// Latest returns a copy of the latest snapshot, or nil before the first
// frame.
func (h *Hub) Latest() *race.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest.Clone()
}

// Stats reports frames rendered, current subscribers and subscribers dropped
// for being slow.
func (h *Hub) Stats() (frames uint64, clients int, dropped uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames, len(h.clients), h.dropped
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// subscribe registers a client and queues the latest frame for it. It
// returns nil once the hub is closed.
func (h *Hub) subscribe(addr string) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	c := &client{send: make(chan []byte, h.buffer), addr: addr}
	if h.frame != nil {
		c.send <- h.frame
	}
	h.clients[c] = struct{}{}
	h.logger.Debug("telemetry client connected", "remote", addr, "clients", len(h.clients))
	return c
}

// unsubscribe removes c if it is still registered.
func (h *Hub) unsubscribe(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}
