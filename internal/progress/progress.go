// Package progress streams a build's engine.State transitions to
// connected websocket clients, following the hub/client pattern of the
// composition engine's websocket server but narrowed to one build per
// connection rather than a general pub/sub layer manager.
package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/arxos/bf2/facade/engine"
)

// ServerConfig tunes the websocket write deadline and read size limit.
// PingInterval is not read: the hub sends no keepalive pings.
type ServerConfig struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
}

// DefaultServerConfig matches the composition engine's websocket
// defaults, scaled down for a single-build stream.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		PingInterval:   30 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 64 * 1024,
	}
}

// StatusMessage is one JSON frame pushed to a subscribed client.
type StatusMessage struct {
	BuildID uuid.UUID   `json:"build_id"`
	State   string      `json:"state"`
	Error   string      `json:"error,omitempty"`
}

// Hub tracks the set of clients subscribed to each build id and
// broadcasts StatusMessages to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*client]bool
	config  ServerConfig
	upgrader websocket.Upgrader
}

type client struct {
	conn *websocket.Conn
	send chan StatusMessage
}

// NewHub creates an empty Hub.
func NewHub(cfg ServerConfig) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*client]bool),
		config:  cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and subscribes it to buildID's
// status stream until the client disconnects.
func (h *Hub) ServeHTTP(buildID uuid.UUID, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("progress: upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan StatusMessage, 16)}
	h.mu.Lock()
	if h.clients[buildID] == nil {
		h.clients[buildID] = make(map[*client]bool)
	}
	h.clients[buildID][c] = true
	h.mu.Unlock()

	go h.writePump(buildID, c)
	h.readPump(buildID, c)
}

func (h *Hub) writePump(buildID uuid.UUID, c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
		payload, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.unregister(buildID, c)
			return
		}
	}
}

func (h *Hub) readPump(buildID uuid.UUID, c *client) {
	defer h.unregister(buildID, c)
	c.conn.SetReadLimit(h.config.MaxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) unregister(buildID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[buildID]; ok {
		if _, present := set[c]; present {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, buildID)
		}
	}
}

// Broadcast pushes a state transition to every client subscribed to
// buildID. It never blocks: for a client whose send buffer is full the
// frame is dropped (the client stays subscribed) rather than stalling
// the build.
func (h *Hub) Broadcast(buildID uuid.UUID, state engine.State, buildErr error) {
	msg := StatusMessage{BuildID: buildID, State: state.String()}
	if buildErr != nil {
		msg.Error = buildErr.Error()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[buildID] {
		select {
		case c.send <- msg:
		default:
			log.Printf("progress: dropping status frame for build %s, client buffer full", buildID)
		}
	}
}

// OnState returns an engine.StateFunc that broadcasts every transition
// for buildID through h.
func (h *Hub) OnState(buildID uuid.UUID) engine.StateFunc {
	return func(s engine.State) {
		h.Broadcast(buildID, s, nil)
	}
}
