package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/motioncam/internal/store"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 2 * time.Second

	// sendQueue is how many events may wait for a slow client before it is
	// dropped.
	sendQueue = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// eventMessage is the payload pushed to websocket clients.
type eventMessage struct {
	Type  string      `json:"type"`
	Event store.Event `json:"event"`
}

// client is one websocket connection and its outgoing queue. send is closed
// by the hub when the client is removed.
type client struct {
	conn *websocket.Conn
	send chan eventMessage
}

// Hub broadcasts motion events to websocket clients.
type Hub struct {
	clients map[*client]bool
	mu      sync.Mutex
	logger  *zap.SugaredLogger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.SugaredLogger) *Hub {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Hub{
		clients: make(map[*client]bool),
		logger:  logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan eventMessage, sendQueue)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	defer h.remove(c)
	go h.writePump(c)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump delivers queued events to c until its queue is closed.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.logger.Debugw("websocket write failed", "error", err)
			for range c.send {
			}
			return
		}
	}

	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		time.Now().Add(writeWait))
}

// Broadcast queues ev for every connected client without blocking. Clients
// whose queue is full are dropped.
func (h *Hub) Broadcast(ev store.Event) {
	msg := eventMessage{Type: "motion", Event: ev}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Debugw("dropping slow websocket client")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}
