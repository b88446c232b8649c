package realtime

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bellapacxx/bingo-engine/utils/logger"
)

// Hub exposes a Channel to websocket clients. Clients may subscribe to any
// path but only write to the paths listed as writable.
type Hub struct {
	channel  Channel
	writable map[string]bool
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub(ch Channel, writable ...string) *Hub {
	w := make(map[string]bool, len(writable))
	for _, p := range writable {
		w[p] = true
	}
	return &Hub{
		channel:  ch,
		writable: w,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*Client),
	}
}

// SetCheckOrigin replaces the default allow-all origin check.
func (h *Hub) SetCheckOrigin(fn func(r *http.Request) bool) {
	h.upgrader.CheckOrigin = fn
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and runs the client pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("[Hub] upgrade error: %v", err)
		return
	}
	c := &Client{
		id:   uuid.NewString(),
		conn: conn,
		hub:  h,
		send: make(chan []byte, 64),
		subs: make(map[string]func()),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()
	logger.Infof("[Hub] client %s connected (total=%d)", c.id, total)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
}

func (h *Hub) handle(c *Client, m Message) {
	switch m.Action {
	case "subscribe":
		c.subscribe(m.Path)
	case "unsubscribe":
		c.unsubscribe(m.Path)
	case "set", "push":
		if !h.writable[m.Path] {
			logger.Infof("[Hub] client %s denied %s on %s", c.id, m.Action, m.Path)
			c.sendMessage(Message{Type: "error", Path: m.Path, Error: "path is read-only"})
			return
		}
		ctx := context.Background()
		var key string
		var err error
		if m.Action == "set" {
			err = h.channel.Set(ctx, m.Path, m.Value)
		} else {
			key, err = h.channel.Push(ctx, m.Path, m.Value)
		}
		if err != nil {
			logger.Errorf("[Hub] client %s %s %s: %v", c.id, m.Action, m.Path, err)
			c.sendMessage(Message{Type: "error", Path: m.Path, Error: err.Error()})
			return
		}
		c.sendMessage(Message{Type: "ack", Path: m.Path, Key: key})
	default:
		logger.Infof("[Hub] client %s unknown action: %q", c.id, m.Action)
		c.sendMessage(Message{Type: "error", Path: m.Path, Error: "unknown action"})
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*Client)
	h.mu.Unlock()
	for _, c := range clients {
		c.Close()
	}
}
