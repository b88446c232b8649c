package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/bellapacxx/bingo-engine/utils/logger"
)

// Message is the websocket frame in both directions.
type Message struct {
	Action string          `json:"action,omitempty"` // subscribe | unsubscribe | set | push
	Type   string          `json:"type,omitempty"`   // value | ack | error
	Path   string          `json:"path"`
	Value  json.RawMessage `json:"value,omitempty"`
	Key    string          `json:"key,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Client is one websocket connection attached to a Hub.
type Client struct {
	id   string
	conn *websocket.Conn
	hub  *Hub
	send chan []byte

	mu     sync.Mutex
	closed bool
	subs   map[string]func()
	once   sync.Once
}

// SafeSend drops the frame when the client is gone or its buffer is full.
func (c *Client) SafeSend(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		logger.Debugf("[Client %s] dropping frame, buffer full", c.id)
		return false
	}
}

func (c *Client) sendMessage(m Message) {
	b, err := json.Marshal(m)
	if err != nil {
		logger.Errorf("[Client %s] marshal: %v", c.id, err)
		return
	}
	c.SafeSend(b)
}

func (c *Client) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		subs := c.subs
		c.subs = nil
		close(c.send)
		c.mu.Unlock()
		for _, unsub := range subs {
			unsub()
		}
		c.conn.Close()
	})
}

func (c *Client) subscribe(path string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, ok := c.subs[path]; ok {
		c.mu.Unlock()
		return
	}
	// placeholder so a concurrent subscribe to the same path is ignored
	c.subs[path] = func() {}
	c.mu.Unlock()

	unsub := c.hub.channel.Subscribe(path, func(v json.RawMessage) {
		c.sendMessage(Message{Type: "value", Path: path, Value: v})
	})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		unsub()
		return
	}
	c.subs[path] = unsub
	c.mu.Unlock()
}

func (c *Client) unsubscribe(path string) {
	c.mu.Lock()
	unsub, ok := c.subs[path]
	delete(c.subs, path)
	c.mu.Unlock()
	if ok {
		unsub()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Infof("[Client %s] disconnected normally", c.id)
			} else {
				logger.Errorf("[Client %s] read error: %v", c.id, err)
			}
			return
		}

		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			logger.Errorf("[Client %s] invalid message: %v", c.id, err)
			c.sendMessage(Message{Type: "error", Error: "invalid message"})
			continue
		}
		c.hub.handle(c, m)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Errorf("[Client %s] write error: %v", c.id, err)
			return
		}
	}
}
