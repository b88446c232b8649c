package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var null = json.RawMessage("null")

type subscriber struct {
	id int
	fn Callback
}

// Memory is an in-process Channel.
type Memory struct {
	mu      sync.Mutex
	values  map[string]json.RawMessage
	lists   map[string]map[string]json.RawMessage
	subs    map[string][]subscriber
	nextSub int
	seq     uint64
	closed  bool
}

func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]json.RawMessage),
		lists:  make(map[string]map[string]json.RawMessage),
		subs:   make(map[string][]subscriber),
	}
}

func (m *Memory) current(path string) json.RawMessage {
	if v, ok := m.values[path]; ok {
		return v
	}
	if l, ok := m.lists[path]; ok && len(l) > 0 {
		b, _ := json.Marshal(l)
		return b
	}
	return null
}

func (m *Memory) Subscribe(path string, fn Callback) func() {
	m.mu.Lock()
	m.nextSub++
	id := m.nextSub
	m.subs[path] = append(m.subs[path], subscriber{id: id, fn: fn})
	value := m.current(path)
	m.mu.Unlock()

	fn(value)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		subs := m.subs[path]
		for i, s := range subs {
			if s.id == id {
				m.subs[path] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// notify runs outside the lock so callbacks may write back.
func (m *Memory) notify(path string, value json.RawMessage) {
	m.mu.Lock()
	subs := append([]subscriber(nil), m.subs[path]...)
	m.mu.Unlock()
	for _, s := range subs {
		s.fn(value)
	}
}

func (m *Memory) Set(_ context.Context, path string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	delete(m.lists, path)
	if string(b) == "null" {
		delete(m.values, path)
	} else {
		m.values[path] = b
	}
	m.mu.Unlock()

	m.notify(path, b)
	return nil
}

func (m *Memory) Push(_ context.Context, path string, value any) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("push %s: %w", path, err)
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", ErrClosed
	}
	m.seq++
	key := fmt.Sprintf("-%012d%s", m.seq, uuid.NewString()[:8])
	if _, ok := m.values[path]; ok {
		delete(m.values, path)
	}
	if m.lists[path] == nil {
		m.lists[path] = make(map[string]json.RawMessage)
	}
	m.lists[path][key] = b
	snapshot := m.current(path)
	m.mu.Unlock()

	m.notify(path, snapshot)
	return key, nil
}

func (m *Memory) Get(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.current(path), nil
}

// Close rejects further writes and drops subscribers.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.subs = make(map[string][]subscriber)
}
