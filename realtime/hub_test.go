package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestHubSubscribeAndPush(t *testing.T) {
	mem := NewMemory()
	hub := NewHub(mem, PathPendingBingos)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(Message{Action: "subscribe", Path: PathPendingBingos}))
	m := readMessage(t, conn)
	assert.Equal(t, "value", m.Type)
	assert.Equal(t, "null", string(m.Value))

	require.NoError(t, conn.WriteJSON(Message{Action: "push", Path: PathPendingBingos, Value: json.RawMessage(`{"cartonId":"c1"}`)}))

	// the value update and the ack may arrive in either order
	seen := map[string]Message{}
	for len(seen) < 2 {
		m := readMessage(t, conn)
		seen[m.Type] = m
	}
	assert.NotEmpty(t, seen["ack"].Key)
	assert.Contains(t, string(seen["value"].Value), `"cartonId":"c1"`)

	raw, err := mem.Get(context.Background(), PathPendingBingos)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "c1")
}

func TestHubRejectsReadOnlyWrite(t *testing.T) {
	mem := NewMemory()
	hub := NewHub(mem, PathPendingBingos)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(Message{Action: "set", Path: PathCalledNumbers, Value: json.RawMessage(`[1,2,3]`)}))
	m := readMessage(t, conn)
	assert.Equal(t, "error", m.Type)

	raw, err := mem.Get(context.Background(), PathCalledNumbers)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestHubFansOutServerWrites(t *testing.T) {
	mem := NewMemory()
	hub := NewHub(mem)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(Message{Action: "subscribe", Path: PathCalledNumbers}))
	readMessage(t, conn) // initial null

	require.NoError(t, mem.Set(context.Background(), PathCalledNumbers, []int{7, 22}))
	m := readMessage(t, conn)
	assert.Equal(t, PathCalledNumbers, m.Path)
	assert.JSONEq(t, `[7,22]`, string(m.Value))
}

func TestHubCountsClients(t *testing.T) {
	hub := NewHub(NewMemory())
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	assert.Equal(t, 0, hub.ClientCount())
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}
