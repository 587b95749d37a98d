package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil)
	h.Start()
	t.Cleanup(h.Stop)
	return h
}

func addTestClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan []byte, 8), id: "test"}
	h.register <- c
	return c
}

func TestHubRegisterUnregister(t *testing.T) {
	h := startTestHub(t)

	c := addTestClient(h)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	h.unregister <- c
	require.Eventually(t, func() bool { return h.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestHubBroadcastReachesClients(t *testing.T) {
	h := startTestHub(t)
	c := addTestClient(h)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	h.Broadcast(TypeDataRefreshed, map[string]int{"orders": 42})

	select {
	case raw := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, TypeDataRefreshed, msg.Type)
		assert.False(t, msg.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no broadcast received")
	}
}

func TestHubDropsSlowConsumer(t *testing.T) {
	h := startTestHub(t)
	c := &Client{hub: h, send: make(chan []byte), id: "slow"}
	h.register <- c
	require.Eventually(t, func() bool { return h.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	// Nobody reads c.send, so the fan-out drops the client.
	h.Broadcast(TypeAlertsChanged, nil)

	require.Eventually(t, func() bool { return h.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestHubStartIdempotent(t *testing.T) {
	h := NewHub(nil)
	h.Start()
	h.Start()
	h.Stop()
	h.Stop()
}
