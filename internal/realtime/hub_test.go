package realtime_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devcampfire/internal/realtime"
)

// dialHub starts a server that upgrades incoming connections and subscribes
// them to the given channel, then dials it.
func dialHub(t *testing.T, hub *realtime.Hub, channel string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Subscribe(channel, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestHubPublish(t *testing.T) {
	hub := realtime.NewHub()
	channel := realtime.ConversationChannel("c1")
	client := dialHub(t, hub, channel)

	require.Eventually(t, func() bool {
		return hub.SubscriberCount(channel) == 1
	}, time.Second, 10*time.Millisecond)

	payload := map[string]any{"id": "m1", "content": "hello"}
	require.NoError(t, hub.Publish(context.Background(), channel, realtime.EventNewMessage, payload))

	client.SetReadDeadline(time.Now().Add(time.Second))
	var envelope realtime.Envelope
	require.NoError(t, client.ReadJSON(&envelope))
	assert.Equal(t, channel, envelope.Channel)
	assert.Equal(t, realtime.EventNewMessage, envelope.Event)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello", data["content"])
}

func TestHubPublishToEmptyChannel(t *testing.T) {
	hub := realtime.NewHub()
	err := hub.Publish(context.Background(), realtime.ConversationChannel("nobody"), realtime.EventNewMessage, nil)
	assert.NoError(t, err)
}

func TestHubSubscriptionLifecycle(t *testing.T) {
	hub := realtime.NewHub()
	channel := realtime.ConversationChannel("c1")
	client := dialHub(t, hub, channel)

	require.Eventually(t, func() bool {
		return hub.SubscriberCount(channel) == 1
	}, time.Second, 10*time.Millisecond)

	// Closing the client makes the next write fail and drops the conn.
	client.Close()
	require.Eventually(t, func() bool {
		hub.Publish(context.Background(), channel, realtime.EventNewMessage, "x")
		return hub.SubscriberCount(channel) == 0
	}, time.Second, 10*time.Millisecond)
}
