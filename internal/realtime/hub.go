package realtime

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

// Envelope is the frame delivered to hub subscribers.
type Envelope struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data"`
}

// Hub manages active WebSocket connections keyed by channel name and serves
// as the in-process Publisher when no external push service is configured.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]struct{}),
	}
}

var _ Publisher = (*Hub)(nil)

// Subscribe adds a connection to the given channel.
func (h *Hub) Subscribe(channel string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[channel] == nil {
		h.conns[channel] = make(map[*websocket.Conn]struct{})
	}
	h.conns[channel][conn] = struct{}{}
}

// Unsubscribe removes a connection from the given channel.
func (h *Hub) Unsubscribe(channel string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conns[channel]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.conns, channel)
		}
	}
}

// Drop removes a connection from every channel it is subscribed to.
func (h *Hub) Drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel, conns := range h.conns {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.conns, channel)
		}
	}
}

// Publish sends the event to every connection subscribed to the channel.
// Connections that fail to write are closed and dropped. The write lock
// doubles as the single-writer guarantee gorilla connections require.
func (h *Hub) Publish(_ context.Context, channel, event string, data any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.conns[channel]
	for conn := range conns {
		if err := conn.WriteJSON(Envelope{Channel: channel, Event: event, Data: data}); err != nil {
			conn.Close()
			delete(conns, conn)
		}
	}
	if len(conns) == 0 {
		delete(h.conns, channel)
	}
	return nil
}

// SubscriberCount reports the number of live subscribers on a channel.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[channel])
}
