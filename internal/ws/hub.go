package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"matrimony-service/internal/models"
	"matrimony-service/internal/observability"
)

const (
	writeWait = 10 * time.Second
	// outboxSize bounds the frames queued for one slow connection.
	outboxSize = 16
)

// Client is the write side of a websocket connection.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// peer is one registered connection and the queue drained by its writer goroutine.
type peer struct {
	info ConnInfo
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (p *peer) stop() {
	p.once.Do(func() { close(p.done) })
}

// Hub tracks notification websocket connections per user. Each connection
// has a single writer goroutine, so Notify never waits on a socket.
type Hub struct {
	users map[string]map[Client]*peer
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[string]map[Client]*peer),
	}
}

// AddClient registers a connection for a user and starts its writer.
func (h *Hub) AddClient(userID string, conn Client, info ConnInfo) {
	p := &peer{info: info, send: make(chan []byte, outboxSize), done: make(chan struct{})}

	h.mu.Lock()
	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]*peer)
	}
	if old, ok := h.users[userID][conn]; ok {
		old.stop()
	}
	h.users[userID][conn] = p
	h.mu.Unlock()

	go h.pump(userID, conn, p)
}

// RemoveClient drops a connection; the user entry goes away with its last connection.
func (h *Hub) RemoveClient(userID string, conn Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.users[userID]; ok {
		if p, ok := conns[conn]; ok {
			p.stop()
			delete(conns, conn)
		}
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
}

// Connections returns how many sockets the user has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Notify queues the notification for every open connection of its recipient
// and returns without waiting for delivery. A full queue drops the frame.
// A user with no connections is not an error.
func (h *Hub) Notify(_ context.Context, n models.Notification) error {
	payload, err := json.Marshal(Event{Type: "notification", Notification: &n})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := h.users[n.RecipientID]
	if len(conns) == 0 {
		return nil
	}
	for _, p := range conns {
		select {
		case p.send <- payload:
		default:
			log.Warn().Str("user_id", n.RecipientID).Str("conn_id", p.info.ConnID).Msg("notification outbox full, frame dropped")
			observability.IncWSEvent("ws_dropped")
		}
	}
	observability.IncWSEvent("notification")
	return nil
}

func (h *Hub) pump(userID string, conn Client, p *peer) {
	for {
		select {
		case <-p.done:
			return
		case payload := <-p.send:
			if err := write(conn, payload); err != nil {
				log.Warn().Err(err).Str("user_id", userID).Str("conn_id", p.info.ConnID).Msg("websocket write error")
				_ = conn.Close()
				h.RemoveClient(userID, conn)
				observability.IncWSEvent("ws_error")
				return
			}
		}
	}
}

func write(conn Client, payload []byte) error {
	if wc, ok := conn.(*websocket.Conn); ok {
		_ = wc.SetWriteDeadline(time.Now().Add(writeWait))
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Event is the frame sent over notification websockets.
type Event struct {
	Type         string               `json:"type"`
	Notification *models.Notification `json:"notification,omitempty"`
}
