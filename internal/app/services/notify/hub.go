// internal/app/services/notify/hub.go
package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/metrics"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

type client struct {
	room string
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the sockets of this instance grouped by restaurant.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*client]struct{}
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHub returns an empty hub. checkOrigin may be nil to accept any origin.
func NewHub(logger *zap.Logger, checkOrigin func(*http.Request) bool) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		rooms: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		log: logger,
	}
}

// Serve upgrades the request and joins the socket to room until the peer
// goes away. The caller has already authorized the room.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	c := &client{room: room, conn: conn, send: make(chan []byte, sendBuffer)}
	h.join(c)
	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) join(c *client) {
	h.mu.Lock()
	if h.rooms[c.room] == nil {
		h.rooms[c.room] = make(map[*client]struct{})
	}
	h.rooms[c.room][c] = struct{}{}
	h.mu.Unlock()
	metrics.WSConnections.Inc()
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	members, ok := h.rooms[c.room]
	if ok {
		if _, in := members[c]; in {
			delete(members, c)
			close(c.send)
			metrics.WSConnections.Dec()
		}
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	h.mu.Unlock()
}

// Deliver queues payload for every socket in room. A socket whose buffer is
// full is dropped.
func (h *Hub) Deliver(room string, payload []byte) int {
	h.mu.RLock()
	var slow []*client
	n := 0
	for c := range h.rooms[room] {
		select {
		case c.send <- payload:
			n++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("ws client too slow, dropping", zap.String("room", room))
		h.leave(c)
	}
	return n
}

// Count returns the number of sockets in room.
func (h *Hub) Count(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every socket.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*client
	for _, members := range h.rooms {
		for c := range members {
			all = append(all, c)
		}
	}
	h.mu.Unlock()
	for _, c := range all {
		h.leave(c)
	}
}

// readPump discards inbound frames; the channel is server to client only.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("ws read", zap.String("room", c.room), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
