package app

import (
	"net/http"
	"sync"
	"time"

	"camo/common"

	"github.com/gorilla/websocket"
)

// rotationEvent is pushed to /events subscribers whenever the engine
// produces, purges or drops fingerprints.
type rotationEvent struct {
	Type     string    `json:"type"`
	Session  string    `json:"session,omitempty"`
	Profile  string    `json:"profile,omitempty"`
	JA3      string    `json:"ja3,omitempty"`
	JA4      string    `json:"ja4,omitempty"`
	Degraded bool      `json:"degraded,omitempty"`
	Removed  int       `json:"removed,omitempty"`
	Time     time.Time `json:"time"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type eventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
}

func newEventHub() *eventHub {
	return &eventHub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *eventHub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debugln(common.NewErrorWithRequest(r, "websocket upgrade failed: "+err.Error()))
		return
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	// Drain control frames; drop the client once the peer goes away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

func (h *eventHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *eventHub) Broadcast(ev *rotationEvent) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(ev); err != nil {
			h.drop(conn)
		}
	}
}

func (h *eventHub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()
	for _, conn := range conns {
		conn.Close()
	}
}
