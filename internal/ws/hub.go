package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one push message. Notification creation publishes these so clients
// update counts without polling.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer; the socket carries no input
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks open sockets per user and fans events out to them
type Hub struct {
	mu      sync.RWMutex
	clients map[int]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int]map[*websocket.Conn]bool)}
}

// Serve upgrades the request and keeps the socket registered until it closes
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID int) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed for user %d: %v", userID, err)
		return
	}

	h.register(userID, conn)
	defer h.unregister(userID, conn)

	// Clients never send meaningful data; the read loop only detects close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) register(userID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]bool)
	}
	h.clients[userID][conn] = true
}

func (h *Hub) unregister(userID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
	conn.Close()
}

// Push sends an event to every open socket for a user. Delivery is
// best-effort; a failed write drops that socket.
func (h *Hub) Push(userID int, event Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[userID]))
	for conn := range h.clients[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			h.unregister(userID, conn)
		}
	}
}
