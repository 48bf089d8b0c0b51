package socket

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Hub keeps the open board websocket connections and fans messages out to
// all of them.
type Hub struct {
	// clients is keyed by a per-connection id.
	clients map[string]*websocket.Conn
	// mu also serialises writes: a gorilla conn allows one writer at a time.
	mu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

func (h *Hub) Register(clientID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[clientID] = conn
	log.Printf("WebSocket client registered: %s", clientID)
}

func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[clientID]; ok {
		delete(h.clients, clientID)
		log.Printf("WebSocket client unregistered: %s", clientID)
	}
}

// Send writes message to one client. An unknown client is not an error; it
// has most likely gone offline.
func (h *Hub) Send(clientID string, message []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.clients[clientID]
	if !ok {
		log.Printf("WebSocket client not found, could not send message: %s", clientID)
		return nil
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, message)
}

// Broadcast writes message to every client and drops the ones whose write
// fails.
func (h *Hub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write to %s failed, dropping client: %v", id, err)
			conn.Close()
			delete(h.clients, id)
		}
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
