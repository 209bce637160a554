// Package realtime pushes shipment status changes to connected dashboards
// over websocket.
package realtime

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grovetrack/importflow/internal/models"
)

// StatusEvent is broadcast after every successful workflow transition
type StatusEvent struct {
	ShipmentID string                `json:"shipmentId"`
	Status     models.ShipmentStatus `json:"status"`
	At         time.Time             `json:"at"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard is served from a separate origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks connected websocket clients and fans events out to them
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// ServeWS upgrades the request and registers the connection
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️ Websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Drain reads until the client goes away; we never expect client messages
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// PublishStatus implements workflow.StatusFeed
func (h *Hub) PublishStatus(shipmentID string, status models.ShipmentStatus) {
	h.Broadcast(StatusEvent{
		ShipmentID: shipmentID,
		Status:     status,
		At:         time.Now().UTC(),
	})
}

// Broadcast sends an event to every connected client, dropping dead ones
func (h *Hub) Broadcast(event StatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		conn.Close()
		delete(h.clients, conn)
	}
}

// ClientCount returns the number of connected clients (used by /health)
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
