// Package ws pushes store changes to connected dashboards and field clients.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
)

// Hub maintains the set of active clients and fans store notifications out to
// them. Slow clients are dropped rather than allowed to stall the broadcast.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("ws: client connected: %s", client.conn.RemoteAddr())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					log.Printf("ws: dropping stalled client %s", client.conn.RemoteAddr())
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastAlerts sends the current alert snapshot to every client.
func (h *Hub) BroadcastAlerts(alerts []contracts.Alert) {
	body, err := json.Marshal(map[string]any{"type": "alerts", "payload": alerts})
	if err != nil {
		log.Printf("ws: marshal alerts broadcast: %v", err)
		return
	}

	select {
	case h.broadcast <- body:
	default:
		log.Print("ws: broadcast buffer full, dropping update")
	}
}
