// Package ws fans text messages out to every connected websocket peer.
package ws

import (
	"context"
	"log"
)

// Hub maintains the set of live clients and broadcasts to all of them.
// All membership changes go through the channels, so the clients map is
// only touched from Run's goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// Closed when Run exits, so peer goroutines never block sending to a
	// hub that is no longer draining its channels.
	done chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]bool)
			return

		case client := <-h.register:
			h.clients[client] = true
			log.Printf("websocket client connected (total: %d)", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("websocket client disconnected (total: %d)", len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client: drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

func (h *Hub) Broadcast(message string) {
	select {
	case h.broadcast <- []byte(message):
	case <-h.done:
	}
}

func (h *Hub) addClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		// Run never saw this client, so its send channel is ours to close.
		close(c.send)
	}
}

func (h *Hub) removeClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
