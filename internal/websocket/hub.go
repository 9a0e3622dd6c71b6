package websocket

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// notifyBuffer bounds the events queued ahead of the Run loop.
const notifyBuffer = 256

type envelope struct {
	userID  int64
	message []byte
}

// Hub maintains the set of active clients grouped by the user they belong to.
type Hub struct {
	// Connected clients per user ID.
	clients map[int64]map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Encoded events waiting to be fanned out to a user's clients.
	outbound chan envelope

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		outbound:   make(chan envelope, notifyBuffer),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			log.Info().Int64("user_id", client.UserID).Int("user_clients", len(h.clients[client.UserID])).Msg("Client connected")
		case client := <-h.Unregister:
			if h.remove(client) {
				log.Info().Int64("user_id", client.UserID).Msg("Client disconnected")
			}
		case env := <-h.outbound:
			for client := range h.clients[env.userID] {
				select {
				case client.Send <- env.message:
				default:
					// Slow consumer; drop it rather than stall every other user.
					h.remove(client)
				}
			}
		case <-h.done:
			for _, set := range h.clients {
				for client := range set {
					close(client.Send)
				}
			}
			h.clients = make(map[int64]map[*Client]bool)
			log.Info().Msg("Websocket hub stopped")
			return
		}
	}
}

// Stop terminates Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Notify queues an event for all of userID's connected clients. It never
// blocks; events are dropped when the queue is full.
func (h *Hub) Notify(userID int64, action string, payload interface{}) {
	message, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode websocket event")
		return
	}

	select {
	case h.outbound <- envelope{userID: userID, message: message}:
	default:
		log.Warn().Int64("user_id", userID).Str("action", action).Msg("Websocket queue full, dropping event")
	}
}

// Attach registers client with the running hub. It reports false once the
// hub has stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Detach unregisters client. It is a no-op once the hub has stopped.
func (h *Hub) Detach(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) bool {
	set, ok := h.clients[client.UserID]
	if !ok || !set[client] {
		return false
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	return true
}
