package websocket

import (
	"github.com/nomisrosen/Hash-Chat-2/internal/history"
	"github.com/nomisrosen/Hash-Chat-2/internal/models"
	"github.com/nomisrosen/Hash-Chat-2/internal/protocol"
	"github.com/nomisrosen/Hash-Chat-2/pkg/logger"
)

// PresenceEvent is a fire-and-forget typing signal. It is broadcast to every
// room member except the sender and never stored.
type PresenceEvent struct {
	From     *Client
	Event    string
	Username string
}

// Hub owns one room: its member set and its history buffer. All room state is
// mutated only inside Run, so a join's history replay, the join notice, and
// every subsequent message reach each member in one consistent order, and the
// stored history order always matches broadcast order.
type Hub struct {
	room       string
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Post       chan models.Message
	Presence   chan PresenceEvent
	shutdown   chan bool
	history    *history.Buffer
}

func NewHub(room string, buf *history.Buffer) *Hub {
	return &Hub{
		room:       room,
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Post:       make(chan models.Message),
		Presence:   make(chan PresenceEvent),
		shutdown:   make(chan bool),
		history:    buf,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.shutdown:
			for client := range h.clients {
				close(client.send)
			}
			return

		case client := <-h.Register:
			h.clients[client] = true
			// Replay history and confirm the assigned name before the rest
			// of the room hears about the join.
			h.sendEvent(client, protocol.EventHistory, h.history.Messages())
			h.sendEvent(client, protocol.EventJoined, models.JoinedNotice{Username: client.sess.Username})
			h.broadcastMessage(models.NewSystemMessage(client.sess.Username + " has joined the chat"))
			logger.Info("User %s joined room %.12s", client.sess.Username, h.room)

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.broadcastMessage(models.NewSystemMessage(client.sess.Username + " has left the chat"))
				logger.Info("User %s left room %.12s", client.sess.Username, h.room)
			}

		case msg := <-h.Post:
			h.history.Append(msg)
			h.broadcastMessage(msg)

		case ev := <-h.Presence:
			data, err := protocol.Encode(ev.Event, models.PresenceNotice{Username: ev.Username})
			if err != nil {
				logger.Error("Error marshaling presence event: %v", err)
				continue
			}
			for client := range h.clients {
				if client == ev.From {
					continue
				}
				h.enqueue(client, data)
			}
		}
	}
}

// broadcastMessage fans a finished message out to every member, the sender
// included. Join/leave notices pass through here without touching history;
// chat messages are appended by the Post case before they arrive.
func (h *Hub) broadcastMessage(msg models.Message) {
	data, err := protocol.Encode(protocol.EventMessage, msg)
	if err != nil {
		logger.Error("Error marshaling message: %v", err)
		return
	}
	for client := range h.clients {
		h.enqueue(client, data)
	}
}

func (h *Hub) sendEvent(client *Client, event string, payload interface{}) {
	data, err := protocol.Encode(event, payload)
	if err != nil {
		logger.Error("Error marshaling %s event: %v", event, err)
		return
	}
	h.enqueue(client, data)
}

// enqueue drops the member if its send queue is full; a client that cannot
// keep up is disconnected rather than allowed to stall the room.
func (h *Hub) enqueue(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) ShutdownHub() {
	select {
	case h.shutdown <- true:
	default:
	}
}
