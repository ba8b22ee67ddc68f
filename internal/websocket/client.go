package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/nomisrosen/Hash-Chat-2/internal/models"
	"github.com/nomisrosen/Hash-Chat-2/internal/protocol"
	"github.com/nomisrosen/Hash-Chat-2/internal/session"
	"github.com/nomisrosen/Hash-Chat-2/pkg/logger"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
)

// Client is one live room member: a websocket connection plus its session.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	sess     *session.Session
	registry *session.Registry
}

func NewClient(hub *Hub, conn *websocket.Conn, sess *session.Session, registry *session.Registry) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		sess:     sess,
		registry: registry,
	}
}

// ReadPump routes inbound frames for the life of the connection. On exit the
// session is removed from the registry before the hub emits the leave notice.
func (c *Client) ReadPump() {
	defer func() {
		c.registry.Leave(c.sess.ConnID)
		c.hub.Unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error: %v", err)
			}
			break
		}

		env, err := protocol.Decode(frame)
		if err != nil {
			logger.Debug("Dropping malformed frame from %s: %v", c.sess.Username, err)
			continue
		}
		c.handleEvent(env)
	}
}

func (c *Client) handleEvent(env *protocol.Envelope) {
	switch env.Event {
	case protocol.EventChatMessage:
		// A connection whose session is gone gets dropped silently; a
		// well-behaved client cannot reach this state.
		sess, ok := c.registry.Get(c.sess.ConnID)
		if !ok {
			return
		}
		inbound, err := protocol.ParseInbound(env.Data)
		if err != nil {
			logger.Debug("Dropping unparseable chatMessage from %s: %v", sess.Username, err)
			return
		}
		c.hub.Post <- models.NewMessage(sess.Username, inbound.Kind, inbound.Payload)

	case protocol.EventTyping:
		c.hub.Presence <- PresenceEvent{From: c, Event: protocol.EventUserTyping, Username: c.sess.Username}

	case protocol.EventStopTyping:
		c.hub.Presence <- PresenceEvent{From: c, Event: protocol.EventUserStoppedTyping, Username: c.sess.Username}

	case protocol.EventJoinRoom:
		// The session's room is fixed; switching rooms means reconnecting.
		logger.Debug("Ignoring joinRoom from already-joined connection %s", c.sess.ConnID)

	default:
		logger.Debug("Ignoring unknown event %q from %s", env.Event, c.sess.Username)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
