package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/nomisrosen/Hash-Chat-2/internal/crypto"
	"github.com/nomisrosen/Hash-Chat-2/internal/models"
	"github.com/nomisrosen/Hash-Chat-2/internal/protocol"
	"github.com/nomisrosen/Hash-Chat-2/internal/room"
	"github.com/nomisrosen/Hash-Chat-2/pkg/logger"
)

// DisplayMessage is a message ready to render: decrypted where possible,
// flagged where not.
type DisplayMessage struct {
	User          string
	Kind          models.Kind
	Text          string
	Timestamp     string
	DecryptFailed bool
}

// Handler receives the events of the active room. Calls arrive from a single
// goroutine per session, in server order.
type Handler interface {
	Joined(roomAddress, username string)
	History(roomAddress string, msgs []DisplayMessage)
	Message(roomAddress string, msg DisplayMessage)
	Typing(roomAddress, username string, typing bool)
	Disconnected(roomAddress string, err error)
}

const decryptPlaceholder = "[unable to decrypt]"

// outbound chatMessage shapes: encrypted bodies carry ciphertext and IV at
// the top level, images carry an explicit payload field.
type encryptedOut struct {
	Kind       models.Kind `json:"kind"`
	Ciphertext string      `json:"ciphertext"`
	IV         string      `json:"iv"`
}

type imageOut struct {
	Kind    models.Kind `json:"kind"`
	Payload string      `json:"payload"`
}

// roomSession is one live subscription: a connection to the room's channel
// plus the engine holding that room's key. The engine is created with the
// session and cleared with it; no key survives a teardown.
type roomSession struct {
	address string
	conn    *websocket.Conn
	engine  *crypto.Engine
	gen     uint64
	handler Handler

	writeMu   sync.Mutex
	closed    chan struct{}
	closeOnce sync.Once
}

// dialRoom derives the room address and key from the phrase, connects, and
// sends the join handshake. The phrase itself never goes on the wire.
func dialRoom(ctx context.Context, serverURL, phrase, username string, handler Handler) (*roomSession, error) {
	address := room.DeriveAddress(phrase)

	engine := crypto.NewEngine()
	gen, err := engine.DeriveKey(phrase)
	if err != nil {
		return nil, fmt.Errorf("failed to derive room key: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", serverURL, err)
	}

	s := &roomSession{
		address: address,
		conn:    conn,
		engine:  engine,
		gen:     gen,
		handler: handler,
		closed:  make(chan struct{}),
	}

	if err := s.sendEvent(protocol.EventJoinRoom, models.JoinRequest{Room: address, Username: username}); err != nil {
		s.close()
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	go s.readLoop()
	return s, nil
}

func (s *roomSession) readLoop() {
	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.closed:
				// deliberate teardown, not an error
			default:
				s.handler.Disconnected(s.address, err)
			}
			return
		}

		env, err := protocol.Decode(frame)
		if err != nil {
			logger.Debug("Dropping malformed server frame: %v", err)
			continue
		}
		s.handleEvent(env)
	}
}

func (s *roomSession) handleEvent(env *protocol.Envelope) {
	switch env.Event {
	case protocol.EventHistory:
		var msgs []models.Message
		if err := json.Unmarshal(env.Data, &msgs); err != nil {
			logger.Debug("Dropping malformed history: %v", err)
			return
		}
		// Decrypt strictly in order, each message fully resolved before the
		// next, so the replayed transcript can never come out scrambled. A
		// failure yields a placeholder and the batch continues.
		out := make([]DisplayMessage, 0, len(msgs))
		for _, m := range msgs {
			if dm, ok := s.display(m); ok {
				out = append(out, dm)
			}
		}
		s.handler.History(s.address, out)

	case protocol.EventJoined:
		var n models.JoinedNotice
		if err := json.Unmarshal(env.Data, &n); err != nil {
			return
		}
		s.handler.Joined(s.address, n.Username)

	case protocol.EventMessage:
		var m models.Message
		if err := json.Unmarshal(env.Data, &m); err != nil {
			logger.Debug("Dropping malformed message: %v", err)
			return
		}
		if dm, ok := s.display(m); ok {
			s.handler.Message(s.address, dm)
		}

	case protocol.EventUserTyping, protocol.EventUserStoppedTyping:
		var n models.PresenceNotice
		if err := json.Unmarshal(env.Data, &n); err != nil {
			return
		}
		s.handler.Typing(s.address, n.Username, env.Event == protocol.EventUserTyping)
	}
}

// display resolves a wire message into renderable form. Encrypted bodies are
// opened with the session's key; a result produced by a key of a different
// generation raced a teardown and is discarded rather than shown.
func (s *roomSession) display(m models.Message) (DisplayMessage, bool) {
	dm := DisplayMessage{User: m.User, Kind: m.Kind, Timestamp: m.Timestamp}

	switch m.Kind {
	case models.KindEncrypted:
		payload, err := m.EncryptedPayload()
		if err != nil {
			dm.Text = decryptPlaceholder
			dm.DecryptFailed = true
			return dm, true
		}
		plaintext, gen, err := s.engine.Decrypt(payload.Ciphertext, payload.IV)
		if gen != s.gen {
			return DisplayMessage{}, false
		}
		if err != nil {
			dm.Text = decryptPlaceholder
			dm.DecryptFailed = true
			return dm, true
		}
		dm.Text = plaintext
		return dm, true

	default:
		text, err := m.TextPayload()
		if err != nil {
			// legacy or foreign payload shape: show it raw rather than drop it
			text = string(m.Payload)
		}
		dm.Text = text
		return dm, true
	}
}

func (s *roomSession) sendEvent(event string, data interface{}) error {
	frame, err := protocol.Encode(event, data)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

func (s *roomSession) sendText(text string) error {
	payload, err := s.engine.Encrypt(text)
	if err != nil {
		return fmt.Errorf("cannot encrypt message, rejoin the room: %w", err)
	}
	return s.sendEvent(protocol.EventChatMessage, encryptedOut{
		Kind:       models.KindEncrypted,
		Ciphertext: payload.Ciphertext,
		IV:         payload.IV,
	})
}

func (s *roomSession) sendImage(dataURI string) error {
	return s.sendEvent(protocol.EventChatMessage, imageOut{
		Kind:    models.KindImage,
		Payload: dataURI,
	})
}

func (s *roomSession) sendPresence(typing bool) error {
	event := protocol.EventStopTyping
	if typing {
		event = protocol.EventTyping
	}
	return s.sendEvent(event, nil)
}

// close tears the subscription down and clears the room key. Idempotent.
func (s *roomSession) close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.engine.Clear()
		if s.conn != nil {
			s.conn.Close()
		}
	})
}
