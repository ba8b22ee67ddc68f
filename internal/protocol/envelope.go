package protocol

import (
	"encoding/json"
	"fmt"
)

// Event names carried on the wire, one JSON envelope per websocket frame.
const (
	EventJoinRoom          = "joinRoom"
	EventHistory           = "history"
	EventJoined            = "joined"
	EventMessage           = "message"
	EventChatMessage       = "chatMessage"
	EventTyping            = "typing"
	EventStopTyping        = "stopTyping"
	EventUserTyping        = "userTyping"
	EventUserStoppedTyping = "userStoppedTyping"
)

// Envelope is the frame format: a named event plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode marshals an event and its payload into a wire frame.
func Encode(event string, data interface{}) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
		}
		raw = b
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// Decode parses a wire frame into an envelope.
func Decode(frame []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("frame missing event name")
	}
	return &env, nil
}
