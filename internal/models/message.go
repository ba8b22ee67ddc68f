package models

import (
	"encoding/json"
	"time"
)

type Kind string

const (
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindEncrypted Kind = "encrypted"
)

// SystemUser is the author of server-generated join/leave notices.
const SystemUser = "System"

// Message is the unit broadcast to room members and kept in room history.
// Payload is a JSON string for text and image kinds, and an EncryptedPayload
// object for the encrypted kind. The server never inspects encrypted payloads.
type Message struct {
	User      string          `json:"user"`
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp string          `json:"timestamp"`
}

// EncryptedPayload carries an AES-GCM ciphertext and its IV, both base64.
type EncryptedPayload struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
}

// NewMessage stamps author and receipt time onto a normalized payload.
func NewMessage(user string, kind Kind, payload json.RawMessage) Message {
	return Message{
		User:      user,
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// NewSystemMessage builds a plain-text notice from the server itself.
func NewSystemMessage(text string) Message {
	payload, _ := json.Marshal(text)
	return NewMessage(SystemUser, KindText, payload)
}

// TextPayload returns the string form of a text or image payload.
func (m Message) TextPayload() (string, error) {
	var s string
	err := json.Unmarshal(m.Payload, &s)
	return s, err
}

// EncryptedPayload decodes the payload of an encrypted message.
func (m Message) EncryptedPayload() (*EncryptedPayload, error) {
	var p EncryptedPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type JoinRequest struct {
	Room     string `json:"room"`
	Username string `json:"username,omitempty"`
}

type JoinedNotice struct {
	Username string `json:"username"`
}

type PresenceNotice struct {
	Username string `json:"username"`
}
