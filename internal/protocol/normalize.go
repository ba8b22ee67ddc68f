package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nomisrosen/Hash-Chat-2/internal/models"
)

// Inbound is a chatMessage payload after boundary normalization: a bare JSON
// string (the legacy unencrypted path) becomes a text message, an object keeps
// its declared kind and carries everything else through untouched.
type Inbound struct {
	Kind    models.Kind
	Payload json.RawMessage
}

// ParseInbound decodes a chatMessage payload exactly once. Objects without a
// kind field default to text. An object's explicit payload field wins; failing
// that, all fields other than kind are passed through verbatim as the payload,
// so {kind:"encrypted", ciphertext, iv} survives the server untouched.
func ParseInbound(raw json.RawMessage) (Inbound, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Inbound{}, fmt.Errorf("empty chatMessage payload")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Inbound{}, fmt.Errorf("malformed string payload: %w", err)
		}
		return Inbound{Kind: models.KindText, Payload: trimmed}, nil

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return Inbound{}, fmt.Errorf("malformed object payload: %w", err)
		}

		kind := models.KindText
		if rawKind, ok := fields["kind"]; ok {
			var s string
			if err := json.Unmarshal(rawKind, &s); err != nil {
				return Inbound{}, fmt.Errorf("malformed kind field: %w", err)
			}
			if s != "" {
				kind = models.Kind(s)
			}
			delete(fields, "kind")
		}

		if payload, ok := fields["payload"]; ok {
			return Inbound{Kind: kind, Payload: payload}, nil
		}

		payload, err := json.Marshal(fields)
		if err != nil {
			return Inbound{}, err
		}
		return Inbound{Kind: kind, Payload: payload}, nil

	default:
		return Inbound{}, fmt.Errorf("chatMessage payload must be a string or object")
	}
}
