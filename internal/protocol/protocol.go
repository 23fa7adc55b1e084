// Package protocol defines the JSON wire format exchanged with chat clients:
// the envelope shared by both directions, the recognized event types and the
// inbound payload shapes together with their validation rules.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Event types carried in the envelope's messageType field.
const (
	TypeConnection       = "connection"
	TypeUserConnected    = "user-connected"
	TypeUserDisconnected = "user-disconnected"
	TypeChatCreated      = "chat-created"
	TypeUserJoinedChat   = "user-joined-chat"
	TypeUserLeftChat     = "user-left-chat"
	TypeUserTypingStart  = "user-typing-start"
	TypeUserTypingEnd    = "user-typing-end"
	TypeChatMessage      = "chat-message"
	TypeMessage          = "message"
)

var (
	// ErrMissingField is returned when the envelope lacks a type or payload.
	ErrMissingField = errors.New("missing messageType or payload")
	// ErrInvalidPayload is returned when a payload fails decoding or validation.
	ErrInvalidPayload = errors.New("invalid payload")
)

// Envelope is an inbound frame. Payload is decoded lazily once the type is known.
type Envelope struct {
	MessageType string          `json:"messageType"`
	Payload     json.RawMessage `json:"payload"`
}

// Outbound is a frame sent to clients.
type Outbound struct {
	MessageType string `json:"messageType"`
	Payload     any    `json:"payload"`
}

// NamePayload carries a bare user name, encoded as a JSON string.
type NamePayload struct {
	Name string `validate:"required"`
}

// MembershipPayload is used by join, leave and typing events.
type MembershipPayload struct {
	Name   string `json:"name" validate:"required"`
	ChatID int    `json:"chatId" validate:"gt=0"`
}

// ChatMessagePayload is an inbound message for one room.
type ChatMessagePayload struct {
	ChatID int    `json:"chatId" validate:"gt=0"`
	From   string `json:"from" validate:"required"`
	Text   string `json:"text" validate:"required"`
}

// GlobalMessagePayload is an inbound message in single-room mode.
type GlobalMessagePayload struct {
	From string `json:"from" validate:"required"`
	Text string `json:"text" validate:"required"`
}

var validate = validator.New()

// ParseEnvelope decodes raw into an Envelope. A frame that is not a JSON
// object, or that has an empty type or a missing/null payload, yields
// ErrMissingField.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMissingField, err)
	}
	payload := bytes.TrimSpace(env.Payload)
	if env.MessageType == "" || len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return Envelope{}, ErrMissingField
	}
	return env, nil
}

// DecodeName decodes a payload holding a JSON string.
func DecodeName(raw json.RawMessage) (NamePayload, error) {
	var p NamePayload
	if err := json.Unmarshal(raw, &p.Name); err != nil {
		return NamePayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, check(p)
}

// DecodeMembership decodes a join, leave or typing payload.
func DecodeMembership(raw json.RawMessage) (MembershipPayload, error) {
	var p MembershipPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return MembershipPayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, check(p)
}

// DecodeChatMessage decodes a room message payload.
func DecodeChatMessage(raw json.RawMessage) (ChatMessagePayload, error) {
	var p ChatMessagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return ChatMessagePayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, check(p)
}

// DecodeGlobalMessage decodes a single-room message payload.
func DecodeGlobalMessage(raw json.RawMessage) (GlobalMessagePayload, error) {
	var p GlobalMessagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return GlobalMessagePayload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, check(p)
}

func check(p any) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// Encode marshals an outbound frame.
func Encode(messageType string, payload any) ([]byte, error) {
	return json.Marshal(Outbound{MessageType: messageType, Payload: payload})
}
