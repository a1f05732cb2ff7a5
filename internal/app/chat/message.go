/*
Package chat contains the core of the room server: connection registry, room
directory, message routing with ordered fan-out, per-connection outbound
delivery workers, and the session lifecycle state machine.

This file defines the wire envelope and payload types exchanged with clients.
*/
package chat

import (
	"encoding/json"

	"roomchat/internal/pkg/randx"
)

// MessageType identifies the kind of frame carried by an Envelope.
type MessageType string

const (
	// Inbound frame types (client -> server).
	TypeJoin    MessageType = "join"
	TypeMessage MessageType = "message"
	TypeLeave   MessageType = "leave"

	// Outbound frame types (server -> client).
	TypeStatus       MessageType = "status"
	TypeParticipants MessageType = "participants"
	TypeError        MessageType = "error"
)

// Envelope is the JSON frame exchanged over the transport in both directions.
// Server-emitted frames always carry ID and Timestamp; client frames leave
// them empty.
type Envelope struct {
	ID        string          `json:"id,omitempty"`
	Type      MessageType     `json:"type"`
	RoomID    string          `json:"roomId,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload is the payload of an inbound TypeJoin frame.
type JoinPayload struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

// SendPayload is the payload of an inbound TypeMessage frame.
type SendPayload struct {
	RoomID string `json:"roomId"`
	Body   string `json:"body"`
}

// ChatPayload is the payload of an outbound TypeMessage frame. The sender
// identity is assigned server-side from the registered connection, never
// taken from the client frame.
type ChatPayload struct {
	SenderID    string `json:"senderId"`
	DisplayName string `json:"displayName"`
	Body        string `json:"body"`
}

// StatusPayload carries human-readable status text ("X joined the room").
type StatusPayload struct {
	Text string `json:"text"`
}

// ParticipantsPayload carries the current roster of a room.
type ParticipantsPayload struct {
	DisplayNames []string `json:"displayNames"`
}

// ErrorPayload reports a rejected frame back to its sender. Reason is one of
// the rejection tokens defined in the errs package (e.g. "RoomMismatch").
type ErrorPayload struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

// ChatMessage is a routed chat message during fan-out. It is immutable once
// constructed and never persisted; it exists only until every recipient's
// queue holds its encoded form.
type ChatMessage struct {
	RoomID      string
	SenderID    string
	DisplayName string
	Body        string
	Timestamp   int64
}

// encodeFrame builds a server frame envelope with a fresh message ID and
// marshals it to its wire form.
func encodeFrame(msgType MessageType, roomID string, timestamp int64, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{
		ID:        randx.MessageID(),
		Type:      msgType,
		RoomID:    roomID,
		Timestamp: timestamp,
		Payload:   payloadBytes,
	})
}

// Encode marshals the chat message into its outbound wire frame.
func (m ChatMessage) Encode() ([]byte, error) {
	return encodeFrame(TypeMessage, m.RoomID, m.Timestamp, ChatPayload{
		SenderID:    m.SenderID,
		DisplayName: m.DisplayName,
		Body:        m.Body,
	})
}
