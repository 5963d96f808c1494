// Package proto defines the JSON envelopes exchanged over the
// WebSocket transport.
package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom    = "joinRoom"
	InboundTypeChatMessage = "chatMessage"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	// EventNameMessage is the single user-visible event: chat
	// messages, system notifications, and replayed history all arrive
	// as "message" events.
	EventNameMessage = "message"
)

// JoinRoomData requests to join a room under a username.
type JoinRoomData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// ChatMessageData is a chat message from the client. The room and
// sender come from the connection's session, never from the wire.
type ChatMessageData struct {
	Text string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// MessageData is the wire-visible formatted message shape.
type MessageData struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Time     string `json:"time"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
