package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventMessage notifies clients about a chat or system message in a room.
	EventMessage EventKind = iota
	// EventUserJoined notifies room members that a user joined.
	EventUserJoined
	// EventUserLeft notifies room members that a user left.
	EventUserLeft
	// EventHistory delivers replayed message history to a joining client.
	EventHistory
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
// Joined/left events carry a prebuilt system Message so every copy of
// the notification shares one timestamp.
type Event struct {
	Kind     EventKind
	Room     string
	User     string
	Message  Message
	Messages []Message // for EventHistory
	Error    *CoreError
}
