package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom registers the client in a room under a username.
	CommandJoinRoom CommandKind = iota
	// CommandSendMessage delivers a chat message to the client's room.
	CommandSendMessage
)

// Command represents an action requested by a client. Room and User are
// set for joins; Text is set for messages. The sender's identity and
// target room for a message come from the registered session, never
// from the wire.
type Command struct {
	Kind CommandKind
	Room string
	User string
	Text string
}
