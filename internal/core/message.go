package core

import "time"

const (
	// BotName is the username attached to system notifications.
	BotName = "ChatApp bot"

	// TimeLayout is the human-readable clock format used on the wire.
	TimeLayout = "3:04 PM"

	welcomeText = "Welcome to Chat-App"
)

// Message is the domain model for a chat message. The Time field is
// assigned exactly once at creation and is used unchanged for both the
// persisted copy and every broadcast copy.
type Message struct {
	Room string
	From string
	Text string
	Time string
}

// NewMessage builds a message stamped with the given receipt time.
func NewMessage(room, from, text string, at time.Time) Message {
	return Message{
		Room: room,
		From: from,
		Text: text,
		Time: at.Format(TimeLayout),
	}
}

func systemMessage(room, text string, at time.Time) Message {
	return NewMessage(room, BotName, text, at)
}
