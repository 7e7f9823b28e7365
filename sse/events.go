package sse

// Event names written on the "event:" line.
const (
	// EventConnected is sent when a client successfully connects.
	EventConnected = "connected"

	// EventMessageSent announces a new chat message.
	EventMessageSent = "message.sent"

	// EventMessageEdited announces a replaced message text.
	EventMessageEdited = "message.edited"
)

// Event is one frame queued for a client.
type Event struct {
	Name string
	Data []byte
}
