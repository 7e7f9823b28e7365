package sse

// Broadcaster publishes events to clients. Handlers and stores depend on
// it rather than on a concrete Hub.
type Broadcaster interface {
	// Publish sends an event to all clients whose ID matches pattern.
	Publish(pattern, event string, data []byte)
}
