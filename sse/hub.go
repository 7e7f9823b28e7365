package sse

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/kbukum/whisperbot/logger"
)

// DefaultKeepAlive is shorter than common proxy idle timeouts.
const DefaultKeepAlive = 30 * time.Second

const clientBuffer = 256

// Client represents a connected SSE client.
type Client struct {
	id       string
	metadata map[string]string
	events   chan Event
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetadata adds a metadata key-value pair to the client.
func WithMetadata(key, value string) ClientOption {
	return func(c *Client) {
		c.metadata[key] = value
	}
}

// NewClient creates a new SSE client with optional metadata.
func NewClient(id string, opts ...ClientOption) *Client {
	c := &Client{
		id:       id,
		metadata: make(map[string]string),
		events:   make(chan Event, clientBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the client's unique identifier.
func (c *Client) ID() string { return c.id }

// Metadata returns all client metadata.
func (c *Client) Metadata() map[string]string { return c.metadata }

// Events returns the channel for receiving events.
func (c *Client) Events() <-chan Event { return c.events }

// Send queues an event. It returns false if the client is too slow and
// its buffer is full.
func (c *Client) Send(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) close() { close(c.events) }

type message struct {
	pattern string
	event   Event
}

// Hub manages SSE client connections and message broadcasting.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	stopped    bool
	keepAlive  time.Duration
	log        *logger.Logger
	mu         sync.RWMutex
}

// NewHub creates a hub. keepAlive <= 0 selects DefaultKeepAlive.
func NewHub(log *logger.Logger, keepAlive time.Duration) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, clientBuffer),
		done:       make(chan struct{}),
		keepAlive:  keepAlive,
		log:        log.WithComponent("sse"),
	}
}

// KeepAlive returns the interval between keep-alive comments.
func (h *Hub) KeepAlive() time.Duration { return h.keepAlive }

// Run is the hub's event loop. It blocks until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client registered", logger.Fields("client_id", client.id, "total_clients", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client unregistered", logger.Fields("client_id", client.id, "total_clients", total))

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Stop shuts the hub down, closing every client. Safe to call multiple times.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.stopped {
		h.stopped = true
		close(h.done)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		client.close()
		delete(h.clients, id)
	}
}

// Register adds a client. It reports false when the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish implements Broadcaster. Events published after Stop are dropped.
func (h *Hub) Publish(pattern, event string, data []byte) {
	select {
	case h.broadcast <- message{pattern: pattern, event: Event{Name: event, Data: data}}:
	case <-h.done:
	}
}

// deliver runs on the hub goroutine.
func (h *Hub) deliver(msg message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for clientID, client := range h.clients {
		matched, err := filepath.Match(msg.pattern, clientID)
		if err != nil {
			h.log.Error("pattern match error", logger.Fields("pattern", msg.pattern, logger.FieldError, err.Error()))
			return
		}
		if matched && !client.Send(msg.event) {
			h.log.Warn("client channel full, dropping event", logger.Fields("client_id", clientID, "event", msg.event.Name))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client returns a client by ID, or nil if not found.
func (h *Hub) Client(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}

var _ Broadcaster = (*Hub)(nil)
