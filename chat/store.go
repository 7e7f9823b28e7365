package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	apperrors "github.com/kbukum/whisperbot/errors"
	"github.com/kbukum/whisperbot/logger"
	"github.com/kbukum/whisperbot/sse"
	"github.com/kbukum/whisperbot/transcriber"
)

// DefaultHistory is the number of messages kept per chat.
const DefaultHistory = 500

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is one chat message.
type Message struct {
	ID         int64     `json:"message_id"`
	ChatID     string    `json:"chat_id"`
	From       Sender    `json:"from"`
	Text       string    `json:"text,omitempty"`
	Attachment string    `json:"attachment,omitempty"`
	ReplyTo    int64     `json:"reply_to,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	EditedAt   time.Time `json:"edited_at,omitempty"`
}

type history struct {
	messages []*Message
	index    map[int64]*Message
}

// Store keeps chats in memory.
type Store struct {
	mu      sync.RWMutex
	chats   map[string]*history
	nextID  int64
	limit   int
	events  sse.Broadcaster
	log     *logger.Logger
	nowFunc func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithBroadcaster publishes changes to SSE clients.
func WithBroadcaster(b sse.Broadcaster) Option { return func(s *Store) { s.events = b } }

// WithHistory bounds the messages kept per chat.
func WithHistory(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option { return func(s *Store) { s.log = l } }

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		chats:   make(map[string]*history),
		limit:   DefaultHistory,
		log:     logger.Nop(),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("chat")
	return s
}

var _ transcriber.Messenger = (*Store)(nil)

// Post records an inbound user message and returns its reference.
func (s *Store) Post(chatID, text, attachment string) Message {
	return s.append(&Message{ChatID: chatID, From: SenderUser, Text: text, Attachment: attachment})
}

// Send implements transcriber.Messenger.
func (s *Store) Send(ctx context.Context, chatID, text string, replyTo int64) (transcriber.MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return transcriber.MessageRef{}, err
	}
	msg := s.append(&Message{ChatID: chatID, From: SenderBot, Text: text, ReplyTo: replyTo})
	return transcriber.MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

// Edit implements transcriber.Messenger. Editing a message that was
// trimmed from history or never existed is NOT_FOUND.
func (s *Store) Edit(ctx context.Context, ref transcriber.MessageRef, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	h := s.chats[ref.ChatID]
	var msg *Message
	if h != nil {
		msg = h.index[ref.MessageID]
	}
	if msg == nil {
		s.mu.Unlock()
		return apperrors.NotFound("message", strconv.FormatInt(ref.MessageID, 10))
	}
	msg.Text = text
	msg.EditedAt = s.nowFunc()
	// Published under the lock so subscribers see edits in order.
	s.publish(sse.EventMessageEdited, *msg)
	s.mu.Unlock()
	return nil
}

// Messages returns a copy of the chat's history, oldest first.
func (s *Store) Messages(chatID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.chats[chatID]
	if h == nil {
		return []Message{}
	}
	out := make([]Message, len(h.messages))
	for i, m := range h.messages {
		out[i] = *m
	}
	return out
}

// Get returns one message.
func (s *Store) Get(ref transcriber.MessageRef) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h := s.chats[ref.ChatID]; h != nil {
		if m := h.index[ref.MessageID]; m != nil {
			return *m, true
		}
	}
	return Message{}, false
}

// ChatCount returns the number of chats with history.
func (s *Store) ChatCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

func (s *Store) append(msg *Message) Message {
	s.mu.Lock()
	s.nextID++
	msg.ID = s.nextID
	msg.CreatedAt = s.nowFunc()

	h := s.chats[msg.ChatID]
	if h == nil {
		h = &history{index: make(map[int64]*Message)}
		s.chats[msg.ChatID] = h
	}
	h.messages = append(h.messages, msg)
	h.index[msg.ID] = msg
	for len(h.messages) > s.limit {
		delete(h.index, h.messages[0].ID)
		h.messages[0] = nil
		h.messages = h.messages[1:]
	}
	snapshot := *msg
	s.publish(sse.EventMessageSent, snapshot)
	s.mu.Unlock()
	return snapshot
}

func (s *Store) publish(event string, msg Message) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Warn("event encoding failed", logger.Fields(logger.FieldChatID, msg.ChatID, logger.FieldError, err.Error()))
		return
	}
	s.events.Publish(Topic(msg.ChatID), event, data)
}

// Topic is the SSE pattern matching every subscriber of chatID.
func Topic(chatID string) string {
	return fmt.Sprintf("chat:%s:*", chatID)
}

// SubscriberID names one SSE subscriber of chatID.
func SubscriberID(chatID, id string) string {
	return fmt.Sprintf("chat:%s:%s", chatID, id)
}
