package transcriber

import (
	"context"

	"github.com/kbukum/whisperbot/engine"
	"github.com/kbukum/whisperbot/media"
)

// MessageRef addresses one message in a chat.
type MessageRef struct {
	ChatID    string `json:"chat_id"`
	MessageID int64  `json:"message_id"`
}

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	// Send posts text to chatID, as a reply when replyTo is non-zero.
	Send(ctx context.Context, chatID, text string, replyTo int64) (MessageRef, error)
	// Edit replaces the text of an existing message.
	Edit(ctx context.Context, ref MessageRef, text string) error
}

// Request is one inbound message carrying an attachment.
type Request struct {
	ChatID     string
	MessageID  int64
	Attachment media.Attachment
	// FileRef is the transport's opaque handle for the attachment.
	FileRef string
}

// Downloader materializes an attachment at a local path.
type Downloader interface {
	Download(ctx context.Context, req Request, path string) error
}

// Prober reads media duration in seconds.
type Prober interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

// Converter produces the engine's input waveform.
type Converter interface {
	ToWaveform(ctx context.Context, in, out string, seconds float64) error
}

// Engine supervises one engine invocation.
type Engine interface {
	Run(ctx context.Context, inv engine.Invocation) engine.Result
}
