package engine

import (
	"strings"
	"unicode/utf8"
)

// StreamBuffer accumulates engine output for the current status message.
// Continuation messages carry a marker prefix that does not count against
// the message limit. It is owned by a single supervision loop and is not
// safe for concurrent use.
type StreamBuffer struct {
	prefix string
	text   []byte
	pushed string
}

// Append adds raw engine output.
func (b *StreamBuffer) Append(p []byte) {
	b.text = append(b.text, p...)
}

// Len returns the size of the transcript text in bytes, without the prefix.
func (b *StreamBuffer) Len() int {
	return len(b.text)
}

// String returns the message text including the prefix.
func (b *StreamBuffer) String() string {
	return b.prefix + string(b.text)
}

// Trimmed returns the message text without surrounding whitespace.
func (b *StreamBuffer) Trimmed() string {
	return strings.TrimSpace(b.String())
}

// Dirty reports whether new text arrived since the last push.
func (b *StreamBuffer) Dirty() bool {
	return len(b.text) > 0 && b.String() != b.pushed
}

// MarkPushed records the current text as delivered.
func (b *StreamBuffer) MarkPushed() {
	b.pushed = b.String()
}

// TakeOverflow splits an oversized buffer. It returns the current message
// with exactly limit bytes of text, or slightly less to keep a UTF-8
// sequence whole, and restarts the buffer as a continuation message
// holding the rest. ok is false when the text fits.
func (b *StreamBuffer) TakeOverflow(limit int, marker string) (head string, ok bool) {
	if len(b.text) <= limit {
		return "", false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(b.text[cut]) {
		cut--
	}
	if cut == 0 {
		cut = limit
	}
	head = b.prefix + string(b.text[:cut])

	rest := make([]byte, len(b.text)-cut)
	copy(rest, b.text[cut:])
	b.prefix = marker
	b.text = rest
	b.pushed = marker
	return head, true
}

type bufferState struct {
	prefix string
	text   []byte
	pushed string
}

func (b *StreamBuffer) save() bufferState {
	return bufferState{prefix: b.prefix, text: b.text, pushed: b.pushed}
}

// restore undoes a TakeOverflow. TakeOverflow copies the rest into a new
// slice, so the saved text is still intact.
func (b *StreamBuffer) restore(st bufferState) {
	b.prefix = st.prefix
	b.text = st.text
	b.pushed = st.pushed
}
