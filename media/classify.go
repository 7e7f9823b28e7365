package media

import (
	"path/filepath"
	"strings"
)

// Kind is the transport's tag for an attachment.
type Kind string

const (
	KindVoice    Kind = "voice"
	KindAudio    Kind = "audio"
	KindDocument Kind = "document"
)

// ParseKind maps a transport tag to a Kind. Unknown tags yield "".
func ParseKind(s string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindVoice, KindAudio, KindDocument:
		return k
	default:
		return ""
	}
}

// Attachment describes an inbound file as declared by the sender. MIME and
// Filename are untrusted and may be empty.
type Attachment struct {
	Kind     Kind
	MIME     string
	Filename string
}

// audioExtensions is the document allow-list, lower-case with the dot.
var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".oga": true,
	".m4a": true, ".flac": true, ".opus": true, ".mpeg": true,
	".mpga": true, ".wma": true, ".aac": true, ".webm": true,
}

// Classify reports whether the attachment should be transcribed. Voice notes
// and audio are always accepted; a document only when its MIME type names
// audio or ogg, or its extension is a known audio one.
func Classify(a Attachment) bool {
	switch a.Kind {
	case KindVoice, KindAudio:
		return true
	case KindDocument:
		return looksLikeAudio(a)
	default:
		return false
	}
}

func looksLikeAudio(a Attachment) bool {
	mime := strings.ToLower(a.MIME)
	if strings.Contains(mime, "audio/") || strings.Contains(mime, "ogg") {
		return true
	}
	if a.Filename == "" {
		return false
	}
	return audioExtensions[strings.ToLower(filepath.Ext(a.Filename))]
}
