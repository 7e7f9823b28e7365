package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperbot/admission"
	"github.com/kbukum/whisperbot/auth"
	"github.com/kbukum/whisperbot/chat"
	"github.com/kbukum/whisperbot/media"
	"github.com/kbukum/whisperbot/sse"
	"github.com/kbukum/whisperbot/transcriber"
)

type fakeJobs struct {
	mu       sync.Mutex
	requests []transcriber.Request
	refuse   bool
	finish   bool
}

func (f *fakeJobs) Submit(req transcriber.Request, done func(error)) bool {
	if f.refuse {
		return false
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.finish {
		done(nil)
	}
	return true
}

func (f *fakeJobs) Stats() admission.Stats {
	return admission.Stats{Depth: 2, Capacity: 5, EngineBusy: true}
}

func (f *fakeJobs) submitted() []transcriber.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transcriber.Request(nil), f.requests...)
}

type apiFixture struct {
	router *gin.Engine
	store  *chat.Store
	jobs   *fakeJobs
	spool  *Spool
}

func newFixture(t *testing.T, opts ...Option) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := Config{SpoolDir: t.TempDir()}
	cfg.ApplyDefaults()
	spool, err := NewSpool(cfg.SpoolDir)
	if err != nil {
		t.Fatalf("spool: %v", err)
	}
	hub := sse.NewHub(nil, time.Minute)
	go hub.Run()
	t.Cleanup(hub.Stop)

	f := &apiFixture{
		router: gin.New(),
		store:  chat.NewStore(chat.WithBroadcaster(hub)),
		jobs:   &fakeJobs{},
		spool:  spool,
	}
	New(cfg, f.store, f.jobs, spool, hub, opts...).Register(f.router)
	return f
}

func uploadRequest(t *testing.T, chatID, kind, mime, filename string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("kind", kind)
	if mime != "" {
		_ = w.WriteField("mime", mime)
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = part.Write(body)
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/chats/"+chatID+"/messages", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (f *apiFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodePost(t *testing.T, rec *httptest.ResponseRecorder) PostResponse {
	t.Helper()
	var env struct {
		Data PostResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env.Data
}

func TestPostVoiceQueuesJob(t *testing.T) {
	f := newFixture(t)

	rec := f.do(uploadRequest(t, "42", "voice", "audio/ogg", "note.oga", []byte("OggS")))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodePost(t, rec)
	if !resp.Queued || resp.MessageID == 0 {
		t.Errorf("unexpected response %+v", resp)
	}

	reqs := f.jobs.submitted()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 submitted job, got %d", len(reqs))
	}
	got := reqs[0]
	if got.ChatID != "42" || got.MessageID != resp.MessageID {
		t.Errorf("unexpected request %+v", got)
	}
	if got.Attachment.Kind != media.KindVoice || got.Attachment.Filename != "note.oga" {
		t.Errorf("unexpected attachment %+v", got.Attachment)
	}
	if f.spool.Len() != 1 {
		t.Errorf("upload should wait in the spool, got %d", f.spool.Len())
	}
	if msgs := f.store.Messages("42"); len(msgs) != 1 || msgs[0].From != chat.SenderUser {
		t.Errorf("unexpected history %+v", msgs)
	}
}

func TestPostNonAudioIsStoredOnly(t *testing.T) {
	f := newFixture(t)

	rec := f.do(uploadRequest(t, "42", "document", "application/pdf", "report.pdf", []byte("%PDF")))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if resp := decodePost(t, rec); resp.Queued {
		t.Error("document must not be queued")
	}
	if len(f.jobs.submitted()) != 0 {
		t.Error("no job expected")
	}
	if f.spool.Len() != 0 {
		t.Error("non-audio upload must not be spooled")
	}
}

func TestPostDiscardsUploadWhenJobEnds(t *testing.T) {
	f := newFixture(t)
	f.jobs.finish = true

	rec := f.do(uploadRequest(t, "42", "audio", "", "talk.mp3", []byte("ID3")))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if f.spool.Len() != 0 {
		t.Errorf("finished job should leave no spooled file, got %d", f.spool.Len())
	}
}

func TestPostRefusedOnShutdown(t *testing.T) {
	f := newFixture(t)
	f.jobs.refuse = true

	rec := f.do(uploadRequest(t, "42", "voice", "", "note.ogg", []byte("OggS")))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if f.spool.Len() != 0 {
		t.Errorf("refused upload must be discarded, got %d", f.spool.Len())
	}
}

func TestPostValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"bad kind", uploadRequest(t, "42", "video", "", "a.mp4", []byte("x"))},
		{"glob in chat id", uploadRequest(t, "4*2", "voice", "", "a.ogg", []byte("x"))},
		{"no file or text", func() *http.Request {
			var buf bytes.Buffer
			w := multipart.NewWriter(&buf)
			_ = w.WriteField("kind", "voice")
			_ = w.Close()
			req := httptest.NewRequest(http.MethodPost, "/v1/chats/42/messages", &buf)
			req.Header.Set("Content-Type", w.FormDataContentType())
			return req
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
	if len(f.jobs.submitted()) != 0 {
		t.Error("invalid requests must not submit jobs")
	}
}

func TestListMessagesAndQueue(t *testing.T) {
	f := newFixture(t)
	f.store.Post("42", "hello", "")
	f.store.Post("7", "other chat", "")

	rec := f.do(httptest.NewRequest(http.MethodGet, "/v1/chats/42/messages", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var msgs struct {
		Data []chat.Message `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msgs.Data) != 1 || msgs.Data[0].Text != "hello" {
		t.Errorf("unexpected messages %+v", msgs.Data)
	}

	rec = f.do(httptest.NewRequest(http.MethodGet, "/v1/queue", nil))
	var stats struct {
		Data admission.Stats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Data != (admission.Stats{Depth: 2, Capacity: 5, EngineBusy: true}) {
		t.Errorf("unexpected stats %+v", stats.Data)
	}
}

func TestChatScopedTokens(t *testing.T) {
	tokens, err := auth.NewService(auth.Config{Secret: "0123456789abcdef0123"})
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	f := newFixture(t, WithAuth(tokens))

	own, err := tokens.Issue("42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other, err := tokens.Issue("7")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
		{"other chat", "Bearer " + other, "", http.StatusForbidden},
		{"own chat", "Bearer " + own, "", http.StatusOK},
		{"query param", "", "?access_token=" + own, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/chats/42/messages"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if rec := f.do(req); rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/v1/queue", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("queue stats should stay public, got %d", rec.Code)
	}
}
