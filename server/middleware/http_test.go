package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whisperbot/logger"
	"github.com/kbukum/whisperbot/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_NoPanic(t *testing.T) {
	handler := middleware.Recovery(logger.Nop())(okHandler(http.StatusOK))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRecovery_Panic(t *testing.T) {
	handler := middleware.Recovery(logger.Nop())(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic("test panic")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected error code: %s", body.Error.Code)
	}
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestID_GeneratesID(t *testing.T) {
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(middleware.RequestIDHeader) == "" {
			t.Error("expected X-Request-Id in request headers")
		}
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	if len(rr.Header().Get(middleware.RequestIDHeader)) != 36 {
		t.Errorf("expected a UUID response header, got %q", rr.Header().Get(middleware.RequestIDHeader))
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	handler := middleware.RequestID()(okHandler(http.StatusOK))
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set(middleware.RequestIDHeader, "custom-id-123")
	handler.ServeHTTP(rr, req)
	if got := rr.Header().Get(middleware.RequestIDHeader); got != "custom-id-123" {
		t.Fatalf("expected custom-id-123, got %s", got)
	}
}

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins:   []string{"https://example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowCredentials: true,
	}
	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"allowed", "GET", "https://example.com", http.StatusOK, "https://example.com"},
		{"disallowed", "GET", "https://evil.com", http.StatusOK, ""},
		{"preflight", "OPTIONS", "https://example.com", http.StatusNoContent, "https://example.com"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := middleware.CORS(cfg)(okHandler(http.StatusOK))
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, "/v1/queue", http.NoBody)
			req.Header.Set("Origin", tc.origin)
			handler.ServeHTTP(rr, req)
			if rr.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Errorf("expected origin %q, got %q", tc.wantOrigin, got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// BodySizeLimit
// ---------------------------------------------------------------------------

func TestBodySizeLimit(t *testing.T) {
	handler := middleware.BodySizeLimit("8B")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		_, err := r.Body.Read(buf)
		for err == nil {
			_, err = r.Body.Read(buf)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader("small")))
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 under the limit, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader("far more than eight bytes")))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 over the limit, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Chain and RequestLogger
// ---------------------------------------------------------------------------

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name+"-before")
				next.ServeHTTP(w, r)
				order = append(order, name+"-after")
			})
		}
	}

	handler := middleware.Chain(mark("m1"), mark("m2"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))

	expected := []string{"m1-before", "m2-before", "handler", "m2-after", "m1-after"}
	if strings.Join(order, ",") != strings.Join(expected, ",") {
		t.Fatalf("expected %v, got %v", expected, order)
	}
}

type flushRecorder struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

func TestRequestLogger_DelegatesFlush(t *testing.T) {
	fr := &flushRecorder{ResponseWriter: httptest.NewRecorder()}
	handler := middleware.RequestLogger(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}))
	handler.ServeHTTP(fr, httptest.NewRequest("GET", "/v1/chats/1/events", http.NoBody))
	if !fr.flushed {
		t.Error("expected Flush to be delegated to underlying writer")
	}
}

// ---------------------------------------------------------------------------
// Auth and RateLimit (Gin)
// ---------------------------------------------------------------------------

type ctxKey struct{}

func TestAuth(t *testing.T) {
	validate := func(ctx context.Context, token string) (context.Context, error) {
		if token != "good" {
			return nil, errors.New("bad token")
		}
		return context.WithValue(ctx, ctxKey{}, "chat-1"), nil
	}
	r := gin.New()
	r.GET("/x", middleware.Auth(validate), func(c *gin.Context) {
		c.String(http.StatusOK, c.Request.Context().Value(ctxKey{}).(string))
	})

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", "", http.StatusUnauthorized},
		{"invalid", "Bearer bad", "", http.StatusUnauthorized},
		{"header", "Bearer good", "", http.StatusOK},
		{"query", "", "?access_token=good", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/x"+tc.query, http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, rr.Code)
			}
			if tc.want == http.StatusOK && rr.Body.String() != "chat-1" {
				t.Errorf("claims context not propagated: %q", rr.Body.String())
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.POST("/chats/:chat_id", middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerMinute: 2,
		KeyFunc:           middleware.ParamKey("chat_id"),
	}), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	post := func(chat string) int {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("POST", "/chats/"+chat, http.NoBody))
		return rr.Code
	}
	if post("a") != http.StatusAccepted || post("a") != http.StatusAccepted {
		t.Fatal("first two requests must pass")
	}
	if got := post("a"); got != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", got)
	}
	if got := post("b"); got != http.StatusAccepted {
		t.Errorf("other keys must not be limited, got %d", got)
	}
}
