package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/whisperbot/admission"
	"github.com/kbukum/whisperbot/auth"
	"github.com/kbukum/whisperbot/chat"
	apperrors "github.com/kbukum/whisperbot/errors"
	"github.com/kbukum/whisperbot/logger"
	"github.com/kbukum/whisperbot/media"
	"github.com/kbukum/whisperbot/server"
	"github.com/kbukum/whisperbot/server/middleware"
	"github.com/kbukum/whisperbot/sse"
	"github.com/kbukum/whisperbot/transcriber"
	"github.com/kbukum/whisperbot/validation"
)

// chatIDRule keeps IDs usable inside SSE glob patterns.
const chatIDRule = `required,max=64,excludesall=*?[]/\:`

// Transcriber is the part of transcriber.Service the API drives.
type Transcriber interface {
	Submit(req transcriber.Request, done func(error)) bool
	Stats() admission.Stats
}

// API serves the chat routes.
type API struct {
	config Config
	store  *chat.Store
	jobs   Transcriber
	spool  *Spool
	hub    *sse.Hub
	tokens *auth.Service
	log    *logger.Logger
}

// Option configures an API.
type Option func(*API)

// WithAuth requires chat-scoped bearer tokens on chat routes.
func WithAuth(tokens *auth.Service) Option { return func(a *API) { a.tokens = tokens } }

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option { return func(a *API) { a.log = l } }

// New creates an API.
func New(cfg Config, store *chat.Store, jobs Transcriber, spool *Spool, hub *sse.Hub, opts ...Option) *API {
	a := &API{config: cfg, store: store, jobs: jobs, spool: spool, hub: hub, log: logger.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithComponent("httpapi")
	return a
}

// Register mounts the routes on r.
func (a *API) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.GET("/queue", a.getQueue)

	chats := v1.Group("/chats/:chat_id", a.checkChatID)
	if a.tokens != nil {
		chats.Use(middleware.Auth(a.validateToken), a.requireChatScope)
	}
	chats.POST("/messages", middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerMinute: a.config.UploadsPerMinute,
		KeyFunc:           middleware.ParamKey("chat_id"),
	}), a.postMessage)
	chats.GET("/messages", a.listMessages)
	chats.GET("/events", a.streamEvents)
}

// postForm is the non-file part of an upload.
type postForm struct {
	Kind string `form:"kind" json:"kind" validate:"omitempty,oneof=voice audio document"`
	MIME string `form:"mime" json:"mime" validate:"max=128"`
	Text string `form:"text" json:"text" validate:"max=4096"`
}

// PostResponse acknowledges an accepted message.
type PostResponse struct {
	MessageID int64 `json:"message_id"`
	Queued    bool  `json:"queued"`
}

func (a *API) postMessage(c *gin.Context) {
	chatID := c.Param("chat_id")

	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}
	if err := validation.Validate(form); err != nil {
		server.RespondWithError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		if form.Text == "" {
			server.RespondWithError(c, apperrors.InvalidInput("file", "a file or text is required"))
			return
		}
		msg := a.store.Post(chatID, form.Text, "")
		server.RespondAccepted(c, PostResponse{MessageID: msg.ID})
		return
	}
	defer file.Close()

	att := media.Attachment{
		Kind:     media.ParseKind(form.Kind),
		MIME:     form.MIME,
		Filename: header.Filename,
	}
	if att.Kind == "" {
		att.Kind = media.KindDocument
	}
	if att.MIME == "" {
		att.MIME = header.Header.Get("Content-Type")
	}

	msg := a.store.Post(chatID, form.Text, header.Filename)
	if !media.Classify(att) {
		server.RespondAccepted(c, PostResponse{MessageID: msg.ID})
		return
	}

	ref, err := a.spool.Save(file)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	req := transcriber.Request{ChatID: chatID, MessageID: msg.ID, Attachment: att, FileRef: ref}
	if !a.jobs.Submit(req, func(error) { a.discard(ref) }) {
		a.discard(ref)
		server.RespondWithError(c, apperrors.Canceled(context.Canceled))
		return
	}
	server.RespondAccepted(c, PostResponse{MessageID: msg.ID, Queued: true})
}

func (a *API) listMessages(c *gin.Context) {
	server.RespondOK(c, a.store.Messages(c.Param("chat_id")))
}

func (a *API) streamEvents(c *gin.Context) {
	chatID := c.Param("chat_id")
	sse.ServeSSE(a.hub, c.Writer, c.Request, chat.SubscriberID(chatID, uuid.NewString()),
		sse.WithMetadata(logger.FieldChatID, chatID))
}

func (a *API) getQueue(c *gin.Context) {
	server.RespondOK(c, a.jobs.Stats())
}

func (a *API) checkChatID(c *gin.Context) {
	if err := validation.Var("chat_id", c.Param("chat_id"), chatIDRule); err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.Next()
}

func (a *API) validateToken(ctx context.Context, token string) (context.Context, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return auth.WithClaims(ctx, claims), nil
}

func (a *API) requireChatScope(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c.Request.Context())
	if !ok || claims.ChatID() != c.Param("chat_id") {
		server.RespondWithError(c, apperrors.Forbidden(""))
		return
	}
	c.Next()
}

// discard drops an upload whose job never moved it.
func (a *API) discard(ref string) {
	if err := a.spool.Discard(ref); err != nil {
		a.log.Warn("spool cleanup failed", logger.Fields("ref", ref, logger.FieldError, err.Error()))
	}
}
