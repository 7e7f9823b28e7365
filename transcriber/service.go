package transcriber

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"sync"

	"github.com/kbukum/whisperbot/admission"
	"github.com/kbukum/whisperbot/engine"
	apperrors "github.com/kbukum/whisperbot/errors"
	"github.com/kbukum/whisperbot/logger"
	"github.com/kbukum/whisperbot/media"
	"github.com/kbukum/whisperbot/observability"
)

// Status texts sent before the transcript replaces them.
const (
	TextTranscribing = "Transcribing..."
	textQueued       = "Queued (%d)..."
	textRunning      = "Transcribing (%s)..."
)

// Service handles transcription requests.
type Service struct {
	config     Config
	messenger  Messenger
	downloader Downloader
	prober     Prober
	converter  Converter
	engine     Engine
	selector   engine.Selector
	controller *admission.Controller
	temps      *media.TempAllocator
	metrics    *observability.Metrics
	log        *logger.Logger

	baseCtx  context.Context
	cancel   context.CancelFunc
	submitMu sync.Mutex
	jobs     sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithProber replaces the ffprobe-based prober.
func WithProber(p Prober) Option { return func(s *Service) { s.prober = p } }

// WithConverter replaces the ffmpeg-based converter.
func WithConverter(c Converter) Option { return func(s *Service) { s.converter = c } }

// WithEngine replaces the engine supervisor.
func WithEngine(e Engine) Option { return func(s *Service) { s.engine = e } }

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option { return func(s *Service) { s.log = l } }

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.Metrics) Option { return func(s *Service) { s.metrics = m } }

// NewService creates a Service. cfg must have defaults applied.
func NewService(cfg Config, messenger Messenger, downloader Downloader, opts ...Option) *Service {
	s := &Service{
		config:     cfg,
		messenger:  messenger,
		downloader: downloader,
		selector:   engine.NewSelector(cfg.Engine),
		temps:      media.NewTempAllocator(cfg.Media.TempDir),
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("transcriber")

	s.controller = admission.NewController(admission.CounterConfig{
		Capacity: cfg.QueueCapacity,
	})
	if s.prober == nil {
		s.prober = media.NewProber(cfg.Media, s.log)
	}
	if s.converter == nil {
		s.converter = media.NewConverter(cfg.Media, s.log)
	}
	if s.engine == nil {
		s.engine = engine.NewSupervisor(cfg.Engine, engine.WithLogger(s.log), engine.WithMetrics(s.metrics))
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Stats returns the admission state.
func (s *Service) Stats() admission.Stats {
	return s.controller.Stats()
}

// Submit runs Handle in the background under the service context, which
// Stop cancels. done, if non-nil, receives the job's error once it has
// finished. Submit reports false once the service is stopping.
func (s *Service) Submit(req Request, done func(error)) bool {
	s.submitMu.Lock()
	defer s.submitMu.Unlock()
	if s.baseCtx.Err() != nil {
		return false
	}
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		err := s.Handle(s.baseCtx, req)
		if done != nil {
			done(err)
		}
	}()
	return true
}

// Handle runs one request to completion. Requests whose attachment is not
// audio are ignored. The returned error is the job's terminal error, already
// reported to the user.
func (s *Service) Handle(ctx context.Context, req Request) error {
	if !media.Classify(req.Attachment) {
		s.log.Debug("ignoring non-audio attachment", logger.Fields(
			logger.FieldChatID, req.ChatID,
			"kind", string(req.Attachment.Kind),
		))
		return nil
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanTranscriberHandle)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrChatID, req.ChatID)

	position, ok := s.controller.Counter.TryAdmit()
	if !ok {
		err := apperrors.QueueFull(s.controller.Counter.Capacity())
		s.reply(ctx, req.ChatID, req.MessageID, err.Message)
		s.finish(ctx, nil, req, err)
		return err
	}
	s.metrics.JobAdmitted(ctx)

	id, paths := s.temps.Next()
	job := &Job{
		ID:       id,
		ChatID:   req.ChatID,
		ReplyTo:  req.MessageID,
		Paths:    paths,
		Position: position,
	}
	observability.SetSpanAttribute(ctx, observability.AttrJobID, id)
	observability.SetSpanAttribute(ctx, observability.AttrPosition, position)

	err := s.run(ctx, job, req)

	s.controller.Counter.Release()
	if rmErr := job.Paths.Remove(); rmErr != nil {
		s.log.Warn("temp file cleanup failed", logger.Fields(logger.FieldJobID, job.ID, logger.FieldError, rmErr.Error()))
	}
	s.finish(ctx, job, req, err)
	return err
}

// run takes an admitted job from download to the final edit.
func (s *Service) run(ctx context.Context, job *Job, req Request) error {
	if err := s.downloader.Download(ctx, req, job.Paths.Input); err != nil {
		return s.reject(ctx, job, apperrors.DownloadFailed(err))
	}

	seconds, err := s.probe(ctx, job.Paths.Input)
	if err != nil {
		return s.reject(ctx, job, asAppError(err, apperrors.UnreadableMedia))
	}
	if err := media.CheckDuration(seconds, s.config.Media.MaxDurationSeconds); err != nil {
		return s.reject(ctx, job, asAppError(err, apperrors.UnreadableMedia))
	}
	job.Duration = seconds
	job.Short = media.IsShort(seconds, s.config.Media.ShortAudioSeconds)
	observability.SetSpanAttribute(ctx, observability.AttrDurationS, seconds)

	err = s.convert(ctx, job)
	// The original is not needed past this point, whatever the outcome.
	if rmErr := os.Remove(job.Paths.Input); rmErr != nil && !stderrors.Is(rmErr, os.ErrNotExist) {
		s.log.Warn("input cleanup failed", logger.Fields(logger.FieldJobID, job.ID, logger.FieldError, rmErr.Error()))
	}
	if err != nil {
		return s.reject(ctx, job, asAppError(err, apperrors.ConversionFailed))
	}

	ref, err := s.messenger.Send(ctx, job.ChatID, queueText(job.Position), job.ReplyTo)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("send status message: %w", err))
	}
	job.setStatus(ref)
	status := jobStatus{job: job, messenger: s.messenger}

	if err := s.controller.Lock.Acquire(ctx); err != nil {
		s.edit(ctx, status, apperrors.MsgCanceled)
		return apperrors.Canceled(err)
	}
	defer s.controller.Lock.Release()

	model := s.selector.Select(s.controller.Counter.Depth())
	job.Model = model.Name
	s.edit(ctx, status, fmt.Sprintf(textRunning, model.Name))

	res := s.engine.Run(ctx, engine.Invocation{
		JobID:   job.ID,
		Model:   model,
		WavPath: job.Paths.Output,
		Short:   job.Short,
		Status:  status,
	})
	return res.Err
}

func (s *Service) probe(ctx context.Context, path string) (float64, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanMediaProbe)
	defer span.End()
	seconds, err := s.prober.ProbeDuration(ctx, path)
	observability.SetSpanError(ctx, err)
	return seconds, err
}

func (s *Service) convert(ctx context.Context, job *Job) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanMediaConvert)
	defer span.End()
	err := s.converter.ToWaveform(ctx, job.Paths.Input, job.Paths.Output, job.Duration)
	observability.SetSpanError(ctx, err)
	return err
}

// reject reports a failure that happened before the status message exists.
func (s *Service) reject(ctx context.Context, job *Job, err *apperrors.AppError) error {
	s.reply(ctx, job.ChatID, job.ReplyTo, err.Message)
	return err
}

func (s *Service) reply(ctx context.Context, chatID string, replyTo int64, text string) {
	if _, err := s.messenger.Send(context.WithoutCancel(ctx), chatID, text, replyTo); err != nil {
		s.log.Warn("reply failed", logger.Fields(logger.FieldChatID, chatID, logger.FieldError, err.Error()))
	}
}

func (s *Service) edit(ctx context.Context, status jobStatus, text string) {
	// A canceled job still owes the user its terminal edit.
	if err := status.Edit(context.WithoutCancel(ctx), text); err != nil {
		s.log.Warn("status edit failed", logger.Fields(logger.FieldJobID, status.job.ID, logger.FieldError, err.Error()))
	}
	s.metrics.MessageEdited(ctx)
}

// finish logs the terminal outcome once and records it.
func (s *Service) finish(ctx context.Context, job *Job, req Request, err error) {
	fields := logger.Fields(logger.FieldChatID, req.ChatID, logger.FieldMessageID, req.MessageID)
	if job != nil {
		fields[logger.FieldJobID] = job.ID
		fields[logger.FieldDurationS] = job.Duration
		if job.Model != "" {
			fields[logger.FieldModel] = job.Model
		}
	}
	if err == nil {
		s.log.Info("transcription done", fields)
		return
	}

	code := string(apperrors.ErrCodeInternal)
	if appErr, ok := apperrors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	fields[logger.FieldCode] = code
	fields[logger.FieldError] = err.Error()
	s.log.Warn("transcription failed", fields)
	observability.SetSpanAttribute(ctx, observability.AttrErrorCode, code)
	observability.SetSpanError(ctx, err)
	if job == nil || job.Model == "" {
		s.metrics.JobRejected(ctx, code)
	}
}

func queueText(position int) string {
	if position > 0 {
		return fmt.Sprintf(textQueued, position+1)
	}
	return TextTranscribing
}

// asAppError keeps an *AppError as is and wraps anything else with wrap.
func asAppError(err error, wrap func(error) *apperrors.AppError) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	return wrap(err)
}
