package engine

import (
	"context"
	"time"

	apperrors "github.com/kbukum/whisperbot/errors"
	"github.com/kbukum/whisperbot/logger"
	"github.com/kbukum/whisperbot/observability"
)

// NoSpeechText is shown when the engine exits cleanly without output.
const NoSpeechText = "(no speech detected)"

// Status is the job's current status message.
type Status interface {
	// Edit replaces the text of the current status message.
	Edit(ctx context.Context, text string) error
	// Continue sends text as a new message that becomes the current one.
	Continue(ctx context.Context, text string) error
}

// Invocation is one request to transcribe a waveform.
type Invocation struct {
	JobID   uint64
	Model   Model
	WavPath string
	Short   bool
	Status  Status
}

// Result describes how an invocation ended.
type Result struct {
	State    State
	Model    string
	Text     string
	ExitCode int
	Messages int
	Edits    int
	Elapsed  time.Duration
	// Err is nil only for StateExitedOK.
	Err error
}

// Supervisor runs the engine for one invocation at a time per call. It holds
// no per-invocation state and may be shared.
type Supervisor struct {
	config  Config
	spawner Spawner
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithSpawner replaces the process spawner.
func WithSpawner(sp Spawner) Option {
	return func(s *Supervisor) { s.spawner = sp }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Supervisor) { s.log = l }
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Supervisor) { s.metrics = m }
}

// NewSupervisor creates a Supervisor.
func NewSupervisor(cfg Config, opts ...Option) *Supervisor {
	s := &Supervisor{
		config:  cfg,
		spawner: ProcessSpawner{},
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("engine")
	return s
}

// Config returns the supervisor configuration.
func (s *Supervisor) Config() Config {
	return s.config
}

// run is the state of one invocation, owned by the Run goroutine.
type run struct {
	inv      Invocation
	log      *logger.Logger
	buf      StreamBuffer
	lastEdit time.Time
	edits    int
	messages int
	// unsplit is set once a continuation message could not be sent. The
	// current message then keeps the whole text.
	unsplit bool
}

// Run supervises one engine invocation to completion. It always ends with
// exactly one final edit of the current status message and never returns
// while the child is still running.
func (s *Supervisor) Run(ctx context.Context, inv Invocation) Result {
	ctx, span := observability.StartSpan(ctx, observability.SpanEngineRun)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrJobID, inv.JobID)
	observability.SetSpanAttribute(ctx, observability.AttrModel, inv.Model.Name)
	observability.SetSpanAttribute(ctx, observability.AttrShort, inv.Short)

	r := &run{
		inv:      inv,
		messages: 1,
		log: s.log.WithFields(logger.Fields(
			logger.FieldJobID, inv.JobID,
			logger.FieldModel, inv.Model.Name,
		)),
	}

	start := s.now()
	res := s.supervise(ctx, r, start)
	res.Model = inv.Model.Name
	res.Edits = r.edits
	res.Messages = r.messages
	res.Elapsed = s.now().Sub(start)

	// The caller's context may be gone; the user still gets a final answer.
	finalCtx := context.WithoutCancel(ctx)
	final := s.finalText(finalCtx, r, res)
	s.edit(finalCtx, r, final)
	res.Text = final
	res.Edits = r.edits
	res.Messages = r.messages

	s.metrics.EngineFinished(ctx, res.Model, res.State.String(), res.Elapsed)
	observability.SetSpanAttribute(ctx, observability.AttrOutcome, res.State.String())
	observability.SetSpanAttribute(ctx, observability.AttrMessages, res.Messages)
	observability.SetSpanAttribute(ctx, observability.AttrExitCode, res.ExitCode)
	if res.Err != nil {
		observability.SetSpanError(ctx, res.Err)
	}
	r.log.Debug("engine done", logger.Fields(
		logger.FieldState, res.State.String(),
		"exit_code", res.ExitCode,
		"edits", res.Edits,
		"messages", res.Messages,
		logger.FieldDuration, res.Elapsed.Milliseconds(),
	))
	return res
}

func (s *Supervisor) supervise(ctx context.Context, r *run, start time.Time) Result {
	cmd := s.config.Command(r.inv.Model, r.inv.WavPath, r.inv.Short)
	r.log.Debug("engine starting", logger.Fields(logger.FieldState, StateStarting.String(), "command", cmd.String()))

	child, err := s.spawner.Spawn(cmd)
	if err != nil {
		r.log.Warn("engine spawn failed", logger.Fields(logger.FieldError, err.Error()))
		return Result{State: StateExitedError, ExitCode: -1, Err: apperrors.SpawnFailed(err)}
	}
	defer func() { _ = child.Close() }()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		now := s.now()
		if now.Sub(start) > s.config.Timeout {
			_ = child.Kill()
			_ = child.Wait()
			r.log.Warn("engine timed out", logger.Fields(logger.FieldState, StateTimedOut.String()))
			return Result{State: StateTimedOut, ExitCode: -1, Err: apperrors.EngineTimeout(s.config.Timeout)}
		}

		r.buf.Append(child.Drain())
		s.flush(ctx, r, now)

		if child.Exited() {
			r.buf.Append(child.DrainRemaining(s.config.DrainGrace))
			waitErr := child.Wait()
			code := child.ExitCode()
			if waitErr != nil || code != 0 {
				return Result{State: StateExitedError, ExitCode: code, Err: apperrors.EngineExitedNonZero(code)}
			}
			return Result{State: StateExitedOK}
		}

		select {
		case <-ctx.Done():
			_ = child.Kill()
			_ = child.Wait()
			r.log.Info("engine canceled", logger.Fields(logger.FieldState, StateCanceled.String()))
			return Result{State: StateCanceled, ExitCode: -1, Err: apperrors.Canceled(ctx.Err())}
		case <-ticker.C:
		}
	}
}

// flush applies the overflow split or, failing that, a throttled edit.
func (s *Supervisor) flush(ctx context.Context, r *run, now time.Time) {
	if s.overflow(ctx, r, now) {
		return
	}
	if r.buf.Dirty() && now.Sub(r.lastEdit) >= s.config.EditInterval {
		s.edit(ctx, r, r.buf.String())
		r.buf.MarkPushed()
		r.lastEdit = now
	}
}

// overflow moves text beyond the message limit into continuation messages.
func (s *Supervisor) overflow(ctx context.Context, r *run, now time.Time) bool {
	split := false
	for !r.unsplit {
		saved := r.buf.save()
		head, ok := r.buf.TakeOverflow(s.config.MessageLimit, s.config.ContinuationMarker)
		if !ok {
			return split
		}
		split = true
		s.edit(ctx, r, head)
		r.lastEdit = now
		if err := r.inv.Status.Continue(ctx, s.config.ContinuationMarker); err != nil {
			r.log.Warn("continuation message failed", logger.Fields(logger.FieldError, err.Error()))
			r.buf.restore(saved)
			r.unsplit = true
			return false
		}
		r.messages++
	}
	return split
}

func (s *Supervisor) finalText(ctx context.Context, r *run, res Result) string {
	switch res.State {
	case StateTimedOut:
		return apperrors.MsgEngineTimeout
	case StateCanceled:
		return apperrors.MsgCanceled
	}

	s.overflow(ctx, r, s.now())
	if text := r.buf.Trimmed(); text != "" {
		return text
	}
	if res.Err != nil {
		return apperrors.MsgEngineFailed
	}
	return NoSpeechText
}

func (s *Supervisor) edit(ctx context.Context, r *run, text string) {
	r.edits++
	s.metrics.MessageEdited(ctx)
	if err := r.inv.Status.Edit(ctx, text); err != nil {
		r.log.Warn("status edit failed", logger.Fields(logger.FieldError, err.Error()))
	}
}
