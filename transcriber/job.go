package transcriber

import (
	"context"
	"sync"

	"github.com/kbukum/whisperbot/media"
)

// Job is the per-request unit of work.
type Job struct {
	ID       uint64
	ChatID   string
	ReplyTo  int64
	Paths    media.TempPaths
	Position int
	Duration float64
	Short    bool
	Model    string

	mu     sync.Mutex
	status MessageRef
	sent   bool
}

// Status returns the current status message and whether one exists.
func (j *Job) Status() (MessageRef, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status, j.sent
}

func (j *Job) setStatus(ref MessageRef) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = ref
	j.sent = true
}

// jobStatus lets the engine drive the job's status message.
type jobStatus struct {
	job       *Job
	messenger Messenger
}

func (s jobStatus) Edit(ctx context.Context, text string) error {
	ref, _ := s.job.Status()
	return s.messenger.Edit(ctx, ref, text)
}

func (s jobStatus) Continue(ctx context.Context, text string) error {
	ref, err := s.messenger.Send(ctx, s.job.ChatID, text, 0)
	if err != nil {
		return err
	}
	s.job.setStatus(ref)
	return nil
}
