package transcriber

import (
	"context"
	"fmt"

	"github.com/kbukum/whisperbot/component"
	"github.com/kbukum/whisperbot/logger"
)

var _ component.Component = (*Service)(nil)

// Name implements component.Component.
func (s *Service) Name() string { return "transcriber" }

// Start registers the queue gauge and announces the limits.
func (s *Service) Start(_ context.Context) error {
	if err := s.metrics.RegisterQueueDepth(func() int64 {
		return int64(s.controller.Counter.Depth())
	}); err != nil {
		return err
	}
	s.log.Info("whisperbot started", logger.Fields(
		"queue_max", s.config.QueueCapacity,
		"audio_max_s", s.config.Media.MaxDurationSeconds,
		"engine", s.config.Engine.Path,
	))
	return nil
}

// Stop cancels in-flight jobs and waits for them to report and clean up.
func (s *Service) Stop(ctx context.Context) error {
	// Holding submitMu orders the cancel after any in-progress Add.
	s.submitMu.Lock()
	s.cancel()
	s.submitMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.jobs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("transcriber: jobs still running: %w", ctx.Err())
	}
}

// Health reports degraded while the queue is full.
func (s *Service) Health(_ context.Context) component.Health {
	st := s.controller.Stats()
	h := component.Health{Name: s.Name(), Status: component.StatusHealthy}
	if st.Depth >= st.Capacity {
		h.Status = component.StatusDegraded
		h.Message = "queue full"
	}
	return h
}

// Describe implements component.Describable.
func (s *Service) Describe() component.Description {
	return component.Description{
		Name: "Transcriber",
		Type: "worker",
		Details: fmt.Sprintf("queue=%d max=%ds models=%s/%s",
			s.config.QueueCapacity,
			s.config.Media.MaxDurationSeconds,
			s.config.Engine.QualityModel.Name,
			s.config.Engine.FastModel.Name,
		),
	}
}
