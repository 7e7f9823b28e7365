package admission

import "context"

// EngineLock is a single-slot lock whose Acquire honors context cancellation.
// Waiters are not served in strict arrival order.
type EngineLock struct {
	slot chan struct{}
}

// NewEngineLock creates an unlocked EngineLock.
func NewEngineLock() *EngineLock {
	return &EngineLock{slot: make(chan struct{}, 1)}
}

// Acquire blocks until the lock is held or ctx is done.
func (l *EngineLock) Acquire(ctx context.Context) error {
	select {
	case l.slot <- struct{}{}:
		return nil
	default:
	}

	select {
	case l.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes the lock only if it is free.
func (l *EngineLock) TryAcquire() bool {
	select {
	case l.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees the lock. Releasing an unheld lock panics.
func (l *EngineLock) Release() {
	select {
	case <-l.slot:
	default:
		panic("admission: Release of unlocked EngineLock")
	}
}

// Held reports whether the lock is currently held.
func (l *EngineLock) Held() bool {
	return len(l.slot) == 1
}
