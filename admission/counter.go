package admission

import (
	"errors"
	"sync"
)

// ErrQueueFull is returned by Admit when the counter is at capacity.
var ErrQueueFull = errors.New("admission queue is full")

// CounterConfig configures a Counter.
type CounterConfig struct {
	// Capacity is the maximum number of admitted jobs.
	Capacity int
	// OnAdmit is called after a successful admission with the new depth.
	OnAdmit func(depth int)
	// OnReject is called when an admission is refused.
	OnReject func()
	// OnRelease is called after a release with the new depth.
	OnRelease func(depth int)
}

// Counter is a bounded count of admitted jobs.
type Counter struct {
	config CounterConfig

	mu    sync.Mutex
	count int
}

// NewCounter creates a Counter. A non-positive capacity defaults to 10.
func NewCounter(config CounterConfig) *Counter {
	if config.Capacity <= 0 {
		config.Capacity = 10
	}
	return &Counter{config: config}
}

// TryAdmit admits one job if the counter is below capacity. It returns the
// number of jobs that were admitted before this one. When the counter is
// full it returns false and leaves the count unchanged.
func (c *Counter) TryAdmit() (position int, ok bool) {
	c.mu.Lock()
	if c.count >= c.config.Capacity {
		c.mu.Unlock()
		if c.config.OnReject != nil {
			c.config.OnReject()
		}
		return 0, false
	}
	position = c.count
	c.count++
	depth := c.count
	c.mu.Unlock()

	if c.config.OnAdmit != nil {
		c.config.OnAdmit(depth)
	}
	return position, true
}

// Admit is TryAdmit returning ErrQueueFull on refusal.
func (c *Counter) Admit() (int, error) {
	pos, ok := c.TryAdmit()
	if !ok {
		return 0, ErrQueueFull
	}
	return pos, nil
}

// Release gives back one admission. Releasing more than was admitted is a
// programming error and panics.
func (c *Counter) Release() {
	c.mu.Lock()
	if c.count == 0 {
		c.mu.Unlock()
		panic("admission: Release without matching admission")
	}
	c.count--
	depth := c.count
	c.mu.Unlock()

	if c.config.OnRelease != nil {
		c.config.OnRelease(depth)
	}
}

// Depth returns the number of currently admitted jobs.
func (c *Counter) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Available returns the number of free admission slots.
func (c *Counter) Available() int {
	return c.config.Capacity - c.Depth()
}

// Capacity returns the configured bound.
func (c *Counter) Capacity() int {
	return c.config.Capacity
}
