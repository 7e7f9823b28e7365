package admission

// Controller owns the admission counter and the engine lock for one service.
type Controller struct {
	Counter *Counter
	Lock    *EngineLock
}

// NewController creates a Controller from the counter configuration.
func NewController(config CounterConfig) *Controller {
	return &Controller{
		Counter: NewCounter(config),
		Lock:    NewEngineLock(),
	}
}

// Stats is a point-in-time view of the controller.
type Stats struct {
	Depth      int  `json:"depth"`
	Capacity   int  `json:"capacity"`
	EngineBusy bool `json:"engine_busy"`
}

// Stats returns the current depth, capacity and engine state.
func (c *Controller) Stats() Stats {
	return Stats{
		Depth:      c.Counter.Depth(),
		Capacity:   c.Counter.Capacity(),
		EngineBusy: c.Lock.Held(),
	}
}
