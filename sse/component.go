package sse

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/whisperbot/component"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component runs a Hub under the component registry.
type Component struct {
	hub *Hub
	wg  sync.WaitGroup
}

// NewComponent wraps hub.
func NewComponent(hub *Hub) *Component {
	return &Component{hub: hub}
}

// Hub returns the underlying Hub.
func (c *Component) Hub() *Hub { return c.hub }

// Name returns the component name.
func (c *Component) Name() string { return "sse" }

// Start launches the Hub's event loop.
func (c *Component) Start(_ context.Context) error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.hub.Run()
	}()
	return nil
}

// Stop signals the Hub to shut down and waits for Run to return.
func (c *Component) Stop(_ context.Context) error {
	c.hub.Stop()
	c.wg.Wait()
	return nil
}

// Health returns the health status of the SSE hub.
func (c *Component) Health(_ context.Context) component.Health {
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", c.hub.ClientCount()),
	}
}

// Describe returns summary info for the startup banner.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "SSE Hub",
		Type:    "sse",
		Details: fmt.Sprintf("keepalive=%s", c.hub.KeepAlive()),
	}
}
