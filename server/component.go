package server

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kbukum/whisperbot/component"
)

const componentName = "http-server"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// systemPaths are listed after the API routes in the startup summary.
var systemPaths = map[string]bool{
	"/healthz": true,
	"/livez":   true,
	"/version": true,
}

// Component wraps Server for the component registry.
type Component struct {
	server *Server
}

// NewComponent returns a component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start starts the underlying HTTP server.
func (c *Component) Start(ctx context.Context) error { return c.server.Start(ctx) }

// Stop gracefully shuts down the underlying HTTP server.
func (c *Component) Stop(ctx context.Context) error { return c.server.Stop(ctx) }

// Health reports healthy once the listener is bound.
func (c *Component) Health(_ context.Context) component.Health {
	c.server.mu.Lock()
	bound := c.server.listener != nil
	c.server.mu.Unlock()
	if bound {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not listening"}
}

// Describe returns summary info for the startup banner.
func (c *Component) Describe() component.Description {
	cfg := c.server.config
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s:%d h2c max_body=%s", cfg.Host, cfg.Port, cfg.MaxBodySize),
		Port:    cfg.Port,
	}
}

// Routes returns the registered Gin routes, API routes first.
func (c *Component) Routes() []component.Route {
	ginRoutes := c.server.engine.Routes()
	sort.Slice(ginRoutes, func(i, j int) bool {
		iSys, jSys := systemPaths[ginRoutes[i].Path], systemPaths[ginRoutes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return methodOrder(ginRoutes[i].Method) < methodOrder(ginRoutes[j].Method)
	})

	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: formatHandlerName(r.Handler),
		})
	}
	return routes
}

// formatHandlerName turns Gin's handler path, e.g.
// "github.com/kbukum/whisperbot/httpapi.(*API).postMessage-fm", into
// "API.postMessage".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// Closures: "endpoint.Health.func1" becomes "health".
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				return strings.ToLower(parts[i])
			}
		}
	}

	// Drop the lowercase package prefix.
	if pkg, rest, ok := strings.Cut(name, "."); ok && rest != "" && strings.ToLower(pkg) == pkg {
		name = rest
	}
	return name
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
