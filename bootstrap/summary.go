package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/whisperbot/component"
)

// Summary prints the startup banner: components with their descriptions,
// HTTP routes and live health.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: os.Stdout}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) { s.out = w }

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display prints the summary for every component in registry.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	fmt.Fprintf(w, "\n🚀 %s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if registry == nil {
		fmt.Fprintf(w, "   └── No components registered\n\n")
		return
	}

	comps := registry.All()
	if len(comps) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n\n")
		return
	}

	fmt.Fprintf(w, "\n📦 Components\n")
	var routes []component.Route
	for i, c := range comps {
		desc := component.Description{Name: c.Name()}
		if d, ok := c.(component.Describable); ok {
			desc = d.Describe()
			if desc.Name == "" {
				desc.Name = c.Name()
			}
		}
		line := desc.Name
		if desc.Type != "" {
			line += " [" + desc.Type + "]"
		}
		if desc.Details != "" {
			line += ": " + desc.Details
		}
		if desc.Port > 0 {
			line += fmt.Sprintf(" (:%d)", desc.Port)
		}
		fmt.Fprintf(w, "   %s %s\n", treePrefix(i, len(comps)), line)

		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", treePrefix(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	health := registry.HealthAll(ctx)
	fmt.Fprintf(w, "\n🏥 Health Check\n")
	for i, h := range health {
		msg := ""
		if h.Message != "" {
			msg = " (" + h.Message + ")"
		}
		fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(health)),
			healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
	}

	switch component.Overall(health) {
	case component.StatusHealthy:
		fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n\n", len(health), len(health))
	default:
		fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n\n", countHealthy(health), len(health))
	}
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func countHealthy(health []component.Health) int {
	n := 0
	for _, h := range health {
		if h.Status == component.StatusHealthy {
			n++
		}
	}
	return n
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
