package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/whisperbot/component"
	"github.com/kbukum/whisperbot/config"
	"github.com/kbukum/whisperbot/logger"
)

type testConfig struct {
	config.ServiceConfig
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   component.Health
	events   *[]string

	mu      sync.Mutex
	started bool
	stopped bool
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	if m.events != nil {
		*m.events = append(*m.events, "start "+m.name)
	}
	return m.startErr
}

func (m *mockComponent) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	if m.events != nil {
		*m.events = append(*m.events, "stop "+m.name)
	}
	return m.stopErr
}

func (m *mockComponent) Health(ctx context.Context) component.Health {
	h := m.health
	h.Name = m.name
	if h.Status == "" {
		h.Status = component.StatusHealthy
	}
	return h
}

func (m *mockComponent) Describe() component.Description {
	return component.Description{Type: "worker", Details: "queue=5"}
}

func newTestApp(t *testing.T, opts ...Option) (*App[*testConfig], *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Name: "whisperbot", Version: "1.0.0"}}
	opts = append([]Option{WithLogger(logger.Nop()), WithSummaryOutput(&out)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app, &out
}

// canceled returns a context that is already done, so Run returns right
// after startup.
func canceled() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t)
	if app.Name != "whisperbot" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %q %q", app.Name, app.Version)
	}
	if app.Components == nil || app.Logger == nil || app.Summary == nil {
		t.Fatal("expected registry, logger and summary")
	}
	if app.Cfg.Environment != "development" {
		t.Errorf("defaults not applied, environment %q", app.Cfg.Environment)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected default 15s, got %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ServiceConfig
	}{
		{"missing name", config.ServiceConfig{Environment: "development"}},
		{"bad environment", config.ServiceConfig{Name: "x", Environment: "qa"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewApp(&testConfig{ServiceConfig: tt.cfg}, WithLogger(logger.Nop())); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNewAppOptions(t *testing.T) {
	custom := logger.Nop()
	app, _ := newTestApp(t, WithGracefulTimeout(30*time.Second), WithLogger(custom))
	if app.gracefulTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", app.gracefulTimeout)
	}
	if app.Logger != custom {
		t.Error("expected custom logger")
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	app, _ := newTestApp(t)
	if err := app.RegisterComponent(&mockComponent{name: "transcriber"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if app.Components.Get("transcriber") == nil {
		t.Error("expected component to be registered")
	}
	if err := app.RegisterComponent(&mockComponent{name: "transcriber"}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestRunLifecycleOrder(t *testing.T) {
	app, _ := newTestApp(t)
	var events []string
	for _, name := range []string{"sse", "transcriber", "http-server"} {
		if err := app.RegisterComponent(&mockComponent{name: name, events: &events}); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	app.OnStart(func(context.Context) error { events = append(events, "onStart"); return nil })
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		if a.Cfg.Name != "whisperbot" {
			t.Errorf("unexpected cfg name %q", a.Cfg.Name)
		}
		events = append(events, "configure")
		return nil
	})
	app.OnReady(func(context.Context) error { events = append(events, "onReady"); return nil })
	app.OnStop(func(context.Context) error { events = append(events, "onStop"); return nil })

	if err := app.Run(canceled()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"start sse", "start transcriber", "start http-server",
		"onStart", "configure", "onReady",
		"onStop",
		"stop http-server", "stop transcriber", "stop sse",
	}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Errorf("lifecycle order\n got: %v\nwant: %v", events, want)
	}
}

func TestRunStartupFailures(t *testing.T) {
	fail := func(context.Context) error { return fmt.Errorf("boom") }
	tests := []struct {
		name  string
		setup func(app *App[*testConfig])
	}{
		{"component start", func(app *App[*testConfig]) {
			_ = app.RegisterComponent(&mockComponent{name: "bad", startErr: fmt.Errorf("start failed")})
		}},
		{"start hook", func(app *App[*testConfig]) { app.OnStart(fail) }},
		{"configure", func(app *App[*testConfig]) {
			app.OnConfigure(func(ctx context.Context, _ *App[*testConfig]) error { return fail(ctx) })
		}},
		{"ready hook", func(app *App[*testConfig]) { app.OnReady(fail) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			first := &mockComponent{name: "first"}
			_ = app.RegisterComponent(first)
			tt.setup(app)

			if err := app.Run(canceled()); err == nil {
				t.Fatal("expected startup error")
			}
			if !first.started || !first.stopped {
				t.Errorf("started component must be stopped on failure (started=%v stopped=%v)",
					first.started, first.stopped)
			}
		})
	}
}

func TestRunStopErrors(t *testing.T) {
	app, _ := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "transcriber", stopErr: fmt.Errorf("drain timeout")})
	if err := app.Run(canceled()); err == nil {
		t.Error("expected component stop error")
	}

	app, _ = newTestApp(t)
	app.OnStop(func(context.Context) error { return fmt.Errorf("hook failed") })
	if err := app.Run(canceled()); err == nil {
		t.Error("expected stop hook error")
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		health  []component.HealthStatus
		wantErr bool
	}{
		{"empty", nil, false},
		{"all healthy", []component.HealthStatus{component.StatusHealthy, component.StatusHealthy}, false},
		{"degraded", []component.HealthStatus{component.StatusHealthy, component.StatusDegraded}, true},
		{"unhealthy", []component.HealthStatus{component.StatusUnhealthy}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			for i, st := range tt.health {
				_ = app.RegisterComponent(&mockComponent{
					name:   fmt.Sprintf("c%d", i),
					health: component.Health{Status: st, Message: "queue full"},
				})
			}
			err := app.ReadyCheck(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("ReadyCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHookErrorStopsExecution(t *testing.T) {
	secondCalled := false
	hooks := []Hook{
		func(context.Context) error { return fmt.Errorf("fail") },
		func(context.Context) error { secondCalled = true; return nil },
	}
	if err := runHooks(context.Background(), hooks); err == nil {
		t.Error("expected error from failing hook")
	}
	if secondCalled {
		t.Error("second hook must not run after the first fails")
	}
}

func TestWaitForSignalContextCancellation(t *testing.T) {
	app, _ := newTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if sig := app.WaitForSignal(ctx); sig != nil {
		t.Errorf("expected nil signal on cancellation, got %v", sig)
	}
}

func TestSummaryDisplay(t *testing.T) {
	app, out := newTestApp(t)
	_ = app.RegisterComponent(&mockComponent{name: "transcriber"})
	_ = app.RegisterComponent(&mockComponent{
		name:   "sse",
		health: component.Health{Status: component.StatusDegraded, Message: "no clients"},
	})
	if err := app.Run(canceled()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"whisperbot 1.0.0 started",
		"├── transcriber [worker]: queue=5",
		"└── sse [worker]: queue=5",
		"sse: degraded (no clients)",
		"Some components have issues (1/2 healthy)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}

func TestSummaryEmpty(t *testing.T) {
	var out bytes.Buffer
	s := NewSummary("whisperbot", "dev")
	s.SetOutput(&out)
	s.Display(context.Background(), nil)
	if !strings.Contains(out.String(), "No components registered") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestHealthStatusIcon(t *testing.T) {
	tests := []struct {
		status component.HealthStatus
		want   string
	}{
		{component.StatusHealthy, "✅"},
		{component.StatusDegraded, "⚠️"},
		{component.StatusUnhealthy, "❌"},
		{"unknown", "❓"},
	}
	for _, tt := range tests {
		if got := healthStatusIcon(tt.status); got != tt.want {
			t.Errorf("healthStatusIcon(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
