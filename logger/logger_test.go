package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json", Output: "stdout"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestWithComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "whisperbot").
		WithComponent("engine").
		WithFields(Fields(FieldJobID, 7))

	l.Info("engine exited", Fields(FieldModel, "base"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json log line %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != "engine" {
		t.Errorf("expected component=engine, got %v", entry[FieldComponent])
	}
	if entry[FieldJobID] != float64(7) {
		t.Errorf("expected job_id=7, got %v", entry[FieldJobID])
	}
	if entry[FieldModel] != "base" {
		t.Errorf("expected model=base, got %v", entry[FieldModel])
	}
	if entry["message"] != "engine exited" {
		t.Errorf("unexpected message %v", entry["message"])
	}
}

func TestFields_OddArgs(t *testing.T) {
	m := Fields("a", 1, "b")
	if len(m) != 1 || m["a"] != 1 {
		t.Errorf("expected only a=1, got %v", m)
	}
}

func TestMergeHelpers(t *testing.T) {
	m := MergeWithError(nil, fmt.Errorf("boom"))
	if m[FieldError] != "boom" {
		t.Errorf("expected error field, got %v", m)
	}
	m = MergeWithDuration(m, 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Errorf("expected duration 1500, got %v", m[FieldDuration])
	}
}

func TestInitAndGlobal(t *testing.T) {
	Init(&Config{Level: "debug", Format: "json", Output: "stdout"})
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	l := Nop()
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
	// Must not panic.
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"valid console", Config{Level: "debug", Format: "console"}, false},
		{"invalid level", Config{Level: "bad", Format: "json"}, true},
		{"invalid format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
