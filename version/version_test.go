package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() {
		Version, GitCommit, BuildTime = v, c, b
	}
}

func TestGetDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
}

func TestGetLinkerValues(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"
	GitCommit = "abc1234def"
	BuildTime = "2026-01-15T10:30:00Z"

	info := Get()
	if !info.IsRelease {
		t.Error("1.2.0 should be a release")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected commit truncated to 7 chars, got %q", info.GitCommit)
	}
	if info.BuildTime != BuildTime {
		t.Errorf("expected linker build time, got %q", info.BuildTime)
	}
}

func TestShortAndString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.want {
			t.Errorf("Short() = %q, want %q", got, tc.want)
		}
	}

	s := Info{Version: "1.0.0", GoVersion: "go1.26", BuildTime: "2026-01-15"}.String()
	if !strings.HasPrefix(s, "whisperbot 1.0.0") || !strings.Contains(s, "built 2026-01-15") {
		t.Errorf("unexpected String() %q", s)
	}
}
