package httpapi

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/whisperbot/transcriber"
)

func TestSpoolSaveAndDownload(t *testing.T) {
	s, err := NewSpool(filepath.Join(t.TempDir(), "spool"))
	if err != nil {
		t.Fatalf("new spool: %v", err)
	}

	ref, err := s.Save(strings.NewReader("OggS payload"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 spooled file, got %d", s.Len())
	}

	dst := filepath.Join(t.TempDir(), "job.in")
	if err := s.Download(context.Background(), transcriber.Request{FileRef: ref}, dst); err != nil {
		t.Fatalf("download: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "OggS payload" {
		t.Errorf("unexpected content %q", data)
	}
	if s.Len() != 0 {
		t.Errorf("download should consume the spooled file, %d left", s.Len())
	}
	if err := s.Discard(ref); err != nil {
		t.Errorf("discarding a consumed ref should succeed: %v", err)
	}
}

func TestSpoolRejectsForeignRefs(t *testing.T) {
	s, err := NewSpool(t.TempDir())
	if err != nil {
		t.Fatalf("new spool: %v", err)
	}
	for _, ref := range []string{"", "../etc/passwd", "not-a-uuid"} {
		err := s.Download(context.Background(), transcriber.Request{FileRef: ref}, filepath.Join(t.TempDir(), "x"))
		if err == nil {
			t.Errorf("ref %q: expected error", ref)
		}
	}
}

func TestSpoolDownloadCanceled(t *testing.T) {
	s, err := NewSpool(t.TempDir())
	if err != nil {
		t.Fatalf("new spool: %v", err)
	}
	ref, err := s.Save(strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Download(ctx, transcriber.Request{FileRef: ref}, filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("expected canceled download to fail")
	}
	if s.Len() != 1 {
		t.Errorf("canceled download must leave the file, got %d", s.Len())
	}
}
