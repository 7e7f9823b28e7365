package httpapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/kbukum/whisperbot/transcriber"
)

const spoolSuffix = ".upload"

// Spool keeps uploaded attachments on disk under a random name until the
// job that owns them downloads them. It implements transcriber.Downloader.
type Spool struct {
	dir string
}

var _ transcriber.Downloader = (*Spool)(nil)

// NewSpool creates dir if needed.
func NewSpool(dir string) (*Spool, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("spool: %w", err)
	}
	return &Spool{dir: dir}, nil
}

// Save stores r and returns its reference.
func (s *Spool) Save(r io.Reader) (string, error) {
	ref := uuid.NewString()
	f, err := os.OpenFile(s.path(ref), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("spool: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("spool: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("spool: %w", err)
	}
	return ref, nil
}

// Download moves the spooled file for req to path.
func (s *Spool) Download(ctx context.Context, req transcriber.Request, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := s.resolve(req.FileRef)
	if err != nil {
		return err
	}
	if err := os.Rename(src, path); err == nil {
		return nil
	}
	// Different filesystems: copy, then drop the spooled copy.
	if err := copyFile(src, path); err != nil {
		return err
	}
	return os.Remove(src)
}

// Discard removes a spooled file. Missing files are not an error.
func (s *Spool) Discard(ref string) error {
	src, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(src); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Len returns the number of spooled files.
func (s *Spool) Len() int {
	matches, _ := filepath.Glob(filepath.Join(s.dir, "*"+spoolSuffix))
	return len(matches)
}

func (s *Spool) resolve(ref string) (string, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("spool: invalid reference %q", ref)
	}
	return s.path(id.String()), nil
}

func (s *Spool) path(ref string) string {
	return filepath.Join(s.dir, ref+spoolSuffix)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
