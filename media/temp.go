package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

// TempPaths are the two files a job owns. Extensions are fixed; nothing
// from the sender's filename reaches the path.
type TempPaths struct {
	Input  string
	Output string
}

// Remove deletes both files. Files that were never created are ignored.
func (p TempPaths) Remove() error {
	return errors.Join(removeIfExists(p.Input), removeIfExists(p.Output))
}

func removeIfExists(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// TempAllocator hands out collision-free temp paths for the life of the
// process: wb_<pid>_<n> with n from a monotonic counter.
type TempAllocator struct {
	dir  string
	pid  int
	next atomic.Uint64
}

// NewTempAllocator creates an allocator rooted at dir.
func NewTempAllocator(dir string) *TempAllocator {
	return &TempAllocator{dir: dir, pid: os.Getpid()}
}

// Next returns the sequence number and paths for a new job.
func (a *TempAllocator) Next() (uint64, TempPaths) {
	n := a.next.Add(1) - 1
	base := filepath.Join(a.dir, fmt.Sprintf("wb_%d_%d", a.pid, n))
	return n, TempPaths{
		Input:  base + ".audio",
		Output: base + ".wav",
	}
}
