// Package filelock coordinates report file writes across processes. Sharded
// CI runs may point several runner processes at the same report path; a
// flock plus an atomic rename keeps readers from ever seeing a torn file.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// PathLock is an advisory, cross-process lock guarding one file path.
type PathLock struct {
	flock *flock.Flock
	path  string
}

// New creates a lock for the given path. The lock file itself is created at
// that path.
func New(path string) *PathLock {
	return &PathLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock acquires the lock, blocking until it is available.
func (l *PathLock) Lock() error {
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	return nil
}

// TryLock attempts to acquire the lock without blocking. Returns false when
// another process holds it.
func (l *PathLock) TryLock() (bool, error) {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (l *PathLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}

// WriteAtomic writes data via a temp file in the target's directory followed
// by a rename, so the target either keeps its old content or has all of the
// new content. The parent directory is created when missing.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// The temp file must live on the same filesystem for rename to be
	// atomic.
	tempFile, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}

// LockedWrite holds the path's lock for the duration of an atomic write.
// The lock file is the target path with a ".lock" suffix.
func LockedWrite(path string, data []byte) error {
	lock := New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	return WriteAtomic(path, data)
}
