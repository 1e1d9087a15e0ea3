// Package filelock serializes writers of shared metadata files (memoized
// sample sheets, staging manifests) across processes and makes each write
// atomic, so concurrent pipeline jobs reading a flowcell never see a
// half-written sheet.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockSuffix is appended to a target path to name its lock file
const LockSuffix = ".lock"

// FileLock wraps a flock lock file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock backed by the file at path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock blocks until the exclusive lock is held.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// WithLock runs fn while holding the lock for target (target + LockSuffix).
// The lock file is removed before the lock is released, so no lock files
// are left next to the data. Writers that still race past a removed lock
// file go through AtomicWrite and only ever replace whole files.
func WithLock(target string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}
	lock := NewFileLock(target + LockSuffix)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()
	defer os.Remove(lock.path)

	return fn()
}

// AtomicWrite writes data to path through a temp file in the same directory
// followed by a rename, so readers see either the old or the new content.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	committed := false
	defer func() {
		if !committed {
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

	committed = true
	return nil
}

// LockAndWrite atomically writes data to path while holding its lock.
func LockAndWrite(path string, data []byte) error {
	return WithLock(path, func() error {
		return AtomicWrite(path, data)
	})
}

// WriteIfAbsent writes data to path under its lock unless the file already
// exists. It reports whether it wrote.
func WriteIfAbsent(path string, data []byte) (bool, error) {
	wrote := false
	err := WithLock(path, func() error {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		if err := AtomicWrite(path, data); err != nil {
			return err
		}
		wrote = true
		return nil
	})
	return wrote, err
}
