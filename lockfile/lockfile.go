// Package lockfile enforces single-instance startup via an exclusive
// advisory lock on a well-known path, following the common gofrs/flock
// TryLock-then-write-PID pattern for daemon entrypoints.
package lockfile

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gofrs/flock"
)

// Lock holds an acquired exclusive lock and the PID file written under it.
type Lock struct {
	file *flock.Flock
	path string
}

// Acquire takes a non-blocking exclusive lock on path and writes the
// current process's PID into it. A second startup against the same path
// gets ErrAlreadyRunning and should exit cleanly (exit code 0).
func Acquire(path string) (*Lock, error) {
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lockfile: acquire %s: %w", path, err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		fl.Unlock()
		return nil, fmt.Errorf("lockfile: write pid to %s: %w", path, err)
	}
	return &Lock{file: fl, path: path}, nil
}

// Release unlocks the file and removes it.
func (l *Lock) Release() error {
	err := l.file.Unlock()
	if rmErr := os.Remove(l.path); err == nil {
		err = rmErr
	}
	return err
}

// ErrAlreadyRunning is returned by Acquire when another process already
// holds the lock.
var ErrAlreadyRunning = fmt.Errorf("lockfile: another instance is already running")
