package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// AlreadyRunningError reports a live process holding the PID file
type AlreadyRunningError struct {
	Path string
	PID  int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("another instance is already running (PID %d, %s)", e.PID, e.Path)
}

// PIDFile enforces a single runner per host
type PIDFile struct {
	path string
}

// New creates a new PIDFile manager
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current PID, replacing a stale file left by a dead process.
// The file is created with O_EXCL so two starting runners cannot both win.
func (p *PIDFile) Acquire() error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil {
				return fmt.Errorf("failed to write PID file: %w", werr)
			}
			return cerr
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create PID file: %w", err)
		}

		pid, rerr := p.Owner()
		if rerr == nil && pid != os.Getpid() && isProcessRunning(pid) {
			return &AlreadyRunningError{Path: p.path, PID: pid}
		}
		// Stale or unreadable: remove and retry once
		if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale PID file: %w", err)
		}
	}
	return fmt.Errorf("failed to acquire PID file %s", p.path)
}

// Owner returns the PID recorded in the file
func (p *PIDFile) Owner() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file %s: %w", p.path, err)
	}
	return pid, nil
}

// Release removes the PID file
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// isProcessRunning sends signal 0, which checks existence without delivering anything
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		return true
	default:
		return false
	}
}
