package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned by Acquire when a live process holds the file
var ErrAlreadyRunning = errors.New("planner is already running")

// PIDFile keeps a single planner writing to one registry at a time
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

// Acquire writes the current process ID. A file left behind by a dead
// process or holding garbage is replaced.
func (p *PIDFile) Acquire() error {
	data, err := os.ReadFile(p.path)
	switch {
	case err == nil:
		pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
		if convErr == nil && pid != os.Getpid() && isProcessRunning(pid) {
			return fmt.Errorf("%w (PID %d)", ErrAlreadyRunning, pid)
		}
		_ = os.Remove(p.path)
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to read existing PID file: %w", err)
	}

	if err := os.WriteFile(p.path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Release removes the PID file
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// isProcessRunning checks pid with signal 0
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
		// exists, owned by someone else
		return true
	default:
		return false
	}
}
