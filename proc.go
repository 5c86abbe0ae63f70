package dirwatch

import (
	"errors"
	"os/exec"
)

// ExitStatus describes how one invocation of the managed command ended.
type ExitStatus struct {
	// Code is the exit code, or -1 when the command was ended by a signal
	Code int
	// Err is the wait error, nil when the command exited zero
	Err error
}

// Success reports whether the invocation exited with status zero
func (s ExitStatus) Success() bool {
	return s.Code == 0 && s.Err == nil
}

// Runner starts invocations of the managed command. It is an interface so
// the supervision logic can be exercised without spawning real processes.
type Runner interface {
	// Start launches one invocation in its own process group.
	Start() (Process, error)

	// Name returns a human-readable rendering of the command for logs.
	Name() string
}

// Process is the handle to a single running invocation.
type Process interface {
	// Terminate sends SIGTERM to the invocation's process group.
	// Terminating an invocation that has already exited is a no-op.
	Terminate() error

	// TryWait reports, without blocking, whether the invocation has exited,
	// and with what status.
	TryWait() (ExitStatus, bool)

	// Wait blocks until the invocation has exited.
	Wait() ExitStatus
}

// waitStatus converts the error from an exec wait into an ExitStatus.
func waitStatus(err error) ExitStatus {
	if err == nil {
		return ExitStatus{Code: 0}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExitStatus{Code: exitErr.ExitCode(), Err: err}
	}
	return ExitStatus{Code: -1, Err: err}
}
