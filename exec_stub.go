//go:build !linux && !darwin

package dirwatch

import "strings"

// ExecRunner starts the managed command. Process-group control is only
// implemented for Linux and macOS; on other platforms Start fails with
// ErrUnsupported.
type ExecRunner struct {
	// Args is the command and its arguments
	Args []string

	// OnExit, when non-nil, is invoked each time an invocation finishes
	OnExit func()
}

// NewExecRunner returns an ExecRunner for the given command. onExit may be
// nil.
func NewExecRunner(args []string, onExit func()) *ExecRunner {
	return &ExecRunner{Args: args, OnExit: onExit}
}

// Name returns the command rendered as a shell-like string
func (r *ExecRunner) Name() string {
	return strings.Join(r.Args, " ")
}

// Start fails with ErrUnsupported on this platform.
func (r *ExecRunner) Start() (Process, error) {
	return nil, ErrUnsupported
}
