//go:build linux || darwin

package dirwatch

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// ExecRunner starts the managed command as a real child process with the
// parent's standard streams attached. Each invocation runs in its own
// process group so that signals reach the command's own children too.
type ExecRunner struct {
	// Args is the command and its arguments
	Args []string

	// OnExit, when non-nil, is invoked from the wait goroutine each time an
	// invocation finishes. It must not block.
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

// Start launches one invocation. A goroutine reaps the child when it exits
// and reports the exit through OnExit.
func (r *ExecRunner) Start() (Process, error) {
	if len(r.Args) == 0 {
		return nil, ErrNoCommand
	}

	cmd := exec.Command(r.Args[0], r.Args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		p.status = waitStatus(err)
		close(p.done)
		if r.OnExit != nil {
			r.OnExit()
		}
	}()
	return p, nil
}

// execProcess is the live handle for one invocation. status is written by
// the wait goroutine before done is closed and read only after.
type execProcess struct {
	cmd    *exec.Cmd
	done   chan struct{}
	status ExitStatus
}

// Terminate signals the invocation's whole process group. ESRCH and EPERM
// mean the group is already gone and are treated as success.
func (p *execProcess) Terminate() error {
	err := unix.Kill(-p.cmd.Process.Pid, unix.SIGTERM)
	if err == nil || errors.Is(err, unix.ESRCH) || errors.Is(err, unix.EPERM) {
		return nil
	}
	return err
}

// TryWait performs a non-blocking exit check.
func (p *execProcess) TryWait() (ExitStatus, bool) {
	select {
	case <-p.done:
		return p.status, true
	default:
		return ExitStatus{}, false
	}
}

// Wait blocks until the invocation has exited.
func (p *execProcess) Wait() ExitStatus {
	<-p.done
	return p.status
}
