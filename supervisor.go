package dirwatch

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// termReset is the terminal reset sequence (RIS) written before each run in
// watch mode.
const termReset = "\x1bc"

// Supervisor owns the lifecycle of at most one running invocation of the
// managed command. It consumes "something changed" and "the command exited"
// notifications and decides when to start, suppress, kill, or restart.
//
// A Supervisor is not safe for concurrent use. The Driver serializes all
// calls on a single goroutine, which is what keeps the state transitions
// race-free without locks. See Driver.Run.
type Supervisor struct {
	// Runner launches invocations of the managed command
	Runner Runner
	// KillMode terminates an in-flight invocation when further changes arrive
	KillMode bool
	// WatchMode resets the terminal before each invocation and reports the
	// exit status of every invocation, not just failures
	WatchMode bool
	// Console receives the terminal reset sequence in watch mode
	Console io.Writer
	// Logger receives lifecycle log entries
	Logger *slog.Logger

	// proc is the handle of the running invocation, nil when idle
	proc Process
	// pending records that a relevant change arrived and has not yet been
	// consumed by starting a fresh invocation
	pending bool
	// termSent records that the current invocation's process group was
	// already signaled, so kill mode does not signal it again
	termSent bool
}

// SupervisorOption configures a Supervisor
type SupervisorOption func(*Supervisor)

// WithKillMode enables terminating an in-flight invocation when further
// changes arrive
func WithKillMode(enabled bool) SupervisorOption {
	return func(s *Supervisor) {
		s.KillMode = enabled
	}
}

// WithWatchMode enables the terminal reset before each invocation and the
// reporting of every exit status
func WithWatchMode(enabled bool) SupervisorOption {
	return func(s *Supervisor) {
		s.WatchMode = enabled
	}
}

// WithConsole sets the writer that receives the terminal reset sequence
func WithConsole(w io.Writer) SupervisorOption {
	return func(s *Supervisor) {
		if w != nil {
			s.Console = w
		}
	}
}

// WithLogger sets the logger used for lifecycle reporting
func WithLogger(logger *slog.Logger) SupervisorOption {
	return func(s *Supervisor) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// NewSupervisor creates a Supervisor with default settings
func NewSupervisor(runner Runner, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		Runner:  runner,
		Console: os.Stdout,
		Logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// HandleModification records that a relevant filesystem change occurred and
// re-evaluates what to do about it.
func (s *Supervisor) HandleModification() {
	s.pending = true
	s.checkPending()
}

// HandleChildExit checks whether the current invocation has exited and, if
// so, reaps it and re-evaluates pending work. The check never blocks: a
// wake-up for an invocation that is still running is a no-op, as is a stale
// wake-up arriving after the handle was already cleared.
func (s *Supervisor) HandleChildExit() {
	if s.proc == nil {
		return
	}
	status, exited := s.proc.TryWait()
	if !exited {
		return
	}

	s.reportExit(status)
	s.proc = nil
	s.termSent = false
	s.checkPending()
}

// HandleShutdown terminates the current invocation, if any, and blocks until
// it has exited. This is the only Supervisor operation that blocks; it runs
// once, at teardown.
func (s *Supervisor) HandleShutdown() {
	if s.proc == nil {
		return
	}

	s.terminate()
	status := s.proc.Wait()
	s.Logger.Debug("command exited", "code", status.Code)
	s.proc = nil
	s.termSent = false
}

// checkPending acts on an unconsumed change. With no invocation running it
// starts a fresh one; with one running and kill mode on it signals the
// process group once; otherwise the change stays recorded until the current
// invocation exits. Bursts of changes therefore collapse into at most one
// restart.
func (s *Supervisor) checkPending() {
	if !s.pending {
		return
	}

	if s.proc == nil {
		s.pending = false
		s.termSent = false
		s.start()
		return
	}

	if s.KillMode && !s.termSent {
		s.termSent = true
		s.terminate()
	}
}

func (s *Supervisor) start() {
	if s.WatchMode {
		_, _ = io.WriteString(s.Console, termReset)
	}
	s.Logger.Debug("starting command", "command", s.Runner.Name())

	proc, err := s.Runner.Start()
	if err != nil {
		s.Logger.Error("starting command failed", "err", err)
		return
	}
	s.proc = proc
}

func (s *Supervisor) terminate() {
	s.Logger.Info("sending SIGTERM to process group")
	if err := s.proc.Terminate(); err != nil {
		s.Logger.Error("terminating command failed", "err", err)
	}
}

// reportExit logs how an invocation ended. Failures are always reported;
// successes are only prominent in watch mode.
func (s *Supervisor) reportExit(status ExitStatus) {
	switch {
	case status.Success():
		level := slog.LevelDebug
		if s.WatchMode {
			level = slog.LevelInfo
		}
		s.Logger.Log(context.Background(), level, "command completed successfully")
	case status.Code >= 0:
		s.Logger.Warn("command failed", "code", status.Code)
	default:
		s.Logger.Warn("command failed", "cause", status.Err)
	}
}
