package dirwatch

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

// Config captures one dirwatch run as assembled by the command line.
type Config struct {
	// Directory is the root of the watched tree
	Directory string
	// Include and Exclude are the filter pattern sets; empty means defaults
	Include []string
	Exclude []string
	// Watch enables the terminal reset before each run plus exit reporting
	Watch bool
	// Kill enables terminating an in-flight run when further changes arrive
	Kill bool
	// Command is the managed command and its arguments
	Command []string
}

// wakeup is a level-triggered, single-slot notification channel. Posting
// while a previous post is still unconsumed has no additional effect, which
// is what collapses bursts of notifications into one re-evaluation.
type wakeup chan struct{}

func newWakeup() wakeup {
	return make(wakeup, 1)
}

// post never blocks.
func (w wakeup) post() {
	select {
	case w <- struct{}{}:
	default:
	}
}

// Driver wires the watcher, the exit bridge, and the supervisor together
// and runs the main loop. Every supervisor call happens on the goroutine
// that runs Run; the watcher and the exit bridge only post wake-ups.
type Driver struct {
	watcher *Watcher
	super   *Supervisor
	logger  *slog.Logger

	changes wakeup
	exits   wakeup
}

// NewDriver validates cfg and assembles a ready-to-run Driver. Validation
// failures (no command, unknown binary, bad pattern, bad directory) are
// configuration errors and reported before any watching begins.
func NewDriver(cfg Config, logger *slog.Logger) (*Driver, error) {
	if len(cfg.Command) == 0 {
		return nil, ErrNoCommand
	}
	if logger == nil {
		logger = slog.Default()
	}

	filter, err := NewFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	if _, err := exec.LookPath(cfg.Command[0]); err != nil {
		return nil, fmt.Errorf("resolving command: %w", err)
	}

	d := &Driver{
		logger:  logger,
		changes: newWakeup(),
		exits:   newWakeup(),
	}

	runner := NewExecRunner(cfg.Command, d.exits.post)
	d.super = NewSupervisor(runner,
		WithWatchMode(cfg.Watch),
		WithKillMode(cfg.Kill),
		WithLogger(logger),
	)

	d.watcher, err = NewWatcher(cfg.Directory, filter, d.changes.post, logger)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Run starts the watcher, runs the command once, and then re-runs it on
// relevant changes until ctx is canceled. After a cancellation it terminates
// any running command, waits for it to exit, and returns ErrInterrupted.
func (d *Driver) Run(ctx context.Context) error {
	cleanup, err := d.watcher.Start(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	d.logger.Info("watching directory", "dir", d.watcher.Root, "command", d.super.Runner.Name())

	// The initial run happens even if nothing ever changes.
	d.super.HandleModification()

	for {
		select {
		case <-ctx.Done():
			d.super.HandleShutdown()
			return ErrInterrupted
		case <-d.changes:
			d.super.HandleModification()
		case <-d.exits:
			d.super.HandleChildExit()
		}
	}
}
