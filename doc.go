// Package dirwatch runs a command whenever files in a directory tree change.
//
// The package watches a directory recursively, filters reported paths against
// include/exclude glob patterns, and keeps at most one invocation of the
// managed command alive at a time:
//
//	drv, err := dirwatch.NewDriver(dirwatch.Config{
//	    Directory: ".",
//	    Include:   []string{"*.go"},
//	    Command:   []string{"go", "test", "./..."},
//	}, slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	err = drv.Run(ctx)
//
// The command runs once at startup and again after every relevant change. In
// kill mode an in-flight run is terminated (SIGTERM to its process group) as
// soon as a fresh change arrives, instead of letting changes queue until it
// finishes on its own.
//
// # Concurrency Discipline
//
// All supervision state is owned by the goroutine running Driver.Run. The
// filesystem watcher and the per-invocation exit bridge run on their own
// goroutines but never touch that state; they post to level-triggered,
// single-slot wake-up channels that the driver consumes. This serializes
// every Supervisor operation without locks.
//
// # Coalescing
//
// A burst of filesystem changes arriving while the command runs collapses
// into a single pending flag, so a run is followed by at most one restart no
// matter how many changes piled up. With kill mode off and a long-running
// command, a change made minutes ago and a change made just now are
// indistinguishable: both are one pending restart that starts when the
// current run exits. That is deliberate debouncing, not lost notifications;
// the restarted run sees the newest state of every file.
package dirwatch
