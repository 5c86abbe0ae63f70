// Command dirwatch watches a directory tree and re-runs a command whenever
// matching files change.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Feuermurmel/dirwatch"
)

func main() {
	err := newRootCommand().Execute()
	switch {
	case err == nil:
	case errors.Is(err, dirwatch.ErrInterrupted):
		fmt.Fprintln(os.Stderr, "dirwatch: operation interrupted")
		os.Exit(dirwatch.ExitInterrupted)
	default:
		fmt.Fprintln(os.Stderr, "dirwatch: error:", err)
		os.Exit(dirwatch.ExitError)
	}
}

func newRootCommand() *cobra.Command {
	var (
		cfg   dirwatch.Config
		debug bool
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "dirwatch [flags] command [argument ...]",
		Short: "Run a command whenever files in a directory tree change",
		Long: `dirwatch watches a directory tree and runs a command whenever matching
files change. Changes arriving while the command is running are coalesced
into at most one follow-up run; with --kill the running command's process
group is sent SIGTERM instead, so the next run can start right away.

The command is run once at startup, even if nothing has changed yet.`,
		Version:       dirwatch.Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = args

			drv, err := dirwatch.NewDriver(cfg, newLogger(debug, quiet))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return drv.Run(ctx)
		},
	}

	flags := cmd.Flags()
	// Everything after the first positional argument belongs to the managed
	// command, not to dirwatch.
	flags.SetInterspersed(false)
	flags.StringVarP(&cfg.Directory, "directory", "d", ".", "directory to watch for changes")
	flags.StringArrayVarP(&cfg.Include, "include", "i", nil, `pattern for paths that trigger a run (repeatable, default "*")`)
	flags.StringArrayVarP(&cfg.Exclude, "exclude", "e", nil, `pattern for paths to ignore (repeatable, default ".*")`)
	flags.BoolVarP(&cfg.Watch, "watch", "w", false, "reset the terminal before each run and report every exit status")
	flags.BoolVarP(&cfg.Kill, "kill", "k", false, "send SIGTERM to a running command when another change arrives")
	flags.BoolVar(&debug, "debug", false, "log every filesystem event and whether it matched the filter")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only log errors")

	return cmd
}

func newLogger(debug, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
