package dirwatch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// CleanupFunc stops a running watch and releases its resources.
type CleanupFunc func() error

// Watcher translates raw filesystem notifications for a directory tree into
// filter decisions and coalesced change signals. The backend reports watched
// directories individually, so the Watcher registers the whole tree at start
// and keeps the watch set current as directories appear.
type Watcher struct {
	// Root is the directory watched recursively, absolute after NewWatcher
	Root string
	// Filter decides which events are relevant
	Filter *Filter
	// Notify is the coalescing callback invoked once per relevant event
	Notify func()
	// Logger receives per-event debug entries
	Logger *slog.Logger
}

// NewWatcher validates the target directory and returns a Watcher that
// reports relevant changes through notify.
func NewWatcher(root string, filter *Filter, notify func(), logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving watch directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("checking watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dirwatch: not a directory: %s", root)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{Root: abs, Filter: filter, Notify: notify, Logger: logger}, nil
}

// Start registers the tree with the notification backend and launches the
// event loop on its own goroutine. The returned cleanup stops the loop and
// closes the backend watcher.
func (w *Watcher) Start(ctx context.Context) (CleanupFunc, error) {
	backend, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting notification backend: %w", err)
	}
	if err := watchTree(backend, w.Root); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("watching %s: %w", w.Root, err)
	}

	sctx := stopper.WithContext(ctx)

	sctx.Defer(func() {
		_ = backend.Close()
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}

	sctx.Go(func(sctx *stopper.Context) error {
		for {
			select {
			case <-sctx.Stopping():
				return nil

			case raw, ok := <-backend.Events:
				if !ok {
					return nil
				}
				w.handleRaw(backend, raw)

			case err, ok := <-backend.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					w.Logger.Error("notification backend error", "err", err)
				}
			}
		}
	})

	return cleanup, nil
}

// handleRaw translates one backend notification, keeps the recursive watch
// set current, and posts a change signal when the event passes the filter.
func (w *Watcher) handleRaw(backend *fsnotify.Watcher, raw fsnotify.Event) {
	ev, ok := w.translate(raw)
	if !ok {
		return
	}

	// Directories created while watching need watches of their own.
	if ev.Kind == KindCreated {
		if info, err := os.Stat(raw.Name); err == nil && info.IsDir() {
			if err := watchTree(backend, raw.Name); err != nil {
				w.Logger.Error("watching new directory failed", "path", ev.Path, "err", err)
			}
		}
	}

	matched := w.Filter.Match(ev)
	w.Logger.Debug("filesystem event", "kind", ev.Kind, "path", ev.Path, "matched", matched)
	if matched {
		w.Notify()
	}
}

// translate maps a raw backend event onto the Event model. Chmod-only
// notifications are dropped; a write on a directory itself carries no file
// path and becomes KindDirectoryBatch.
func (w *Watcher) translate(raw fsnotify.Event) (Event, bool) {
	rel, err := filepath.Rel(w.Root, raw.Name)
	if err != nil {
		return Event{}, false
	}

	switch {
	case raw.Op&fsnotify.Create != 0:
		return Event{Kind: KindCreated, Path: rel}, true
	case raw.Op&fsnotify.Write != 0:
		if info, err := os.Stat(raw.Name); err == nil && info.IsDir() {
			return Event{Kind: KindDirectoryBatch, Path: rel}, true
		}
		return Event{Kind: KindModified, Path: rel}, true
	case raw.Op&fsnotify.Remove != 0:
		return Event{Kind: KindDeleted, Path: rel}, true
	case raw.Op&fsnotify.Rename != 0:
		return Event{Kind: KindRenamed, Path: rel}, true
	default:
		return Event{}, false
	}
}

// watchTree adds root and every directory below it to the backend watcher.
func watchTree(backend *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return backend.Add(path)
		}
		return nil
	})
}
