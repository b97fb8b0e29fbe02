// Package watch re-runs the filter pipeline whenever the chain spec or the
// input file changes. It debounces rapid file events and traps SIGINT and
// SIGTERM for graceful shutdown.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc is called each time the watcher triggers a pipeline re-run.
// It returns the run result for the status line.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult holds the outcome of a single pipeline execution.
type RunResult struct {
	// FilterCount is the number of filters the chain ran.
	FilterCount int

	// Bytes is the size of the filtered output.
	Bytes int

	// OutputPath is the file the output was written to; empty for stdout.
	OutputPath string
}

// Options configures the watch behaviour.
type Options struct {
	// Files are the files whose changes trigger a re-run (the chain spec
	// and the input file).
	Files []string

	// Debounce is the quiet period before triggering a re-run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run starts the file watcher and blocks until the context is cancelled or a
// SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch each file's parent directory: editors typically replace files
	// on save, which drops a watch registered on the file itself.
	watched := make(map[string]struct{}, len(opts.Files))

	for _, f := range opts.Files {
		abs, absErr := filepath.Abs(f)
		if absErr != nil {
			return fmt.Errorf("resolving file %q: %w", f, absErr)
		}

		watched[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %q: %w", dir, err)
		}
	}

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n",
		strings.Join(opts.Files, ", "), opts.Debounce)

	// Initial run.
	doRun(sigCtx, opts, runFn, "(initial)")

	debouncer := NewDebouncer(opts.Debounce, func(path string) {
		doRun(sigCtx, opts, runFn, path)
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, watched) {
				continue
			}

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// doRun executes a single pipeline run and prints the status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	dest := result.OutputPath
	if dest == "" {
		dest = "stdout"
	}

	fmt.Fprintf(opts.Out, "[%s] %s → OK (%d filters, %d bytes → %s)\n",
		now, trigger, result.FilterCount, result.Bytes, dest)
}

// isRelevant reports whether the event concerns one of the watched files.
func isRelevant(event fsnotify.Event, watched map[string]struct{}) bool {
	if event.Op == 0 {
		return false
	}

	// Only care about write, create, remove, rename.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	_, ok := watched[abs]

	return ok
}
