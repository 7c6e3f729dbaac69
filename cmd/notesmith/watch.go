package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/notesmith/notesmith/internal/logger"
)

type watchOptions struct {
	ConfigPath string
	NotesPath  string
	Verbose    bool
}

const watchDebounce = 300 * time.Millisecond

var watchCmdRunner = runWatch

func newWatchCmd(root *rootFlags) *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate notes whenever the config or notes file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose

			if err := validateFilePath("config", opts.ConfigPath); err != nil {
				return err
			}
			if err := validateFilePath("notes", opts.NotesPath); err != nil {
				return err
			}

			return watchCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVarP(&opts.NotesPath, "notes", "n", "", "Path to notes file")
	cmd.MarkFlagRequired("config") //nolint:errcheck
	cmd.MarkFlagRequired("notes")  //nolint:errcheck

	return cmd
}

func runWatch(opts watchOptions) error {
	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watchFiles(ctx, opts, log)
}

// watchFiles watches the parent directories of the config and notes
// files rather than the files themselves, so editors that save by
// renaming a temp file over the target do not silently kill the watch.
// A pass that updates notes rewrites the notes file, which fires one
// follow-up pass; that pass finds nothing left to do and the loop
// settles.
func watchFiles(ctx context.Context, opts watchOptions, log *logger.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	cfgAbs, err := filepath.Abs(opts.ConfigPath)
	if err != nil {
		return err
	}
	notesAbs, err := filepath.Abs(opts.NotesPath)
	if err != nil {
		return err
	}

	dirs := map[string]struct{}{
		filepath.Dir(cfgAbs):   {},
		filepath.Dir(notesAbs): {},
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	log.WithFields(map[string]any{
		"config": cfgAbs,
		"notes":  notesAbs,
	}).Info("watching for changes")
	regenerate(opts, log)

	// debounce coalesces the event bursts editors emit on save.
	var debounce *time.Timer
	var debounceCh <-chan time.Time
	scheduleRun := func() {
		if debounce == nil {
			debounce = time.NewTimer(watchDebounce)
			debounceCh = debounce.C
		} else {
			debounce.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			log.Info("watcher stopped")
			return nil

		case <-debounceCh:
			regenerate(opts, log)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != cfgAbs && ev.Name != notesAbs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleRun()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error(watchErr, "watcher error")
		}
	}
}

// regenerate validates the configuration and, when it is sound, runs a
// plain generation pass. Failures are logged and the watch continues.
func regenerate(opts watchOptions, log *logger.Logger) {
	if err := runCheck(checkOptions{ConfigPath: opts.ConfigPath, NotesPath: opts.NotesPath}); err != nil {
		log.Error(err, "configuration has problems, skipping generation")
		return
	}

	if err := generateCmdRunner(generateOptions{
		ConfigPath:     opts.ConfigPath,
		NotesPath:      opts.NotesPath,
		Verbose:        opts.Verbose,
		NonInteractive: true,
	}); err != nil {
		log.Error(err, "generation pass failed")
	}
}
