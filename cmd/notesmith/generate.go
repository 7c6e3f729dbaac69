package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/engine"
	"github.com/notesmith/notesmith/internal/logger"
	"github.com/notesmith/notesmith/internal/media"
	"github.com/notesmith/notesmith/internal/note"
	"github.com/notesmith/notesmith/internal/prompt"
	"github.com/notesmith/notesmith/internal/resolver"
	"github.com/notesmith/notesmith/internal/tui"
)

type generateOptions struct {
	ConfigPath     string
	NotesPath      string
	MediaDir       string
	NoteID         int64
	TargetField    string
	Overwrite      bool
	DryRun         bool
	Verbose        bool
	NonInteractive bool
}

var generateCmdRunner = runGenerate

func newGenerateCmd(root *rootFlags) *cobra.Command {
	opts := generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill smart fields for every note in a notes file",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))

			if err := validateGenerateOptions(opts); err != nil {
				return err
			}

			return generateCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVarP(&opts.NotesPath, "notes", "n", "", "Path to notes file")
	cmd.Flags().StringVar(&opts.MediaDir, "media", "", "Directory for generated audio and images (default from config)")
	cmd.Flags().Int64Var(&opts.NoteID, "note", 0, "Generate only the note with this ID")
	cmd.Flags().StringVar(&opts.TargetField, "field", "", "Regenerate one field and its dependencies (requires --note)")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "Regenerate fields that already have values")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report what would generate without calling providers or saving")
	cmd.MarkFlagRequired("config") //nolint:errcheck
	cmd.MarkFlagRequired("notes")  //nolint:errcheck

	return cmd
}

func runGenerate(opts generateOptions) error {
	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	all, err := note.LoadFile(opts.NotesPath)
	if err != nil {
		return err
	}

	items := all
	if opts.NoteID != 0 {
		selected, err := selectNote(all, opts.NoteID)
		if err != nil {
			return err
		}
		items = []note.Item{selected}
	}

	interactive := !opts.NonInteractive && opts.TargetField == ""

	var log *logger.Logger
	if interactive {
		// The progress screen owns the terminal; failures surface there.
		log = logger.Nop()
	} else {
		level := "info"
		if opts.Verbose {
			level = "debug"
		}
		log, err = logger.New(logger.Options{Level: level, HumanReadable: true})
		if err != nil {
			return err
		}
	}

	var resolvers *resolver.Registry
	if opts.DryRun {
		resolvers, err = buildDryRunResolvers(cfg)
	} else {
		mediaDir := opts.MediaDir
		if mediaDir == "" {
			mediaDir = cfg.Settings.MediaDir
		}
		store, storeErr := media.NewFS(mediaDir)
		if storeErr != nil {
			return storeErr
		}
		resolvers, err = buildResolvers(cfg, store, log)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduler := engine.NewScheduler(resolvers, log)

	if opts.TargetField != "" {
		return runTargetGenerate(ctx, cfg, scheduler, all, items[0], opts, log)
	}

	runner := engine.NewBatchRunner(cfg, scheduler, log)

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	if interactive {
		program = tea.NewProgram(tui.NewModel(len(items)))
		go func() {
			_, programErr = program.Run()
			close(done)
			// The program quitting early means the user bailed out.
			cancel()
		}()
		runner.OnProgress = func(p engine.BatchProgress) {
			program.Send(tui.ProgressMsg{Done: p.Done, Total: p.Total, Report: p.Report})
		}
	} else {
		runner.OnProgress = func(p engine.BatchProgress) {
			fmt.Fprintln(os.Stdout, tui.RenderNoteLine(p.Done, p.Total, p.NoteID, p.Report))
		}
	}

	report, _, runErr := runner.Run(ctx, items, opts.Overwrite)

	if interactive {
		program.Send(tui.DoneMsg{Report: report})
		<-done
		if programErr != nil {
			return programErr
		}
	} else {
		fmt.Fprintln(os.Stdout, tui.RenderSummary(report))
	}

	// A cancelled run still persists the notes that finished.
	if !opts.DryRun && report.Updated > 0 {
		if err := note.SaveFile(opts.NotesPath, all); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	if report.ExitCode() != 0 {
		return fmt.Errorf("%d of %d notes failed", report.Failed, report.Total())
	}

	return nil
}

// runTargetGenerate regenerates a single field on a single note. The
// target always regenerates; its dependencies keep existing values
// unless --overwrite is set.
func runTargetGenerate(ctx context.Context, cfg *config.Config, scheduler *engine.Scheduler, all []note.Item, item note.Item, opts generateOptions, log *logger.Logger) error {
	chained := prompt.ChainedFields(cfg, item.Note.NoteType(), item.DeckID)
	if slices.Contains(chained, strings.ToLower(opts.TargetField)) {
		log.WithFields(map[string]any{"field": opts.TargetField}).Debug("target depends on other smart fields, resolving dependencies first")
	}

	report, err := scheduler.ProcessNote(ctx, cfg, item.Note, item.DeckID, engine.ProcessOptions{
		Overwrite:   opts.Overwrite,
		TargetField: opts.TargetField,
	})
	if report != nil {
		fmt.Fprintln(os.Stdout, tui.RenderNoteLine(1, 1, item.Note.ID(), report))
	}
	if err != nil {
		return err
	}

	if !opts.DryRun && report.DidUpdate {
		if err := note.SaveFile(opts.NotesPath, all); err != nil {
			return err
		}
	}

	if report.Failed() {
		return fmt.Errorf("note %d failed", item.Note.ID())
	}
	return nil
}

// selectNote narrows the batch to one explicitly requested note.
func selectNote(items []note.Item, id int64) (note.Item, error) {
	for _, item := range items {
		if item.Note.ID() == id {
			return item, nil
		}
	}
	return note.Item{}, fmt.Errorf("note %d not found in notes file", id)
}
