package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/engine"
	"github.com/notesmith/notesmith/internal/note"
)

type checkOptions struct {
	ConfigPath string
	NotesPath  string
	JSON       bool
}

type promptIssue struct {
	NoteID  int64  `json:"note_id"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

var checkCmdRunner = runCheck

func newCheckCmd(root *rootFlags) *cobra.Command {
	opts := checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration, and optionally every note's prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFilePath("config", opts.ConfigPath); err != nil {
				return err
			}
			return checkCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVarP(&opts.NotesPath, "notes", "n", "", "Path to notes file to check prompts against")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output results in JSON format")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func runCheck(opts checkOptions) error {
	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	issues := []promptIssue{}
	if opts.NotesPath != "" {
		items, err := note.LoadFile(opts.NotesPath)
		if err != nil {
			return err
		}
		for _, item := range items {
			for _, issue := range engine.ValidateNotePrompts(cfg, item.Note, item.DeckID) {
				issues = append(issues, promptIssue{
					NoteID:  item.Note.ID(),
					Field:   issue.Field,
					Message: issue.Message,
				})
			}
		}
	}

	if opts.JSON {
		printCheckJSON(opts.ConfigPath, issues)
	} else {
		printCheckText(issues)
	}

	if len(issues) > 0 {
		return fmt.Errorf("%d prompt issues found", len(issues))
	}
	return nil
}

func printCheckText(issues []promptIssue) {
	if len(issues) == 0 {
		fmt.Println("✅ Configuration OK")
		return
	}

	for _, issue := range issues {
		fmt.Printf("✗ note %d %s: %s\n", issue.NoteID, issue.Field, issue.Message)
	}
}

func printCheckJSON(configPath string, issues []promptIssue) {
	out := struct {
		ConfigFile string        `json:"config_file"`
		Valid      bool          `json:"valid"`
		Issues     []promptIssue `json:"issues"`
	}{
		ConfigFile: configPath,
		Valid:      len(issues) == 0,
		Issues:     issues,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(out) //nolint:errcheck
}
