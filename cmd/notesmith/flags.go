package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func validateGenerateOptions(opts generateOptions) error {
	if err := validateFilePath("config", opts.ConfigPath); err != nil {
		return err
	}
	if err := validateFilePath("notes", opts.NotesPath); err != nil {
		return err
	}
	if opts.TargetField != "" && opts.NoteID == 0 {
		return fmt.Errorf("--field requires --note")
	}
	return nil
}

func validateFilePath(label, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%s file is required", label)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s path: %w", label, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%s file does not exist: %w", label, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s path %s is a directory", label, abs)
	}

	return nil
}
