// Package media persists generated audio and images and renders the
// field markup that references them.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Store persists a media payload under a name and returns the filename
// the field markup should reference.
type Store interface {
	Save(name string, data []byte) (string, error)
}

// FS stores media files under a single directory.
type FS struct {
	root string
}

// NewFS creates a store rooted at dir, creating it when missing.
func NewFS(dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("media: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("media: create root: %w", err)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute media directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves name against the root and rejects anything that
// escapes it.
func (f *FS) safePath(name string) (string, error) {
	cleaned := filepath.Clean(name)
	if cleaned == "" || cleaned == "." || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("media: invalid file name: %s", name)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("media: resolve path: %w", err)
	}
	if abs != f.root && !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("media: path escapes media dir: %s", name)
	}
	return abs, nil
}

// Save writes data atomically: temp file, fsync, rename.
func (f *FS) Save(name string, data []byte) (string, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(f.root, ".notesmith-tmp-*")
	if err != nil {
		return "", fmt.Errorf("media: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("media: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("media: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("media: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return "", fmt.Errorf("media: rename: %w", err)
	}
	success = true
	return filepath.Base(abs), nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename builds the canonical media name for a generated field:
// noteType-field-noteID.ext, with unsafe characters collapsed to dashes.
func Filename(noteType, field string, noteID int64, ext string) string {
	base := fmt.Sprintf("%s-%s-%d", sanitize(noteType), sanitize(field), noteID)
	return base + "." + strings.TrimPrefix(ext, ".")
}

func sanitize(s string) string {
	cleaned := unsafeNameChars.ReplaceAllString(s, "-")
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		return "x"
	}
	return cleaned
}

// SoundTag renders the audio reference the host app plays back.
func SoundTag(filename string) string {
	return "[sound:" + filename + "]"
}

// ImageTag renders the inline image reference.
func ImageTag(filename string) string {
	return fmt.Sprintf("<img src=%q />", filename)
}
