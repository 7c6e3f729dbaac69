package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

func TestLoggerInfoWithFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.WithFields(map[string]any{"field": "back", "note_id": int64(42)})
	log.Info("resolving field")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "resolving field", entry["message"])
	require.Equal(t, "back", entry["field"])
	require.Equal(t, float64(42), entry["note_id"])
	require.Equal(t, "info", entry["level"])
}

func TestLoggerDebugRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log.Debug("this should not appear")
	require.Equal(t, "", strings.TrimSpace(buf.String()))
}

func TestLoggerErrorIncludesContext(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.WithFields(map[string]any{"field": "audio"})
	log.Error(errors.New("boom"), "generation failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "generation failed", entry["message"])
	require.Equal(t, "audio", entry["field"])
	require.Equal(t, "boom", entry["error"])
}

func TestNopLoggerDiscards(t *testing.T) {
	t.Parallel()

	log := Nop()
	log.Info("swallowed")
	log.Error(errors.New("swallowed"), "swallowed")

	derived := log.WithFields(map[string]any{"field": "front"})
	derived.Warn("still swallowed")
}
