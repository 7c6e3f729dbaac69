package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	noteerrors "github.com/notesmith/notesmith/pkg/errors"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	validYAML := `version: "1.0"
name: "French vocab"
settings:
  chat_model: gpt-4o
  parallel: 2
note_types:
  Basic:
    decks:
      "0":
        fields:
          Back: "Define {{Front}} in one sentence"
          Audio: "{{Back}}"
        extras:
          Audio:
            type: tts
            automatic: false
`

	invalidYAML := `version: [1, 0]
name: "Broken"
note_types:
  Basic: {}
`

	badVersion := `version: "beta"
note_types:
  Basic:
    decks:
      "0":
        fields:
          Back: "{{Front}}"
`

	badDeckKey := `version: "1.0"
note_types:
  Basic:
    decks:
      french:
        fields:
          Back: "{{Front}}"
`

	cases := []struct {
		name      string
		contents  string
		wantError error
		assert    func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:     "valid configuration is parsed",
			contents: validYAML,
			assert: func(t *testing.T, cfg *Config, err error) {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				require.Equal(t, "French vocab", cfg.Name)
				require.Equal(t, "gpt-4o", cfg.Settings.ChatModel)
				require.Equal(t, 2, cfg.Settings.Parallel)

				deck := cfg.NoteTypes["Basic"].Decks["0"]
				require.NotNil(t, deck)
				require.Len(t, deck.Fields, 2)
				require.Equal(t, "tts", deck.Extras["Audio"].Type)
				require.False(t, deck.Extras["Audio"].Automatic)
			},
		},
		{
			name:      "invalid yaml returns parse error",
			contents:  invalidYAML,
			wantError: &noteerrors.ParseError{},
			assert: func(t *testing.T, cfg *Config, err error) {
				require.Error(t, err)
				var parseErr *noteerrors.ParseError
				require.ErrorAs(t, err, &parseErr)
				require.Contains(t, parseErr.Message, "cannot unmarshal")
			},
		},
		{
			name:      "schema version must follow major.minor",
			contents:  badVersion,
			wantError: &noteerrors.ValidationError{},
			assert: func(t *testing.T, cfg *Config, err error) {
				require.Error(t, err)
				var validationErr *noteerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Contains(t, validationErr.Message, "version")
			},
		},
		{
			name:      "deck keys must be numeric",
			contents:  badDeckKey,
			wantError: &noteerrors.ValidationError{},
			assert: func(t *testing.T, cfg *Config, err error) {
				require.Error(t, err)
				var validationErr *noteerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Contains(t, validationErr.Message, "deck_id")
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeTempConfig(t, tc.contents)
			cfg, err := ParseConfig(path)
			if tc.wantError == nil {
				tc.assert(t, cfg, err)
				return
			}

			tc.assert(t, cfg, err)
			require.Error(t, err)
		})
	}
}

func TestParseConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	var parseErr *noteerrors.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseConfigDefaultsSettingsWhenAbsent(t *testing.T) {
	t.Parallel()

	contents := `version: "1.0"
note_types:
  Basic:
    decks:
      "0":
        fields:
          Back: "{{Front}}"
`

	cfg, err := ParseConfig(writeTempConfig(t, contents))
	require.NoError(t, err)
	require.Equal(t, "openai", cfg.Settings.ChatProvider)
	require.Equal(t, "gpt-4o-mini", cfg.Settings.ChatModel)
	require.Equal(t, float64(1), cfg.Settings.ChatTemperature)
	require.True(t, cfg.Settings.TTSStripHTML)
	require.True(t, cfg.Settings.GenerateAtReview)
	require.Equal(t, 4, cfg.Settings.Parallel)
	require.Equal(t, 50, cfg.Settings.BatchLimit)
	require.Equal(t, "media", cfg.Settings.MediaDir)
}

func TestParseConfigPreservesExplicitZeroTemperature(t *testing.T) {
	t.Parallel()

	contents := `version: "1.0"
settings:
  chat_temperature: 0
  tts_strip_html: false
note_types:
  Basic:
    decks:
      "0":
        fields:
          Back: "{{Front}}"
`

	cfg, err := ParseConfig(writeTempConfig(t, contents))
	require.NoError(t, err)
	require.Equal(t, float64(0), cfg.Settings.ChatTemperature)
	require.False(t, cfg.Settings.TTSStripHTML)
	require.True(t, cfg.Settings.GenerateAtReview)
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}
