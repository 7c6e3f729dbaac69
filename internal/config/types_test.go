package config

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFieldExtrasDefaults(t *testing.T) {
	t.Parallel()

	t.Run("empty extras default to automatic chat", func(t *testing.T) {
		t.Parallel()

		var extras FieldExtras
		require.NoError(t, yaml.Unmarshal([]byte(`{}`), &extras))
		require.Equal(t, "chat", extras.Type)
		require.True(t, extras.Automatic)
		require.False(t, extras.UseCustomModel)
	})

	t.Run("explicit automatic false survives decoding", func(t *testing.T) {
		t.Parallel()

		var extras FieldExtras
		require.NoError(t, yaml.Unmarshal([]byte("automatic: false\ntype: tts\n"), &extras))
		require.Equal(t, "tts", extras.Type)
		require.False(t, extras.Automatic)
	})

	t.Run("custom model overrides decode", func(t *testing.T) {
		t.Parallel()

		doc := `
type: chat
use_custom_model: true
chat_provider: anthropic
chat_model: claude-3-5-sonnet
chat_temperature: 0.5
`
		var extras FieldExtras
		require.NoError(t, yaml.Unmarshal([]byte(doc), &extras))
		require.True(t, extras.UseCustomModel)
		require.Equal(t, "anthropic", extras.ChatProvider)
		require.Equal(t, "claude-3-5-sonnet", extras.ChatModel)
		require.NotNil(t, extras.ChatTemperature)
		require.Equal(t, 0.5, *extras.ChatTemperature)
	})
}

func TestDefaultExtras(t *testing.T) {
	t.Parallel()

	extras := DefaultExtras()
	require.Equal(t, "chat", extras.Type)
	require.True(t, extras.Automatic)
}

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	require.Equal(t, "openai", s.ChatProvider)
	require.Equal(t, "openai", s.TTSProvider)
	require.Equal(t, "alloy", s.TTSVoice)
	require.Equal(t, "tts-1", s.TTSModel)
	require.Equal(t, "gpt-image-1", s.ImageModel)
	require.True(t, s.TTSStripHTML)
	require.True(t, s.GenerateAtReview)
	require.False(t, s.AllowEmptyFields)
}
