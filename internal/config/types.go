package config

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalDeckID is the deck key whose prompts apply to every deck of a note
// type. Per-deck entries override it field by field.
const GlobalDeckID int64 = 0

// Config is the full smart-fields configuration document.
type Config struct {
	Version   string                     `yaml:"version" validate:"required,semver"`
	Name      string                     `yaml:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Settings  Settings                   `yaml:"settings,omitempty"`
	NoteTypes map[string]*NoteTypeConfig `yaml:"note_types,omitempty" validate:"omitempty,dive"`
}

// Settings holds global generation parameters. Any field left empty in the
// document falls back to its default.
type Settings struct {
	ChatProvider    string  `yaml:"chat_provider,omitempty" validate:"omitempty,oneof=openai anthropic"`
	ChatModel       string  `yaml:"chat_model,omitempty"`
	ChatTemperature float64 `yaml:"chat_temperature,omitempty" validate:"omitempty,min=0,max=2"`

	TTSProvider  string `yaml:"tts_provider,omitempty" validate:"omitempty,oneof=openai elevenlabs"`
	TTSModel     string `yaml:"tts_model,omitempty"`
	TTSVoice     string `yaml:"tts_voice,omitempty"`
	TTSStripHTML bool   `yaml:"tts_strip_html,omitempty"`

	ImageProvider string `yaml:"image_provider,omitempty" validate:"omitempty,oneof=openai"`
	ImageModel    string `yaml:"image_model,omitempty"`

	AllowEmptyFields            bool `yaml:"allow_empty_fields,omitempty"`
	GenerateAtReview            bool `yaml:"generate_at_review,omitempty"`
	RegenerateNotesWhenBatching bool `yaml:"regenerate_notes_when_batching,omitempty"`

	Parallel   int    `yaml:"parallel,omitempty" validate:"omitempty,min=1,max=32"`
	BatchLimit int    `yaml:"batch_limit,omitempty" validate:"omitempty,min=1,max=500"`
	MediaDir   string `yaml:"media_dir,omitempty"`

	OpenAIEndpoint string `yaml:"openai_endpoint,omitempty" validate:"omitempty,url"`

	loaded bool
}

// DefaultSettings returns the settings used when the document has no
// settings block.
func DefaultSettings() Settings {
	s := Settings{}
	s.fillZero()
	s.ChatTemperature = 1
	s.TTSStripHTML = true
	s.GenerateAtReview = true
	return s
}

// UnmarshalYAML decodes settings and applies defaults for omitted keys.
// Values whose default is not the zero value need key-presence checks,
// since a decoded zero is indistinguishable from an absent key.
func (s *Settings) UnmarshalYAML(value *yaml.Node) error {
	type rawSettings Settings
	var temp rawSettings
	if err := value.Decode(&temp); err != nil {
		return err
	}
	*s = Settings(temp)
	s.loaded = true

	if !hasYAMLKey(value, "chat_temperature") {
		s.ChatTemperature = 1
	}
	if !hasYAMLKey(value, "tts_strip_html") {
		s.TTSStripHTML = true
	}
	if !hasYAMLKey(value, "generate_at_review") {
		s.GenerateAtReview = true
	}
	s.fillZero()
	return nil
}

func (s *Settings) fillZero() {
	if s.ChatProvider == "" {
		s.ChatProvider = "openai"
	}
	if s.ChatModel == "" {
		s.ChatModel = "gpt-4o-mini"
	}
	if s.TTSProvider == "" {
		s.TTSProvider = "openai"
	}
	if s.TTSModel == "" {
		s.TTSModel = "tts-1"
	}
	if s.TTSVoice == "" {
		s.TTSVoice = "alloy"
	}
	if s.ImageProvider == "" {
		s.ImageProvider = "openai"
	}
	if s.ImageModel == "" {
		s.ImageModel = "gpt-image-1"
	}
	if s.Parallel == 0 {
		s.Parallel = 4
	}
	if s.BatchLimit == 0 {
		s.BatchLimit = 50
	}
	if s.MediaDir == "" {
		s.MediaDir = "media"
	}
}

// NoteTypeConfig groups a note type's smart fields by deck.
type NoteTypeConfig struct {
	Decks map[string]*DeckConfig `yaml:"decks" validate:"required,min=1,dive,keys,deck_id,endkeys"`
}

// DeckConfig holds the prompt templates and per-field metadata for one deck
// of a note type. Deck "0" applies to all decks.
type DeckConfig struct {
	Fields map[string]string       `yaml:"fields" validate:"required,min=1"`
	Extras map[string]*FieldExtras `yaml:"extras,omitempty" validate:"omitempty,dive"`
}

// FieldExtras carries per-field generation metadata. Provider and model
// overrides apply only when UseCustomModel is set; otherwise the global
// settings win.
type FieldExtras struct {
	Type           string `yaml:"type,omitempty" validate:"omitempty,oneof=chat tts image"`
	Automatic      bool   `yaml:"automatic,omitempty"`
	UseCustomModel bool   `yaml:"use_custom_model,omitempty"`

	ChatProvider    string   `yaml:"chat_provider,omitempty" validate:"omitempty,oneof=openai anthropic"`
	ChatModel       string   `yaml:"chat_model,omitempty"`
	ChatTemperature *float64 `yaml:"chat_temperature,omitempty" validate:"omitempty,min=0,max=2"`

	TTSProvider  string `yaml:"tts_provider,omitempty" validate:"omitempty,oneof=openai elevenlabs"`
	TTSModel     string `yaml:"tts_model,omitempty"`
	TTSVoice     string `yaml:"tts_voice,omitempty"`
	TTSStripHTML *bool  `yaml:"tts_strip_html,omitempty"`

	ImageProvider string `yaml:"image_provider,omitempty" validate:"omitempty,oneof=openai"`
	ImageModel    string `yaml:"image_model,omitempty"`
}

// UnmarshalYAML decodes extras and applies defaults: fields are chat-type
// and automatic unless the document says otherwise.
func (e *FieldExtras) UnmarshalYAML(value *yaml.Node) error {
	type rawExtras FieldExtras
	var temp rawExtras
	if err := value.Decode(&temp); err != nil {
		return err
	}
	*e = FieldExtras(temp)

	if e.Type == "" {
		e.Type = "chat"
	}
	if !hasYAMLKey(value, "automatic") {
		e.Automatic = true
	}
	return nil
}

// DefaultExtras returns the metadata assumed for a field with no extras
// entry: an automatic chat field with no overrides.
func DefaultExtras() *FieldExtras {
	return &FieldExtras{Type: "chat", Automatic: true}
}

func hasYAMLKey(node *yaml.Node, key string) bool {
	if node == nil || node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i < len(node.Content); i += 2 {
		k := node.Content[i]
		if strings.EqualFold(k.Value, key) {
			return true
		}
	}
	return false
}
