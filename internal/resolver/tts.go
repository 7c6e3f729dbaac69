package resolver

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/logger"
	"github.com/notesmith/notesmith/internal/media"
	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/note"
	"github.com/notesmith/notesmith/internal/prompt"
	"github.com/notesmith/notesmith/internal/provider"
)

// TTS resolves audio fields: interpolate, synthesize, store the audio,
// return the sound tag the host plays back.
type TTS struct {
	cfg       *config.Config
	providers map[string]provider.Speech
	store     media.Store
	gate      Gate
	log       *logger.Logger
}

// NewTTS builds a speech resolver over the given providers, keyed by
// provider name. A nil gate means unlimited capacity.
func NewTTS(cfg *config.Config, providers map[string]provider.Speech, store media.Store, gate Gate, log *logger.Logger) *TTS {
	if gate == nil {
		gate = OpenGate()
	}
	return &TTS{cfg: cfg, providers: providers, store: store, gate: gate, log: log}
}

func (r *TTS) Resolve(ctx context.Context, node *model.FieldNode, n note.Note) (string, error) {
	text, ok := prompt.Interpolate(node.PromptTemplate, note.LowercaseValues(n), r.cfg.Settings.AllowEmptyFields)
	if !ok {
		r.log.WithFields(map[string]any{"field": node.Field}).Debug("prompt not fillable, declining")
		return "", nil
	}

	opts := prompt.TTSOptionsFor(r.cfg, n.NoteType(), node.DisplayField, node.DeckID)
	if opts.StripHTML {
		text = StripHTML(text)
	}
	if strings.TrimSpace(text) == "" {
		r.log.WithFields(map[string]any{"field": node.Field}).Debug("nothing left to speak, declining")
		return "", nil
	}

	if err := r.gate.Allow(ctx, model.FieldTypeTTS); err != nil {
		if isCapacity(err) {
			r.log.WithFields(map[string]any{"field": node.Field}).Warn("tts capacity exhausted, skipping field")
			return "", nil
		}
		return "", err
	}

	speech, ok := r.providers[opts.Provider]
	if !ok {
		return "", fmt.Errorf("no tts provider configured for %q", opts.Provider)
	}

	audio, err := speech.GenerateSpeech(ctx, provider.SpeechRequest{
		Model: opts.Model,
		Voice: opts.Voice,
		Input: text,
	})
	if err != nil {
		if isCapacity(err) {
			r.log.WithFields(map[string]any{"field": node.Field}).Warn("tts capacity exhausted, skipping field")
			return "", nil
		}
		return "", err
	}

	name, err := r.store.Save(media.Filename(n.NoteType(), node.DisplayField, n.ID(), "mp3"), audio)
	if err != nil {
		return "", err
	}
	return media.SoundTag(name), nil
}

var (
	htmlTagPattern  = regexp.MustCompile(`<[^>]*>`)
	soundTagPattern = regexp.MustCompile(`\[sound:[^\]]*\]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// StripHTML flattens field markup into speakable text: tags and sound
// references removed, entities decoded, whitespace collapsed.
func StripHTML(s string) string {
	s = soundTagPattern.ReplaceAllString(s, " ")
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
