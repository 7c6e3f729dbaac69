package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/logger"
	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/note"
	"github.com/notesmith/notesmith/internal/prompt"
	"github.com/notesmith/notesmith/internal/provider"
	noteerrors "github.com/notesmith/notesmith/pkg/errors"
)

// Chat resolves text fields: interpolate the template, pick the chat
// provider configured for the field, return the generated text.
type Chat struct {
	cfg       *config.Config
	providers map[string]provider.Chat
	gate      Gate
	log       *logger.Logger
}

// NewChat builds a chat resolver over the given providers, keyed by
// provider name. A nil gate means unlimited capacity.
func NewChat(cfg *config.Config, providers map[string]provider.Chat, gate Gate, log *logger.Logger) *Chat {
	if gate == nil {
		gate = OpenGate()
	}
	return &Chat{cfg: cfg, providers: providers, gate: gate, log: log}
}

func (r *Chat) Resolve(ctx context.Context, node *model.FieldNode, n note.Note) (string, error) {
	text, ok := prompt.Interpolate(node.PromptTemplate, note.LowercaseValues(n), r.cfg.Settings.AllowEmptyFields)
	if !ok {
		r.log.WithFields(map[string]any{"field": node.Field}).Debug("prompt not fillable, declining")
		return "", nil
	}

	if declined, err := r.checkGate(ctx, node); declined || err != nil {
		return "", err
	}

	opts := prompt.ChatOptionsFor(r.cfg, n.NoteType(), node.DisplayField, node.DeckID)
	chat, ok := r.providers[opts.Provider]
	if !ok {
		return "", fmt.Errorf("no chat provider configured for %q", opts.Provider)
	}

	out, err := chat.GenerateText(ctx, provider.ChatRequest{
		Model:       opts.Model,
		Temperature: opts.Temperature,
		Prompt:      text,
	})
	if err != nil {
		if isCapacity(err) {
			r.log.WithFields(map[string]any{"field": node.Field}).Warn("chat capacity exhausted, skipping field")
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Chat) checkGate(ctx context.Context, node *model.FieldNode) (bool, error) {
	err := r.gate.Allow(ctx, model.FieldTypeChat)
	if err == nil {
		return false, nil
	}
	if isCapacity(err) {
		r.log.WithFields(map[string]any{"field": node.Field}).Warn("chat capacity exhausted, skipping field")
		return true, nil
	}
	return false, err
}

func isCapacity(err error) bool {
	var capErr *noteerrors.CapacityError
	return errors.As(err, &capErr)
}
