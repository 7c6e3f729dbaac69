package resolver

import (
	"context"
	"fmt"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/logger"
	"github.com/notesmith/notesmith/internal/media"
	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/note"
	"github.com/notesmith/notesmith/internal/prompt"
	"github.com/notesmith/notesmith/internal/provider"
)

// Image resolves picture fields: interpolate, render, store the image,
// return the inline img tag.
type Image struct {
	cfg       *config.Config
	providers map[string]provider.Image
	store     media.Store
	gate      Gate
	log       *logger.Logger
}

// NewImage builds an image resolver over the given providers, keyed by
// provider name. A nil gate means unlimited capacity.
func NewImage(cfg *config.Config, providers map[string]provider.Image, store media.Store, gate Gate, log *logger.Logger) *Image {
	if gate == nil {
		gate = OpenGate()
	}
	return &Image{cfg: cfg, providers: providers, store: store, gate: gate, log: log}
}

func (r *Image) Resolve(ctx context.Context, node *model.FieldNode, n note.Note) (string, error) {
	text, ok := prompt.Interpolate(node.PromptTemplate, note.LowercaseValues(n), r.cfg.Settings.AllowEmptyFields)
	if !ok {
		r.log.WithFields(map[string]any{"field": node.Field}).Debug("prompt not fillable, declining")
		return "", nil
	}

	if err := r.gate.Allow(ctx, model.FieldTypeImage); err != nil {
		if isCapacity(err) {
			r.log.WithFields(map[string]any{"field": node.Field}).Warn("image capacity exhausted, skipping field")
			return "", nil
		}
		return "", err
	}

	opts := prompt.ImageOptionsFor(r.cfg, n.NoteType(), node.DisplayField, node.DeckID)
	image, ok := r.providers[opts.Provider]
	if !ok {
		return "", fmt.Errorf("no image provider configured for %q", opts.Provider)
	}

	data, err := image.GenerateImage(ctx, provider.ImageRequest{Model: opts.Model, Prompt: text})
	if err != nil {
		if isCapacity(err) {
			r.log.WithFields(map[string]any{"field": node.Field}).Warn("image capacity exhausted, skipping field")
			return "", nil
		}
		return "", err
	}

	name, err := r.store.Save(media.Filename(n.NoteType(), node.DisplayField, n.ID(), "png"), data)
	if err != nil {
		return "", err
	}
	return media.ImageTag(name), nil
}
