package prompt

import (
	"github.com/notesmith/notesmith/internal/config"
)

// ChatOptions are the effective chat generation parameters for one field.
type ChatOptions struct {
	Provider    string
	Model       string
	Temperature float64
}

// TTSOptions are the effective speech generation parameters for one field.
type TTSOptions struct {
	Provider  string
	Model     string
	Voice     string
	StripHTML bool
}

// ImageOptions are the effective image generation parameters for one field.
type ImageOptions struct {
	Provider string
	Model    string
}

// ChatOptionsFor merges the global chat settings with a field's custom
// overrides. Overrides only apply when the field opts into a custom model.
func ChatOptionsFor(cfg *config.Config, noteType, field string, deckID int64) ChatOptions {
	opts := ChatOptions{
		Provider:    cfg.Settings.ChatProvider,
		Model:       cfg.Settings.ChatModel,
		Temperature: cfg.Settings.ChatTemperature,
	}

	extras := ExtrasFor(cfg, noteType, field, deckID)
	if !extras.UseCustomModel {
		return opts
	}
	if extras.ChatProvider != "" {
		opts.Provider = extras.ChatProvider
	}
	if extras.ChatModel != "" {
		opts.Model = extras.ChatModel
	}
	if extras.ChatTemperature != nil {
		opts.Temperature = *extras.ChatTemperature
	}
	return opts
}

// TTSOptionsFor merges the global speech settings with a field's custom
// overrides.
func TTSOptionsFor(cfg *config.Config, noteType, field string, deckID int64) TTSOptions {
	opts := TTSOptions{
		Provider:  cfg.Settings.TTSProvider,
		Model:     cfg.Settings.TTSModel,
		Voice:     cfg.Settings.TTSVoice,
		StripHTML: cfg.Settings.TTSStripHTML,
	}

	extras := ExtrasFor(cfg, noteType, field, deckID)
	if !extras.UseCustomModel {
		return opts
	}
	if extras.TTSProvider != "" {
		opts.Provider = extras.TTSProvider
	}
	if extras.TTSModel != "" {
		opts.Model = extras.TTSModel
	}
	if extras.TTSVoice != "" {
		opts.Voice = extras.TTSVoice
	}
	if extras.TTSStripHTML != nil {
		opts.StripHTML = *extras.TTSStripHTML
	}
	return opts
}

// ImageOptionsFor merges the global image settings with a field's custom
// overrides.
func ImageOptionsFor(cfg *config.Config, noteType, field string, deckID int64) ImageOptions {
	opts := ImageOptions{
		Provider: cfg.Settings.ImageProvider,
		Model:    cfg.Settings.ImageModel,
	}

	extras := ExtrasFor(cfg, noteType, field, deckID)
	if !extras.UseCustomModel {
		return opts
	}
	if extras.ImageProvider != "" {
		opts.Provider = extras.ImageProvider
	}
	if extras.ImageModel != "" {
		opts.Model = extras.ImageModel
	}
	return opts
}
