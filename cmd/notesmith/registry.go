package main

import (
	"os"

	"github.com/notesmith/notesmith/internal/config"
	"github.com/notesmith/notesmith/internal/logger"
	"github.com/notesmith/notesmith/internal/media"
	"github.com/notesmith/notesmith/internal/model"
	"github.com/notesmith/notesmith/internal/provider"
	"github.com/notesmith/notesmith/internal/resolver"
)

// buildResolvers wires one resolver per field type, backed by whichever
// providers have credentials in the environment. A field type with no
// usable provider stays unregistered and fails per field at run time
// instead of blocking the whole run.
func buildResolvers(cfg *config.Config, store media.Store, log *logger.Logger) (*resolver.Registry, error) {
	chatProviders := map[string]provider.Chat{}
	speechProviders := map[string]provider.Speech{}
	imageProviders := map[string]provider.Image{}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		client, err := provider.NewOpenAI(provider.OpenAIOptions{APIKey: key}, log)
		if err != nil {
			return nil, err
		}
		chatProviders["openai"] = client
		speechProviders["openai"] = client
		imageProviders["openai"] = client
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		client, err := provider.NewAnthropic(key)
		if err != nil {
			return nil, err
		}
		chatProviders["anthropic"] = client
	}

	if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
		client, err := provider.NewElevenLabs(provider.ElevenLabsOptions{APIKey: key}, log)
		if err != nil {
			return nil, err
		}
		speechProviders["elevenlabs"] = client
	}

	registry := resolver.NewRegistry()
	if len(chatProviders) > 0 {
		if err := registry.Register(model.FieldTypeChat, resolver.NewChat(cfg, chatProviders, nil, log)); err != nil {
			return nil, err
		}
	}
	if len(speechProviders) > 0 {
		if err := registry.Register(model.FieldTypeTTS, resolver.NewTTS(cfg, speechProviders, store, nil, log)); err != nil {
			return nil, err
		}
	}
	if len(imageProviders) > 0 {
		if err := registry.Register(model.FieldTypeImage, resolver.NewImage(cfg, imageProviders, store, nil, log)); err != nil {
			return nil, err
		}
	}

	if len(registry.Types()) == 0 {
		log.Warn("no provider API keys found in environment, generation will fail")
	}

	return registry, nil
}

// buildDryRunResolvers wires the rehearsal resolver for every field
// type. No credentials, media store or network are involved.
func buildDryRunResolvers(cfg *config.Config) (*resolver.Registry, error) {
	registry := resolver.NewRegistry()
	dry := resolver.NewDryRun(cfg)
	for _, fieldType := range []model.FieldType{model.FieldTypeChat, model.FieldTypeTTS, model.FieldTypeImage} {
		if err := registry.Register(fieldType, dry); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
