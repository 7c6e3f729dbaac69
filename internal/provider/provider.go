// Package provider holds the generation backends: an OpenAI-compatible
// HTTP client covering chat, speech and images, the Anthropic SDK for
// chat, and an ElevenLabs client for speech. Resolvers pick a backend
// by the provider name configured for the field.
package provider

import "context"

// ChatRequest is one text generation call.
type ChatRequest struct {
	Model       string
	Temperature float64
	Prompt      string
}

// SpeechRequest is one text-to-speech call. Voice is provider-specific:
// a preset name for OpenAI, a voice ID for ElevenLabs.
type SpeechRequest struct {
	Model string
	Voice string
	Input string
}

// ImageRequest is one image generation call.
type ImageRequest struct {
	Model  string
	Prompt string
}

// Chat generates text from a prompt.
type Chat interface {
	GenerateText(ctx context.Context, req ChatRequest) (string, error)
}

// Speech synthesizes spoken audio for a piece of text.
type Speech interface {
	GenerateSpeech(ctx context.Context, req SpeechRequest) ([]byte, error)
}

// Image renders an image for a prompt.
type Image interface {
	GenerateImage(ctx context.Context, req ImageRequest) ([]byte, error)
}
