package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	noteerrors "github.com/notesmith/notesmith/pkg/errors"
)

const anthropicMaxTokens = 1024

// Anthropic generates chat text through the official SDK. The SDK
// handles its own retry and backoff.
type Anthropic struct {
	client anthropic.Client
}

// NewAnthropic builds a chat client. The API key is required.
func NewAnthropic(apiKey string) (*Anthropic, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key required")
	}
	return &Anthropic{client: anthropic.NewClient(option.WithAPIKey(apiKey))}, nil
}

// GenerateText sends the prompt as a single user message and joins the
// text blocks of the reply.
func (a *Anthropic) GenerateText(ctx context.Context, req ChatRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("chat prompt required")
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return "", noteerrors.NewProviderError("anthropic", 0, err.Error(), err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(out.String()), nil
}
